package reports

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
)

// DefaultPeriod is used in file names when no time period label is given.
const DefaultPeriod = "all"

// FileStem returns "{type}_{period}" with the period made safe for a file name.
func FileStem(t ReportType, period string) string {
	return string(t) + "_" + sanitizePeriod(period)
}

// CSVPath returns the conventional report location under dir.
func CSVPath(dir string, t ReportType, period string) string {
	return filepath.Join(dir, FileStem(t, period)+".csv")
}

// GraphPath returns the conventional chart location under dir.
func GraphPath(dir string, t ReportType, period string) string {
	return filepath.Join(dir, FileStem(t, period)+".png")
}

func sanitizePeriod(period string) string {
	period = strings.TrimSpace(period)
	if period == "" {
		return DefaultPeriod
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, period)
}

// WriteCSV writes header and records to path with CRLF line endings.
// The file is written to a temp file in the same directory and renamed into
// place, so readers never observe a partial report.
func WriteCSV(path string, header []string, records [][]string) error {
	return WriteAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		cw.UseCRLF = true
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.WriteAll(records); err != nil {
			return err
		}
		return cw.Error()
	})
}

// ReadCSV reads a report back as its header and data records.
// A missing file maps to apperrors.ErrFileNotFound.
func ReadCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrFileNotFound, path)
		}
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	all, err := csv.NewReader(bufio.NewReader(f)).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

// WriteAtomic creates path's parent directories, streams write into a temp
// file beside path and renames it over path once write and close succeed.
func WriteAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}
