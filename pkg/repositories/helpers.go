package repositories

import (
	"database/sql"
	"fmt"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// requireOneRow maps an UPDATE that touched nothing to apperrors.ErrNotFound.
func requireOneRow(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", what, id, apperrors.ErrNotFound)
	}
	return nil
}
