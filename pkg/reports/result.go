package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/grocerydesk/grocery-console/pkg/database"
)

// Row is one aggregate group: its label and one value per numeric column.
type Row struct {
	Label  string
	Values []decimal.Decimal
}

// Result is the ordered output of a report query.
type Result struct {
	Definition *Definition
	Rows       []Row
}

// Header returns the declared column names.
func (r *Result) Header() []string {
	return r.Definition.Header()
}

// Records formats every row as CSV fields: labels verbatim, counts as whole
// numbers, amounts with two decimals.
func (r *Result) Records() [][]string {
	records := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		rec := make([]string, 0, len(r.Definition.Columns))
		rec = append(rec, row.Label)
		for j, v := range row.Values {
			rec = append(rec, formatValue(r.Definition.Columns[j+1].Kind, v))
		}
		records[i] = rec
	}
	return records
}

// Run executes the report's single aggregate query against the connection
// scope carried by ctx.
func Run(ctx context.Context, t ReportType) (*Result, error) {
	def, err := Lookup(t)
	if err != nil {
		return nil, err
	}

	scope, ok := database.GetScope(ctx)
	if !ok {
		return nil, fmt.Errorf("no database scope in context")
	}

	rows, err := scope.Conn.QueryContext(ctx, def.Query(scope.Dialect))
	if err != nil {
		return nil, fmt.Errorf("failed to run %s report: %w", t, err)
	}
	defer rows.Close()

	numValues := len(def.Columns) - 1
	result := &Result{Definition: def}

	for rows.Next() {
		var label any
		values := make([]decimal.Decimal, numValues)
		dest := make([]any, 0, numValues+1)
		dest = append(dest, &label)
		for i := range values {
			dest = append(dest, &values[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", t, err)
		}
		result.Rows = append(result.Rows, Row{Label: formatLabel(label), Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", t, err)
	}

	return result, nil
}

func formatValue(kind ColumnKind, v decimal.Decimal) string {
	switch kind {
	case KindCount:
		return v.StringFixed(0)
	case KindAmount:
		return v.StringFixed(2)
	default:
		return v.String()
	}
}

// formatLabel normalizes what the different drivers hand back for the label
// column: text, bytes, or a time for calendar dates.
func formatLabel(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.DateOnly)
	default:
		return fmt.Sprint(x)
	}
}
