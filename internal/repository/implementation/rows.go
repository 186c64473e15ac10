package implementation

import (
	"context"
	"fmt"

	"inventory-agent-be/pkg/agent/state"

	"gorm.io/gorm"
)

// fetchRows runs a read-only query and converts the result set into state
// rows, preserving the query's column order. All category queries are
// written here, never by the model, and take no user input.
func fetchRows(ctx context.Context, db *gorm.DB, query string) ([]state.Row, error) {
	rows, err := db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []state.Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(state.Row, len(columns))
		for i, column := range columns {
			row[i] = state.Field{Column: column, Value: normalizeValue(values[i])}
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// normalizeValue keeps row values printable: drivers hand text columns back
// as []byte.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// failureDelta converts a reader failure into the recoverable ErrorRecord
// contract. Readers never raise past their boundary: one category failing
// must not taint its siblings.
func failureDelta(stage string, err error) state.Delta {
	return state.Delta{
		Errors: []state.ErrorRecord{{
			Stage:   stage,
			Message: fmt.Sprintf("query failed: %v", err),
			Fatal:   false,
		}},
	}
}
