package internal

import (
	"fmt"
	"sort"
	"strings"
)

// Column is the expected or observed shape of one table column.
type Column struct {
	Type     string
	Nullable bool
}

// Schema maps column names to their shape.
type Schema map[string]Column

// SchemaError lists how a table differs from its expected schema.
type SchemaError struct {
	Table      string
	Missing    []string
	Mismatched []string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s schema validation failed", e.Table)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing columns: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatched) > 0 {
		fmt.Fprintf(&b, "; mismatched columns: %s", strings.Join(e.Mismatched, "; "))
	}
	return b.String()
}

// Check compares actual against s. Extra columns in actual are allowed.
// Types are compared case-insensitively. The result is nil or a
// *SchemaError with columns in name order.
func (s Schema) Check(table string, actual Schema) error {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)

	serr := &SchemaError{Table: table}
	for _, name := range names {
		want := s[name]
		got, ok := actual[name]
		if !ok {
			serr.Missing = append(serr.Missing, name)
			continue
		}
		if !strings.EqualFold(got.Type, want.Type) {
			serr.Mismatched = append(serr.Mismatched,
				fmt.Sprintf("%s: expected %s, got %s", name, want.Type, strings.ToLower(got.Type)))
		}
		if got.Nullable != want.Nullable {
			serr.Mismatched = append(serr.Mismatched,
				fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", name, want.Nullable, got.Nullable))
		}
	}

	if len(serr.Missing) == 0 && len(serr.Mismatched) == 0 {
		return nil
	}
	return serr
}
