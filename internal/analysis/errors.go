package analysis

import "fmt"

// DataLoadError indicates the dataset could not be loaded: the file is missing,
// malformed, or holds no data rows.
type DataLoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Reason)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// MissingColumnError indicates a referenced column is absent from the table.
// Step names the chart or operation that referenced it, if known.
type MissingColumnError struct {
	Column string
	Step   string
}

func (e *MissingColumnError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("%s: missing column %q", e.Step, e.Column)
	}
	return fmt.Sprintf("missing column %q", e.Column)
}

// ColumnTypeError indicates a numeric operation was requested on a column
// whose inferred kind is not numeric.
type ColumnTypeError struct {
	Column string
	Kind   string
}

func (e *ColumnTypeError) Error() string {
	return fmt.Sprintf("column %q is %s, not numeric", e.Column, e.Kind)
}

// EmptyGroupError indicates an aggregation found no rows with a non-null key.
type EmptyGroupError struct{ Key string }

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("group by %q: no rows with a non-null key", e.Key)
}
