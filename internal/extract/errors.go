package extract

import "fmt"

// SourceFormatError reports a source document that cannot be read as
// well-formed XML. It is always fatal and is returned before any store
// mutation takes place.
type SourceFormatError struct {
	Source string
	Err    error
}

func (e *SourceFormatError) Error() string {
	return fmt.Sprintf("malformed source %s: %v", e.Source, e.Err)
}

func (e *SourceFormatError) Unwrap() error { return e.Err }

// RecordFieldError reports a player element whose required field is missing
// or cannot be coerced. Record holds the element's serialized form.
type RecordFieldError struct {
	Index  int
	Field  string
	Record string
	Err    error
}

func (e *RecordFieldError) Error() string {
	return fmt.Sprintf("player #%d: field %q: %v: %s", e.Index, e.Field, e.Err, e.Record)
}

func (e *RecordFieldError) Unwrap() error { return e.Err }
