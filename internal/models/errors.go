package models

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord is matched by every MalformedRecordError.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError reports a required field missing from an ingestion record.
type MalformedRecordError struct {
	// Path locates the record, e.g. "comments[0].children[2]".
	Path  string
	Field string
}

func (e *MalformedRecordError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: missing %s", ErrMalformedRecord, e.Field)
	}

	return fmt.Sprintf("%s: %s: missing %s", ErrMalformedRecord, e.Path, e.Field)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}
