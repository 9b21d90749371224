package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord matches every load failure caused by a bad source row
	ErrMalformedRecord = errors.New("malformed record")
	// ErrImageNotFound is returned when an image file does not exist
	ErrImageNotFound = errors.New("image not found")
	// ErrImageDecode is returned when image bytes cannot be decoded
	ErrImageDecode = errors.New("image decode error")
)

// MalformedRecordError identifies the partition row that aborted a load
type MalformedRecordError struct {
	Partition string
	Row       int    // Zero-based row index within the partition
	Field     string // Offending field, if known
	Err       error
}

func (e *MalformedRecordError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed record in %s partition at row %d (%s): %v", e.Partition, e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("malformed record in %s partition at row %d: %v", e.Partition, e.Row, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Is reports ErrMalformedRecord as a match in addition to the wrapped cause
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// ImageError wraps an image access failure with the path involved
type ImageError struct {
	Path string
	Kind error // ErrImageNotFound or ErrImageDecode
	Err  error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ImageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
