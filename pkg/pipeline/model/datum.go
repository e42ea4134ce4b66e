package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrBadDatumCast is returned when a datum value is read as the wrong type.
var ErrBadDatumCast = errors.New("bad datum cast")

// DatumKind tags the variant held by a Datum.
type DatumKind int

const (
	// DatumData holds an ordinary value.
	DatumData DatumKind = iota
	// DatumEmpty carries no value for the current step.
	DatumEmpty
	// DatumComplete marks the end of the stream.
	DatumComplete
	// DatumFlush asks downstream processes to flush their state.
	DatumFlush
	// DatumError carries an error message instead of a value.
	DatumError
)

func (k DatumKind) String() string {
	switch k {
	case DatumData:
		return "data"
	case DatumEmpty:
		return "empty"
	case DatumComplete:
		return "complete"
	case DatumFlush:
		return "flush"
	case DatumError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Datum is an immutable unit of data. A single Datum may be shared by every consumer that dequeues it.
type Datum struct {
	value   any
	message string
	kind    DatumKind
}

// NewDatum wraps value in a data datum.
func NewDatum(value any) *Datum {
	return &Datum{kind: DatumData, value: value}
}

// EmptyDatum returns a datum carrying no value.
func EmptyDatum() *Datum {
	return &Datum{kind: DatumEmpty}
}

// CompleteDatum returns an end-of-stream marker.
func CompleteDatum() *Datum {
	return &Datum{kind: DatumComplete}
}

// FlushDatum returns a flush marker.
func FlushDatum() *Datum {
	return &Datum{kind: DatumFlush}
}

// ErrorDatum returns an error marker carrying message.
func ErrorDatum(message string) *Datum {
	return &Datum{kind: DatumError, message: message}
}

func (d *Datum) Kind() DatumKind {
	return d.kind
}

// Value returns the wrapped value, nil unless the datum is a data datum.
func (d *Datum) Value() any {
	return d.value
}

// Message returns the error message of an error datum.
func (d *Datum) Message() string {
	return d.message
}

func (d *Datum) String() string {
	switch d.kind {
	case DatumData:
		return fmt.Sprintf("data(%v)", d.value)
	case DatumError:
		return fmt.Sprintf("error(%s)", d.message)
	default:
		return d.kind.String()
	}
}

// DatumValue reads the value of d as a T.
func DatumValue[T any](d *Datum) (T, error) {
	var zero T
	if d == nil {
		return zero, errors.Wrap(ErrBadDatumCast, "nil datum")
	}
	if d.kind != DatumData {
		return zero, errors.Wrapf(ErrBadDatumCast, "datum is %s", d.kind)
	}
	v, ok := d.value.(T)
	if !ok {
		return zero, errors.Wrapf(ErrBadDatumCast, "datum holds %T, not %T", d.value, zero)
	}

	return v, nil
}
