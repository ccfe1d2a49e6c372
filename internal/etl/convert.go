package etl

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"reflect"
	"time"
)

// TimestampLayout is the rendering of every temporal value written to the
// destination: DD-MM-YYYY HH:MM:SS, 24-hour clock.
const TimestampLayout = "02-01-2006 15:04:05"

// ErrLargeObject is returned when a large-object handle cannot be read.
var ErrLargeObject = errors.New("read large object")

// CharacterObject is a large-object handle whose content is text. Its
// content is materialized as a string; any other io.Reader handle is
// materialized as raw bytes.
type CharacterObject interface {
	io.Reader
	Character() bool
}

var timeType = reflect.TypeOf(time.Time{})

// ConvertRows converts every row, preserving order and count.
func ConvertRows(rows []Row) ([]Row, error) {
	out := make([]Row, len(rows))
	for i, row := range rows {
		converted, err := ConvertRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = converted
	}
	return out, nil
}

// ConvertRow maps each value of row to a destination-storable value. The
// result has the same length as row and keeps positions.
func ConvertRow(row Row) (Row, error) {
	out := make(Row, len(row))
	for i, v := range row {
		cv, err := ConvertValue(v)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		out[i] = cv
	}
	return out, nil
}

// ConvertValue applies the first matching rule:
//  1. large-object handles are read fully into []byte or string;
//  2. temporal values are formatted with TimestampLayout;
//  3. anything else passes through.
//
// driver.Valuer wrappers (sql.NullTime, driver LOB types) are unwrapped once
// before the rules apply.
func ConvertValue(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if r, ok := v.(io.Reader); ok {
		return readLargeObject(r)
	}
	if valuer, ok := v.(driver.Valuer); ok {
		inner, err := valuer.Value()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLargeObject, err)
		}
		if r, ok := inner.(io.Reader); ok {
			return readLargeObject(r)
		}
		v = inner
		if v == nil {
			return nil, nil
		}
	}
	if t, ok := v.(*time.Time); ok && t == nil {
		return nil, nil
	}
	if t, ok := asTime(v); ok {
		return t.Format(TimestampLayout), nil
	}
	return v, nil
}

func readLargeObject(r io.Reader) (any, error) {
	if c, ok := r.(io.Closer); ok {
		defer c.Close()
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLargeObject, err)
	}
	if c, ok := r.(CharacterObject); ok && c.Character() {
		return string(b), nil
	}
	return b, nil
}

// asTime recognises time.Time, *time.Time and named types declared over
// time.Time (as some drivers do for timestamp columns).
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Struct && rv.Type().ConvertibleTo(timeType) {
		return rv.Convert(timeType).Interface().(time.Time), true
	}
	return time.Time{}, false
}
