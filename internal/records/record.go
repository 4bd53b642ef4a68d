// Package records streams the image-bearing projection of source records.
package records

import (
	"context"
	"fmt"
	"strings"
)

// Record is a read-only projection of a source document.
type Record struct {
	ID     string
	Name   string
	URL    string
	HasURL bool
}

// Source yields every record of the configured collection exactly once, in
// source order. Iteration stops at the first error returned by fn.
type Source interface {
	Each(ctx context.Context, fn func(Record) error) error
	Close(ctx context.Context) error
}

// Fields names the projected fields.
type Fields struct {
	ID   string
	Name string
	URL  string
}

// urlValue normalizes a raw URL field. Absent, null and blank values are
// all reported as missing.
func urlValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func nameValue(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	default:
		return fmt.Sprint(n)
	}
}

// Slice is an in-memory Source, used for dry runs and tests.
type Slice []Record

func (s Slice) Each(ctx context.Context, fn func(Record) error) error {
	for _, r := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func (Slice) Close(context.Context) error { return nil }
