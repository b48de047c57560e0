// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is matched by EmptyInputError via errors.Is.
var ErrEmptyInput = errors.New("export: no slides to export")

// EmptyInputError is returned when the slide sequence is empty. Nothing is
// produced.
type EmptyInputError struct{}

func (EmptyInputError) Error() string        { return ErrEmptyInput.Error() }
func (EmptyInputError) Is(target error) bool { return target == ErrEmptyInput }

// ValidationError reports bad caller input such as an unknown format.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("export: invalid %s: %s", e.Field, e.Msg)
}

// RenderError reports that one slide could not be rasterized. Exporters
// recover from it by substituting a placeholder.
type RenderError struct {
	Index int
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("export: render slide %d: %v", e.Index+1, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// EncodeError reports that a format's encoder rejected the document. The
// pipeline falls back to JSON when it sees one.
type EncodeError struct {
	Format Format
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("export: encode %s: %v", e.Format, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// IOError reports that a finished artifact could not be delivered.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("export: deliver artifact: %v", e.Err)
	}
	return fmt.Sprintf("export: write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
