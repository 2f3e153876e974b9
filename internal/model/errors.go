package model

import (
	"fmt"
	"strings"
)

// MissingColumnsError reports every required field absent from an input
// table, alongside the headers that were actually present, so a bad export
// can be diagnosed without re-running.
type MissingColumnsError struct {
	Source  string
	Missing []string
	Present []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns [%s]; present columns [%s]",
		e.Source, strings.Join(e.Missing, ", "), strings.Join(e.Present, ", "))
}

// LoadError wraps a structural failure reading an input table. Fatal for
// the master tracker; for the rule sheet the caller may substitute the
// hardcoded heuristic mapping instead.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
