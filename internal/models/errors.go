package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrMissingColumn    = errors.New("missing expected column")
	ErrUnexpectedColumn = errors.New("unexpected column")
	ErrInvalidMonth     = errors.New("invalid month")
)

// AppError attaches the source file and row to a failure. Row is the zero-based
// data row index, or -1 when the error concerns the file as a whole.
type AppError struct {
	File    string
	Row     int
	Message string
	Err     error
	Record  []string
}

func (e *AppError) Error() string {
	var location string
	switch {
	case e.File != "" && e.Row >= 0:
		location = fmt.Sprintf("%s row %d", e.File, e.Row)
	case e.File != "":
		location = e.File
	case e.Row >= 0:
		location = fmt.Sprintf("row %d", e.Row)
	}

	msg := e.Message
	if location != "" {
		msg = fmt.Sprintf("%s: %s", location, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s - %v", msg, e.Err)
	}
	if len(e.Record) > 0 {
		msg = fmt.Sprintf("%s - Record: [%s]", msg, strings.Join(e.Record, ","))
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}
