package storage

import (
	"errors"
	"strconv"
)

var ErrParcelNotFound = errors.New("parcel not found")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func quote(s string) string {
	return strconv.Quote(s)
}
