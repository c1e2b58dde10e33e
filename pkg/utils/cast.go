package utils

import (
	"errors"
	"fmt"
)

var ErrNilParam = errors.New("cast error: got nil param")

// type assertion that reports what it got instead of panicking
func SafeCast[T any](param any) (T, error) {
	var zero T

	if param == nil {
		return zero, ErrNilParam
	}

	v, ok := param.(T)
	if !ok {
		return zero, fmt.Errorf("cast error: got type: %T, want type: %T", param, zero)
	}

	return v, nil
}
