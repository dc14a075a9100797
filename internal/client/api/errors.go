package api

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("not authenticated")
)

// Error is a non-2xx answer that carried a message body.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrUnauthorized) match a 401 answer.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == 401
}
