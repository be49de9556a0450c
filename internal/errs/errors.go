// Package errs содержит ошибки, которые сервисы обмена возвращают вызывающей стороне.
// Конкретные причины оборачиваются через fmt.Errorf("%w: ...").
package errs

import (
	"errors"
)

var (
	ErrInvalidProposal = errors.New("invalid proposal")
	ErrInvalidState    = errors.New("invalid trade state")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
)
