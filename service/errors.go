package service

import (
	"errors"
	"fmt"

	"github.com/sajag-gupta/riseup/media"
	"github.com/sajag-gupta/riseup/payment"
	"github.com/sajag-gupta/riseup/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSignature   = errors.New("payment signature verification failed")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidPromo       = errors.New("invalid promo code")
	ErrUnavailable        = errors.New("service unavailable")

	// ErrEmailTaken is a conflict reported to clients as a bad request.
	ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrConflict)
)

func notFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// lookup turns a repository miss into ErrNotFound for what.
func lookup[T any](v *T, err error, what string) (*T, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(what)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", what, err)
	}
	return v, nil
}

func mediaError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, media.ErrInvalidFile):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, media.ErrUnavailable):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: media upload failed", ErrUnavailable)
}

func paymentError(err error) error {
	if errors.Is(err, payment.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fmt.Errorf("%w: payment gateway error", ErrUnavailable)
}
