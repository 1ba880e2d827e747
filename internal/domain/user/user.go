// Package user exposes the identity and address providers consumed by the
// order core. Authentication happens upstream; the core receives an already
// authenticated email.
package user

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound    = errors.New("user: not found")
	ErrAddressNotFound = errors.New("user: address not found")
)

type User struct {
	ID    string
	Email string
}

// Address is an immutable snapshot owned by the user and referenced by
// orders at creation time.
type Address struct {
	ID         string
	UserEmail  string
	Type       string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
	IsDefault  bool
}

type Provider interface {
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindAddress(ctx context.Context, id string) (*Address, error)
}
