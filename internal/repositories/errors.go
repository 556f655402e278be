package repositories

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrNoAccount means a code was consumable but no account row exists for its e-mail.
	ErrNoAccount = errors.New("no account for email")
)

// uniqueViolation reports whether err is a unique-constraint failure of the
// underlying driver. Tests swap it for the sqlite flavour.
var uniqueViolation = func(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
