// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// services to distinguish between different failure scenarios without
// inspecting driver-specific error strings everywhere.
package repository

import (
	"errors"
	"strings"
)

// ErrUserExists is returned when registering a user whose username or email
// is already taken.
var ErrUserExists = errors.New("user already exists")

// ErrReservationExists is returned when a reservation insert collides with
// the (user_id, concert_id) unique key. This happens when two reserve
// requests for the same pair race into existence; the loser surfaces a
// conflict to the caller.
var ErrReservationExists = errors.New("reservation already exists")

// isDuplicate reports whether err is a MySQL duplicate-key error (1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
