package authorization

import (
	"context"
	"errors"
)

type Service interface {
	// Authorize checks whether the user, acting under role, may perform
	// action on object.
	Authorize(ctx context.Context, userID int64, role string, object string, action string) error
}

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
)
