package contract

import (
	"errors"

	storex "github.com/burgerhouse/orderchat/store"
)

var (
	ErrValidation = errors.New("validation failed")
	// ErrNotFound and ErrDuplicate are the store sentinels re-exported so
	// the chat core never imports driver-level error mapping.
	ErrNotFound    = storex.ErrNotFound
	ErrDuplicate   = storex.ErrDuplicate
	ErrUnavailable = errors.New("collaborator unavailable")
)
