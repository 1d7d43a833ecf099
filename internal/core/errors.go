package core

import "errors"

var (
	// ErrClientNotFound reports an unknown client id or name.
	ErrClientNotFound = errors.New("client not found")
	// ErrRoomNotFound reports an unknown room id or name.
	ErrRoomNotFound = errors.New("room not found")
)
