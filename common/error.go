package common

import "errors"

var (
	// ErrConnecting means writer is in connecting status, waiting to be connected
	ErrConnecting = errors.New("connecting")
	// ErrInvalidScheme .
	ErrInvalidScheme = errors.New("invalid scheme")
	// ErrClientClosed is returned when sending on a client that was already closed
	ErrClientClosed = errors.New("client closed")
	// ErrEmptyKeyword .
	ErrEmptyKeyword = errors.New("keyword must not be empty")
	// ErrEmptyWatchPath .
	ErrEmptyWatchPath = errors.New("watch path must not be empty")
	// ErrInvalidFraming .
	ErrInvalidFraming = errors.New("unknown framing, want line or raw")
	// ErrInvalidPort .
	ErrInvalidPort = errors.New("invalid port")
)
