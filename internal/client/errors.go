package client

import "errors"

var (
	ErrClient   = errors.New("client error")
	ErrNoDaemon = errors.New("daemon not reachable")
)
