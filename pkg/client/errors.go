package client

import "errors"

// Session and dispatch errors.
var (
	ErrAlreadyLoggedIn   = errors.New("client: already logged in, log out before trying again")
	ErrNotLoggedIn       = errors.New("client: not logged in")
	ErrAlreadySubscribed = errors.New("client: already subscribed to topic")
	ErrNotSubscribed     = errors.New("client: not subscribed to topic")
	ErrLogoutTimeout     = errors.New("client: logout timed out, connection discarded")
	ErrNotConnected      = errors.New("client: transport not connected")
)
