package protocol

import "errors"

var (
	ErrConnect             = errors.New("protocol: connect failed")
	ErrSend                = errors.New("protocol: send failed")
	ErrMalformedArgument   = errors.New("protocol: malformed argument")
	ErrClosed              = errors.New("protocol: connection closed")
	ErrIncompleteHandshake = errors.New("protocol: connection closed before sync done")
	ErrPeerLookup          = errors.New("protocol: peer lookup failed")
)
