package request

import "errors"

// ErrInvalidArgument is returned, before any network access, when an argument
// cannot be encoded into a gateway request.
var ErrInvalidArgument = errors.New("invalid argument")
