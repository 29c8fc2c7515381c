package classify

import "errors"

// ErrInvalidRule is returned for rule strings that do not parse.
var ErrInvalidRule = errors.New("invalid classification rule")
