package statetable

import "errors"

var (
	ErrDecode          = errors.New("failed to decode state table")
	ErrUnknownCallback = errors.New("unknown callback")
	ErrUnknownState    = errors.New("unknown state")
	ErrDuplicateName   = errors.New("duplicate state name")
)
