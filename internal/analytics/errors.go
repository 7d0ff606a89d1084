package analytics

import "errors"

var (
	ErrInvalidWindow = errors.New("invalid time window")
	ErrInvalidPage   = errors.New("invalid pagination")
)
