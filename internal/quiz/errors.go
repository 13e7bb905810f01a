package quiz

import "errors"

var (
	ErrEmptySet          = errors.New("question set is empty")
	ErrControlDisabled   = errors.New("control disabled")
	ErrInvalidSnapshot   = errors.New("invalid snapshot")
	ErrSnapshotSubmitted = errors.New("snapshot already submitted")
	ErrUnknownAction     = errors.New("unknown action")
)
