package util

import "errors"

var (
	ErrSetUnavailable      = errors.New("failed to load quiz data")
	ErrContentUnavailable  = errors.New("failed to load study content")
	ErrNoQuestionSets      = errors.New("no question sets available")
	ErrSetNotFound         = errors.New("question set not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrDocumentTooLarge    = errors.New("document too large")
	ErrHistoryUnavailable  = errors.New("result history requires a database")
	ErrUnknownStorage      = errors.New("unknown storage type")
	ErrUnknownProgressType = errors.New("unknown persistence driver")
)
