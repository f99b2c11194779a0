package inbox

import "errors"

var (
	ErrItemNotFound  = errors.New("inbox item not found")
	ErrMissingItemID = errors.New("inbox item ID is required")
	ErrMissingUserID = errors.New("inbox item user ID is required")
)
