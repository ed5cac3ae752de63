package lessons

import "errors"

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrChatNotAllowed   = errors.New("chat is not allowed")
	ErrFormat           = errors.New("invalid format")
	ErrOutOfRange       = errors.New("index out of range")

	// ErrBlankStorage is returned by a storage holding no document at all, e.g. a file
	// truncated by an editor which has not written it back yet.
	ErrBlankStorage = errors.New("storage is blank")
)
