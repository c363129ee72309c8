package lmfile

import "errors"

var (
	// ErrMarkerNotFound means the container has no trie section tag, or is empty.
	ErrMarkerNotFound = errors.New("trie marker not found")
	// ErrTruncatedStream means a record read ran past the end of the data.
	ErrTruncatedStream = errors.New("truncated trie stream")
	// ErrMaxDepthExceeded means the trie nests deeper than the decoder allows.
	ErrMaxDepthExceeded = errors.New("maximum trie depth exceeded")
)
