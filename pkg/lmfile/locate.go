package lmfile

import (
	"bytes"
	"fmt"
)

// DefaultMarker is the section tag that precedes the trie in dynamic.lm files.
var DefaultMarker = []byte{0x06, 'd', 'm', 'a', 'p'}

// DefaultTrieOffset is the distance from the start of the marker to the first record.
const DefaultTrieOffset = 9

// Locate returns the offset of the first trie record in data.
// Only the first occurrence of marker is considered.
func Locate(data, marker []byte, distance int) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("empty model data: %w", ErrMarkerNotFound)
	}
	if distance < 0 {
		return 0, fmt.Errorf("negative trie distance %d", distance)
	}
	if len(marker) == 0 {
		return 0, fmt.Errorf("empty marker: %w", ErrMarkerNotFound)
	}
	at := bytes.Index(data, marker)
	if at < 0 {
		return 0, fmt.Errorf("marker %x absent from %d bytes: %w", marker, len(data), ErrMarkerNotFound)
	}
	off := at + distance
	if off > len(data) {
		return 0, fmt.Errorf("trie offset %#x beyond end of data (%d bytes): %w", off, len(data), ErrTruncatedStream)
	}
	return off, nil
}
