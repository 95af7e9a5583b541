package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidImageData means the downloaded bytes could not be decoded
	ErrInvalidImageData = errors.New("invalid image data")
	// ErrInvalidURL means the requested URL is not a fetchable http(s) URL
	ErrInvalidURL = errors.New("invalid image url")
)

// TransportError wraps a network failure while downloading an image
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error fetching %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
