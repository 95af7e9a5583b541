// Package decoder turns downloaded bytes into image metadata. A decoder error
// means the payload is not an image it understands.
package decoder

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/disintegration/imaging"
)

// Image describes a successfully decoded payload
type Image struct {
	Width       int
	Height      int
	ContentType string
}

type Decoder interface {
	Decode(data []byte) (*Image, error)
}

// Std decodes with the pure-Go codecs bundled by imaging (JPEG, PNG, GIF,
// TIFF, BMP). It needs no native libraries.
type Std struct{}

func NewStd() *Std {
	return &Std{}
}

func (d *Std) Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	return &Image{
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		ContentType: ContentType(data),
	}, nil
}

// ContentType sniffs the MIME type of an image payload
func ContentType(data []byte) string {
	return http.DetectContentType(data)
}
