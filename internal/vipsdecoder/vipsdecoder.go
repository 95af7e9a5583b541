// Package vipsdecoder decodes images with libvips. vips.Startup must have been
// called before the first Decode.
package vipsdecoder

import (
	"fmt"

	"github.com/cshum/vipsgen/vips"

	"fastimage/internal/decoder"
)

type Decoder struct{}

func New() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Decode(data []byte) (*decoder.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty payload")
	}

	image, err := vips.NewImageFromBuffer(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	defer image.Close()

	return &decoder.Image{
		Width:       image.Width(),
		Height:      image.Height(),
		ContentType: decoder.ContentType(data),
	}, nil
}
