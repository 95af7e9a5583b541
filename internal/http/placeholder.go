package http

import (
	"bytes"
	"fmt"
	"image/color"
	"os"

	"github.com/disintegration/imaging"

	"fastimage/internal/decoder"
)

// Placeholder dimensions used when the caller gives no hints
const (
	defaultPlaceholderWidth  = 300
	defaultPlaceholderHeight = 200
	maxPlaceholderSide       = 4096
)

// DisplayHints are presentation parameters supplied by the caller. The loader
// never sees them; only placeholders use them.
type DisplayHints struct {
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Fit    string `json:"fit,omitempty"`
}

// Renderable is anything that can be shown while the real image is missing
type Renderable interface {
	Render(hints DisplayHints) (data []byte, contentType string, err error)
}

// StaticPlaceholder always renders the same payload
type StaticPlaceholder struct {
	data        []byte
	contentType string
}

func NewStaticPlaceholder(data []byte) *StaticPlaceholder {
	return &StaticPlaceholder{
		data:        data,
		contentType: decoder.ContentType(data),
	}
}

// LoadStaticPlaceholder reads a placeholder image from disk
func LoadStaticPlaceholder(path string) (*StaticPlaceholder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read placeholder: %w", err)
	}
	return NewStaticPlaceholder(data), nil
}

func (p *StaticPlaceholder) Render(DisplayHints) ([]byte, string, error) {
	return p.data, p.contentType, nil
}

// GeneratedPlaceholder renders a solid PNG sized from the hints
type GeneratedPlaceholder struct {
	Background color.NRGBA
}

func NewGeneratedPlaceholder() *GeneratedPlaceholder {
	return &GeneratedPlaceholder{
		Background: color.NRGBA{R: 221, G: 221, B: 221, A: 255}, // #ddd
	}
}

func (p *GeneratedPlaceholder) Render(hints DisplayHints) ([]byte, string, error) {
	width := clampSide(hints.Width, defaultPlaceholderWidth)
	height := clampSide(hints.Height, defaultPlaceholderHeight)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.New(width, height, p.Background), imaging.PNG); err != nil {
		return nil, "", fmt.Errorf("failed to encode placeholder: %w", err)
	}
	return buf.Bytes(), "image/png", nil
}

func clampSide(v, def int) int {
	if v <= 0 {
		return def
	}
	if v > maxPlaceholderSide {
		return maxPlaceholderSide
	}
	return v
}
