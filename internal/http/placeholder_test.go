package http

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastimage/internal/decoder"
)

func TestGeneratedPlaceholderDefaults(t *testing.T) {
	data, contentType, err := NewGeneratedPlaceholder().Render(DisplayHints{})
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	img, err := decoder.NewStd().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, defaultPlaceholderWidth, img.Width)
	assert.Equal(t, defaultPlaceholderHeight, img.Height)
}

func TestGeneratedPlaceholderClampsSize(t *testing.T) {
	data, _, err := NewGeneratedPlaceholder().Render(DisplayHints{Width: 1 << 20, Height: 10})
	require.NoError(t, err)

	img, err := decoder.NewStd().Decode(data)
	require.NoError(t, err)
	assert.Equal(t, maxPlaceholderSide, img.Width)
	assert.Equal(t, 10, img.Height)
}

func TestLoadStaticPlaceholder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "placeholder.png")
	data, _, err := NewGeneratedPlaceholder().Render(DisplayHints{Width: 2, Height: 2})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	p, err := LoadStaticPlaceholder(path)
	require.NoError(t, err)

	got, contentType, err := p.Render(DisplayHints{Width: 500})
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", contentType)

	_, err = LoadStaticPlaceholder(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
