package vipsdecoder

import (
	"bytes"
	"image/color"
	"os"
	"testing"

	"github.com/cshum/vipsgen/vips"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	vips.Startup(nil)
	code := m.Run()
	vips.Shutdown()
	os.Exit(code)
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	img := imaging.New(12, 6, color.NRGBA{B: 255, A: 255})
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))

	got, err := New().Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 12, got.Width)
	assert.Equal(t, 6, got.Height)
	assert.Equal(t, "image/png", got.ContentType)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := New().Decode([]byte("definitely not an image"))
	assert.Error(t, err)

	_, err = New().Decode(nil)
	assert.Error(t, err)
}
