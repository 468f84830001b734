package ui

import (
	"image"
	"image/color"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectTerminalCapabilities(t *testing.T) {
	t.Run("dumb terminal", func(t *testing.T) {
		t.Setenv("TERM", "dumb")
		assert.Equal(t, TerminalCapabilities{}, DetectTerminalCapabilities())
	})

	t.Run("color terminal", func(t *testing.T) {
		t.Setenv("TERM", "xterm-256color")
		t.Setenv("NO_COLOR", "")
		require.NoError(t, os.Unsetenv("NO_COLOR"))
		assert.Equal(t, TerminalCapabilities{Photos: true, Color: true}, DetectTerminalCapabilities())
	})

	t.Run("NO_COLOR", func(t *testing.T) {
		t.Setenv("TERM", "xterm-256color")
		t.Setenv("NO_COLOR", "1")
		assert.Equal(t, TerminalCapabilities{Photos: true}, DetectTerminalCapabilities())
	})
}

func checkerboard(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{R: 240, G: 145, B: 90, A: 255}
			if (x+y)%2 == 0 {
				c = color.RGBA{A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRenderBusinessPhoto(t *testing.T) {
	img := checkerboard(16)

	art := RenderBusinessPhoto(img, TerminalCapabilities{Photos: true}, 12, 6)
	require.NotEmpty(t, art)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	assert.Len(t, lines, 6)

	assert.Empty(t, RenderBusinessPhoto(img, TerminalCapabilities{}, 12, 6), "no photos on dumb terminals")
	assert.Empty(t, RenderBusinessPhoto(nil, TerminalCapabilities{Photos: true}, 12, 6))
	assert.Empty(t, RenderBusinessPhoto(img, TerminalCapabilities{Photos: true}, 0, 6))
}
