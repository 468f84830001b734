package ui

import (
	"image"
	"os"
	"strings"

	"github.com/qeesung/image2ascii/convert"
)

// TerminalCapabilities says how business photos can be drawn.
type TerminalCapabilities struct {
	Photos bool // false on dumb terminals
	Color  bool // ANSI color allowed
}

// DetectTerminalCapabilities inspects the environment. NO_COLOR disables
// colored photos; TERM=dumb disables photos entirely.
func DetectTerminalCapabilities() TerminalCapabilities {
	term := strings.ToLower(os.Getenv("TERM"))
	if term == "dumb" {
		return TerminalCapabilities{}
	}
	_, noColor := os.LookupEnv("NO_COLOR")
	return TerminalCapabilities{
		Photos: true,
		Color:  !noColor,
	}
}

// RenderBusinessPhoto draws img as ASCII art sized to the given cell box.
// It returns "" when the terminal cannot show photos.
func RenderBusinessPhoto(img image.Image, caps TerminalCapabilities, targetWidth, targetHeight int) string {
	if img == nil || !caps.Photos || targetWidth <= 0 || targetHeight <= 0 {
		return ""
	}

	converter := convert.NewImageConverter()

	opts := convert.DefaultOptions
	opts.FixedWidth = targetWidth
	opts.FixedHeight = targetHeight
	opts.Colored = caps.Color
	opts.FitScreen = false // the box is fixed; never ask the terminal for its size

	return converter.Image2ASCIIString(img, &opts)
}
