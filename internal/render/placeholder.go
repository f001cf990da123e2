package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/domain"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	noDataBackground = color.RGBA{R: 236, G: 240, B: 245, A: 255}
	noDataText       = color.RGBA{R: 70, G: 90, B: 120, A: 255}
	errorBackground  = color.RGBA{R: 252, G: 235, B: 235, A: 255}
	errorText        = color.RGBA{R: 170, G: 30, B: 30, A: 255}
)

// writePlaceholder рисует заглушку: информационную для no_data, красную для error.
func writePlaceholder(w io.Writer, width, height int, status domain.ResultStatus, message string) error {
	bg, fg := noDataBackground, noDataText
	if status == domain.StatusError {
		bg, fg = errorBackground, errorText
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	if strings.TrimSpace(message) == "" {
		message = string(status)
	}
	face := basicfont.Face7x13
	lineHeight := face.Metrics().Height.Ceil() + 4
	lines := wrapText(message, max(1, (width-32)/face.Advance))

	dr := &font.Drawer{Dst: img, Src: image.NewUniform(fg), Face: face}
	top := (height-len(lines)*lineHeight)/2 + face.Metrics().Ascent.Ceil()
	for i, line := range lines {
		// Каждая строка по центру
		tw := dr.MeasureString(line).Ceil()
		x := max(16, (width-tw)/2)
		dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(top + i*lineHeight)}
		dr.DrawString(line)
	}

	return png.Encode(w, img)
}

// wrapText режет текст по словам на строки не длиннее limit символов.
func wrapText(text string, limit int) []string {
	var (
		lines   []string
		current string
	)
	for _, word := range strings.Fields(text) {
		for len([]rune(word)) > limit {
			r := []rune(word)
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			lines = append(lines, string(r[:limit]))
			word = string(r[limit:])
		}
		switch {
		case current == "":
			current = word
		case len([]rune(current))+1+len([]rune(word)) <= limit:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
