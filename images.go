package toolkit

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	minPlaceholderSide = 16
	maxPlaceholderSide = 1200
	maxLabelScale      = 6
)

var (
	placeholderBG = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
	placeholderFG = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
)

// clampSide limits a requested placeholder dimension.
func clampSide(n int) int {
	if n < minPlaceholderSide {
		return minPlaceholderSide
	}
	if n > maxPlaceholderSide {
		return maxPlaceholderSide
	}
	return n
}

// placeholderImage renders a flat w x h image with its dimensions written
// in the middle. The label is drawn at the bitmap font's size and scaled up
// to roughly a third of the width.
func placeholderImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderBG), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	label := fmt.Sprintf("%dx%d", w, h)
	d := &font.Drawer{Src: image.NewUniform(placeholderFG), Face: face}
	lw := d.MeasureString(label).Ceil()
	lh := face.Height

	text := image.NewRGBA(image.Rect(0, 0, lw, lh))
	d.Dst = text
	d.Dot = fixed.P(0, face.Ascent)
	d.DrawString(label)

	scale := w / (3 * lw)
	if scale < 1 {
		scale = 1
	}
	if scale > maxLabelScale {
		scale = maxLabelScale
	}
	sw, sh := lw*scale, lh*scale
	if sw > w || sh > h {
		// Too small to carry a label.
		return img
	}
	x, y := (w-sw)/2, (h-sh)/2
	draw.NearestNeighbor.Scale(img, image.Rect(x, y, x+sw, y+sh), text, text.Bounds(), draw.Over, nil)
	return img
}

func encodePlaceholder(w, h int) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, placeholderImage(w, h)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *App) handlePlaceholder(c echo.Context) error {
	w, errW := strconv.Atoi(c.Param("w"))
	h, errH := strconv.Atoi(c.Param("h"))
	if errW != nil || errH != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "width and height must be integers")
	}
	data, err := encodePlaceholder(clampSide(w), clampSide(h))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "image/png", data)
}
