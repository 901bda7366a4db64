// Package imagegen renders the dashboard's share card, a PNG with the
// headline national statistics used for link previews.
package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// CardWidth and CardHeight are the standard Open Graph image dimensions.
const (
	CardWidth  = 1200
	CardHeight = 630
)

var (
	faceRegular font.Face
	faceLarge   font.Face
	faceSmall   font.Face
	faceOnce    sync.Once
	faceErr     error
)

func loadFaces() {
	faceOnce.Do(func() {
		regular, err := opentype.Parse(goregular.TTF)
		if err != nil {
			faceErr = fmt.Errorf("parse regular font: %w", err)
			return
		}
		bold, err := opentype.Parse(gobold.TTF)
		if err != nil {
			faceErr = fmt.Errorf("parse bold font: %w", err)
			return
		}

		faceRegular, err = opentype.NewFace(regular, &opentype.FaceOptions{Size: 36, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			faceErr = fmt.Errorf("create regular face: %w", err)
			return
		}
		faceLarge, err = opentype.NewFace(bold, &opentype.FaceOptions{Size: 96, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			faceErr = fmt.Errorf("create large face: %w", err)
			return
		}
		faceSmall, err = opentype.NewFace(regular, &opentype.FaceOptions{Size: 26, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			faceErr = fmt.Errorf("create small face: %w", err)
		}
	})
}

// CardData is the dynamic content of the share card.
type CardData struct {
	Year            int
	ForestArea      float64
	TreeCover       float64
	ReportingStates int
}

var (
	cardBg     = color.RGBA{R: 14, G: 17, B: 23, A: 255}
	cardGreen  = color.RGBA{R: 102, G: 187, B: 106, A: 255}
	cardWhite  = color.RGBA{R: 250, G: 250, B: 250, A: 255}
	cardMuted  = color.RGBA{R: 176, G: 190, B: 197, A: 255}
)

// Render draws the share card PNG.
func Render(data CardData) ([]byte, error) {
	loadFaces()
	if faceErr != nil {
		return nil, faceErr
	}

	img := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(cardBg), image.Point{}, draw.Src)

	drawText(img, faceRegular, cardGreen, 80, 120, "India Forestry Dashboard")
	drawText(img, faceLarge, cardWhite, 80, 280, fmt.Sprintf("%s sq km", group(data.ForestArea)))
	drawText(img, faceRegular, cardMuted, 80, 350, fmt.Sprintf("Recorded forest area, ISFR %d", data.Year))
	drawText(img, faceSmall, cardMuted, 80, 450,
		fmt.Sprintf("Tree cover: %s sq km", group(data.TreeCover)))
	drawText(img, faceSmall, cardMuted, 80, 500,
		fmt.Sprintf("Reporting states and UTs: %d", data.ReportingStates))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawText(img *image.RGBA, face font.Face, col color.Color, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// group formats a value with thousands separators for display.
func group(v float64) string {
	s := fmt.Sprintf("%.0f", v)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
