// Package chart renders printable A4 test charts. The operator prints a
// chart, measures the printed patches with a spectrophotometer and feeds the
// resulting CSV back into the calibration workflow.
package chart

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strconv"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ps-bond/printerColourCalibration/pkg/colormath"
)

const (
	a4WidthMM  = 210
	a4HeightMM = 297

	// DefaultDPI is used when Options.DPI is zero.
	DefaultDPI = 300
)

// Options control chart rendering.
type Options struct {
	DPI   int
	Title string
}

func (o Options) dpi() int {
	if o.DPI <= 0 {
		return DefaultDPI
	}
	return o.DPI
}

func px(mm float64, dpi int) int {
	return int(mm / 25.4 * float64(dpi))
}

// Neutral renders a grayscale step chart: 28 grey levels from 0 to 255 in a
// four-column grid, each patch labelled with its 8-bit value.
func Neutral(path string, opts Options) error {
	dpi := opts.dpi()
	width, height := px(a4WidthMM, dpi), px(a4HeightMM, dpi)
	img := newPage(width, height)

	title := opts.Title
	if title == "" {
		title = "Neutral Test Chart"
	}

	const cols, rows = 4, 7
	margin, gap := 40, 20

	titleH := drawTitle(img, title, width)
	margin += titleH + 10

	pw := (width - 2*margin - (cols-1)*gap) / cols
	ph := (height - 2*margin - (rows-1)*gap) / rows

	gridW := cols*pw + (cols-1)*gap
	xOrigin := (width - gridW) / 2

	for i := 0; i < cols*rows; i++ {
		v := uint8(i * 255 / (cols*rows - 1))
		r, c := i/cols, i%cols
		x := xOrigin + c*(pw+gap)
		y := margin + r*(ph+gap)
		fillRect(img, image.Rect(x, y, x+pw, y+ph), color.RGBA{v, v, v, 255})

		label := strconv.Itoa(int(v))
		lw := textWidth(label)
		drawString(img, x+(pw-lw)/2, y-5, label, color.Black)
	}

	return writePNG(img, path)
}

// Colour renders the full colour patch chart from the given patch
// definitions: 35mm patches in four columns, each labelled with its sequence
// number, name and RGB value. Patches that would fall off the page are
// skipped.
func Colour(path string, patches []colormath.Patch, opts Options) error {
	dpi := opts.dpi()
	width, height := px(a4WidthMM, dpi), px(a4HeightMM, dpi)
	img := newPage(width, height)

	title := opts.Title
	if title == "" {
		title = "Colour Test Chart"
	}

	const cols = 4
	patchSize := px(35, dpi)
	margin := px(10, dpi)

	top := margin + drawTitle(img, title, width) + px(5, dpi)

	gridW := cols*patchSize + (cols-1)*margin
	x0 := (width - gridW) / 2

	for i, p := range patches {
		x := x0 + (i%cols)*(patchSize+margin)
		y := top + (i/cols)*(patchSize+margin)
		if y+patchSize > height {
			break
		}

		rect := image.Rect(x, y, x+patchSize, y+patchSize)
		fillRect(img, rect, color.RGBA{p.R, p.G, p.B, 255})
		strokeRect(img, rect, color.Black)

		// Labels sit above the patch when there is room.
		if y-px(6, dpi) > 0 {
			drawString(img, x, y-px(4, dpi), "#"+strconv.Itoa(i+1), color.Black)
			drawString(img, x, y-px(1, dpi), p.Name+" ("+strconv.Itoa(int(p.R))+","+strconv.Itoa(int(p.G))+","+strconv.Itoa(int(p.B))+")", color.Black)
		}
	}

	return writePNG(img, path)
}

func newPage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

// drawTitle renders the title centered at the top of the page and returns
// the vertical space it consumed.
func drawTitle(img *image.RGBA, title string, width int) int {
	if title == "" {
		return 0
	}
	face := basicfont.Face7x13
	tw := textWidth(title)
	drawString(img, (width-tw)/2, face.Height+4, title, color.Black)
	return face.Height + 8
}

func drawString(img *image.RGBA, x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return font.MeasureString(basicfont.Face7x13, s).Ceil()
}

func fillRect(img *image.RGBA, r image.Rectangle, col color.Color) {
	draw.Draw(img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func strokeRect(img *image.RGBA, r image.Rectangle, col color.Color) {
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), col)
	fillRect(img, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), col)
	fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), col)
	fillRect(img, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), col)
}

func writePNG(img *image.RGBA, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create chart file %s", path)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return pkgerrors.Wrapf(err, "failed to encode chart %s", path)
	}
	return nil
}

