// Package render draws certificate PNGs. A Renderer parses one TrueType
// font at startup and composites each certificate onto a fixed-size canvas:
// accent borders, headline, recipient name, event details and the
// certification id. Events may supply a background template image, which
// replaces the plain canvas and frames while the text layers stay the same.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Canvas dimensions, A4 landscape at 150dpi.
const (
	canvasWidth  = 1754
	canvasHeight = 1240
)

// nameSizes is the shrink-to-fit chain for the recipient name. The largest
// size whose rendering fits inside the borders wins.
var nameSizes = []float64{92, 72, 56, 44}

// Certificate holds everything drawn onto one certificate.
type Certificate struct {
	RecipientName   string
	CertificationID string
	EventTitle      string
	Issuer          string
	IssuedOn        string // preformatted display date, may be empty
	Accent          color.RGBA

	// Background replaces the plain canvas and accent frames when set.
	// It is scaled to the canvas, so uploads should roughly match the
	// canvas aspect ratio.
	Background image.Image
}

// Renderer draws certificates with a single parsed font. The font itself is
// immutable and shared; faces are created per call because a font.Face is
// not safe for concurrent use.
type Renderer struct {
	font *sfnt.Font
}

// NewRenderer parses the font at fontPath. An empty path selects the
// built-in Go Regular face, which keeps the binary self-contained.
func NewRenderer(fontPath string) (*Renderer, error) {
	data := goregular.TTF
	if fontPath != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		data = b
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Renderer{font: f}, nil
}

// Render draws one certificate and returns it PNG-encoded.
func (r *Renderer) Render(c Certificate) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))

	accent := c.Accent
	gray := color.RGBA{R: 90, G: 96, B: 104, A: 255}
	ink := color.RGBA{R: 24, G: 26, B: 30, A: 255}

	if c.Background != nil {
		xdraw.BiLinear.Scale(img, img.Bounds(), c.Background, c.Background.Bounds(), xdraw.Src, nil)
	} else {
		draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
		// Double border: a heavy outer frame and a hairline inner one.
		drawFrame(img, 40, 6, accent)
		drawFrame(img, 56, 2, accent)
	}

	d, err := r.newDrawer(img, 56, accent)
	if err != nil {
		return nil, err
	}
	drawCentered(d, "CERTIFICATE OF COMPLETION", 250)

	fillRect(img, (canvasWidth-320)/2, 292, 320, 4, accent)

	if d, err = r.newDrawer(img, 32, gray); err != nil {
		return nil, err
	}
	drawCentered(d, "This certifies that", 430)

	// Recipient name shrinks until it fits between the borders.
	maxNameWidth := canvasWidth - 2*120
	nameFace, err := r.fitFace(c.RecipientName, maxNameWidth, nameSizes)
	if err != nil {
		return nil, err
	}
	nameDrawer := &font.Drawer{Dst: img, Src: image.NewUniform(ink), Face: nameFace}
	nameWidth := drawCentered(nameDrawer, c.RecipientName, 570)

	underline := nameWidth + 60
	if underline > maxNameWidth {
		underline = maxNameWidth
	}
	fillRect(img, (canvasWidth-underline)/2, 608, underline, 3, accent)

	if d, err = r.newDrawer(img, 32, gray); err != nil {
		return nil, err
	}
	drawCentered(d, "has successfully completed", 710)

	if d, err = r.newDrawer(img, 48, accent); err != nil {
		return nil, err
	}
	drawCentered(d, c.EventTitle, 800)

	issuedLine := "Issued by " + c.Issuer
	if c.IssuedOn != "" {
		issuedLine += " on " + c.IssuedOn
	}
	if d, err = r.newDrawer(img, 30, gray); err != nil {
		return nil, err
	}
	drawCentered(d, issuedLine, 930)

	if d, err = r.newDrawer(img, 24, gray); err != nil {
		return nil, err
	}
	drawCentered(d, "Certificate ID: "+c.CertificationID, 1130)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// newDrawer builds a drawer with a fresh face at the given size.
func (r *Renderer) newDrawer(dst draw.Image, size float64, col color.Color) (*font.Drawer, error) {
	face, err := r.newFace(size)
	if err != nil {
		return nil, err
	}
	return &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}, nil
}

func (r *Renderer) newFace(size float64) (font.Face, error) {
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return face, nil
}

// fitFace returns a face from sizes whose rendering of text fits maxWidth,
// falling back to the smallest size for extreme inputs.
func (r *Renderer) fitFace(text string, maxWidth int, sizes []float64) (font.Face, error) {
	var face font.Face
	for _, size := range sizes {
		f, err := r.newFace(size)
		if err != nil {
			return nil, err
		}
		face = f
		if font.MeasureString(f, text).Ceil() <= maxWidth {
			break
		}
	}
	return face, nil
}

// drawCentered draws text horizontally centered with its baseline at y and
// returns the text's pixel width.
func drawCentered(d *font.Drawer, text string, y int) int {
	adv := d.MeasureString(text)
	d.Dot = fixed.Point26_6{
		X: (fixed.I(canvasWidth) - adv) / 2,
		Y: fixed.I(y),
	}
	d.DrawString(text)
	return adv.Ceil()
}

// drawFrame draws a rectangular frame inset from the canvas edge.
func drawFrame(img *image.RGBA, inset, thickness int, col color.Color) {
	w := canvasWidth - 2*inset
	h := canvasHeight - 2*inset
	fillRect(img, inset, inset, w, thickness, col)
	fillRect(img, inset, canvasHeight-inset-thickness, w, thickness, col)
	fillRect(img, inset, inset, thickness, h, col)
	fillRect(img, canvasWidth-inset-thickness, inset, thickness, h, col)
}

// fillRect fills a solid rectangle at (x, y) with the given size.
func fillRect(img *image.RGBA, x, y, w, h int, col color.Color) {
	draw.Draw(img, image.Rect(x, y, x+w, y+h), image.NewUniform(col), image.Point{}, draw.Src)
}
