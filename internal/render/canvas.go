package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
)

// Minecraft chat colours.
var (
	Gold  = color.NRGBA{R: 0xFF, G: 0xAA, B: 0x00, A: 0xFF}
	Green = color.NRGBA{R: 0x55, G: 0xFF, B: 0x55, A: 0xFF}
	Aqua  = color.NRGBA{R: 0x55, G: 0xFF, B: 0xFF, A: 0xFF}
	Pink  = color.NRGBA{R: 0xFF, G: 0x55, B: 0xFF, A: 0xFF}
	White = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Gray  = color.NRGBA{R: 0xAA, G: 0xAA, B: 0xAA, A: 0xFF}
	Red   = color.NRGBA{R: 0xFF, G: 0x55, B: 0x55, A: 0xFF}
)

var (
	panelFill         = color.NRGBA{R: 20, G: 20, B: 20, A: 200}
	borderColor       = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	flatBG            = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
	avatarPlaceholder = color.NRGBA{R: 139, G: 90, B: 43, A: 255}
)

const (
	panelRadius = 12
	panelBorder = 2
	blurSigma   = 3
)

// canvas is the transparent foreground layer of a card.
type canvas struct {
	dc    *gg.Context
	faces *faceCache
}

func newCanvas(w, h int, fonts *Fonts) *canvas {
	return &canvas{
		dc:    gg.NewContext(w, h),
		faces: newFaceCache(fonts),
	}
}

func (c *canvas) close() { c.faces.close() }

// panel fills the whole layer with the rounded translucent panel and its border.
func (c *canvas) panel() {
	w, h := float64(c.dc.Width()), float64(c.dc.Height())
	c.dc.DrawRoundedRectangle(panelBorder, panelBorder, w-2*panelBorder, h-2*panelBorder, panelRadius-panelBorder)
	c.dc.SetColor(panelFill)
	c.dc.Fill()

	half := panelBorder / 2.0
	c.dc.DrawRoundedRectangle(half, half, w-panelBorder, h-panelBorder, panelRadius-half)
	c.dc.SetColor(borderColor)
	c.dc.SetLineWidth(panelBorder)
	c.dc.Stroke()
}

// hline draws a one pixel border-coloured line from x0 to x1 inclusive.
func (c *canvas) hline(x0, x1, y int) {
	c.rule(float64(x0), float64(y)+0.5, float64(x1+1), float64(y)+0.5)
}

func (c *canvas) vline(x, y0, y1 int) {
	c.rule(float64(x)+0.5, float64(y0), float64(x)+0.5, float64(y1+1))
}

func (c *canvas) rule(x0, y0, x1, y1 float64) {
	c.dc.SetColor(borderColor)
	c.dc.SetLineWidth(1)
	c.dc.DrawLine(x0, y0, x1, y1)
	c.dc.Stroke()
}

// outline strokes r (inclusive corners) with the given width.
func (c *canvas) outline(r image.Rectangle, width int, col color.Color) {
	inset := float64(width) / 2
	c.dc.DrawRectangle(float64(r.Min.X)+inset, float64(r.Min.Y)+inset,
		float64(r.Dx()+1-width), float64(r.Dy()+1-width))
	c.dc.SetColor(col)
	c.dc.SetLineWidth(float64(width))
	c.dc.Stroke()
}

func (c *canvas) paste(src image.Image, x, y int) {
	c.dc.DrawImage(src, x, y)
}

func shadowOf(col color.NRGBA) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(col.R) * 0.3),
		G: uint8(float64(col.G) * 0.3),
		B: uint8(float64(col.B) * 0.3),
		A: col.A,
	}
}

// text draws s with its top-left corner at (x, y) and a drop shadow at +2,+2.
func (c *canvas) text(x, y int, s string, size float64, col color.NRGBA) {
	c.anchored(float64(x), float64(y), 0, s, size, col)
}

// textCentered draws s horizontally centred on cx.
func (c *canvas) textCentered(cx, y int, s string, size float64, col color.NRGBA) {
	c.anchored(float64(cx), float64(y), 0.5, s, size, col)
}

func (c *canvas) anchored(x, top, ax float64, s string, size float64, col color.NRGBA) {
	face := c.faces.face(size)
	c.dc.SetFontFace(face)
	baseline := top + float64(face.Metrics().Ascent.Ceil())

	c.dc.SetColor(shadowOf(col))
	c.dc.DrawStringAnchored(s, x+2, baseline+2, ax, 0)
	c.dc.SetColor(col)
	c.dc.DrawStringAnchored(s, x, baseline, ax, 0)
}

// background returns the card backdrop: the template stretched to size,
// blurred and darkened by a black scrim of the given alpha. Without a
// template it is a flat dark fill.
func background(tpl image.Image, w, h int, scrim uint8) *image.NRGBA {
	var bg *image.NRGBA
	if tpl == nil {
		bg = imaging.New(w, h, flatBG)
	} else {
		resized := resize.Resize(uint(w), uint(h), tpl, resize.Lanczos3)
		bg = imaging.Blur(resized, blurSigma)
	}
	return imaging.Overlay(bg, imaging.New(w, h, color.NRGBA{A: scrim}), image.Point{}, 1)
}

// compose lays the canvas over bg and encodes the result as PNG.
func compose(bg *image.NRGBA, c *canvas) ([]byte, error) {
	out := imaging.Overlay(bg, c.dc.Image(), image.Point{}, 1)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeAvatar decodes a player head and scales it to size. Missing or
// undecodable data yields a flat brown square.
func decodeAvatar(data []byte, size int) image.Image {
	if len(data) > 0 {
		img, err := imaging.Decode(bytes.NewReader(data))
		if err == nil && img.Bounds().Dx() > 0 && img.Bounds().Dy() > 0 {
			return resize.Resize(uint(size), uint(size), img, resize.Lanczos3)
		}
	}
	return imaging.New(size, size, avatarPlaceholder)
}
