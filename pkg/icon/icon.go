// Package icon implements the pure image pipeline for icon normalization.
//
// The pipeline turns an arbitrary decoded image into a square icon:
//
//	trim transparent margins → pad to square → resize
//
// All stages operate on 8-bit non-premultiplied RGBA (image.NRGBA), the
// working format used by the imaging library and the PNG codec. Images
// without an alpha channel are treated as fully opaque.
//
// # Usage
//
//	img, _ := imaging.Open("logo.png")
//	out, ok := icon.Normalize(img, 256)
//	if !ok {
//	    // fully transparent input, nothing to normalize
//	}
package icon

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// DefaultSize is the default output icon dimension in pixels.
const DefaultSize = 256

// Normalize runs the full pipeline: trim transparent margins, pad to a
// transparent square canvas, and resize to size×size using Lanczos
// resampling. The boolean result is false when the image has no pixel
// with alpha > 0; such images cannot be normalized and should be skipped.
func Normalize(src image.Image, size int) (*image.NRGBA, bool) {
	trimmed, ok := Trim(src)
	if !ok {
		return nil, false
	}
	squared := PadToSquare(trimmed)
	return imaging.Resize(squared, size, size, imaging.Lanczos), true
}

// Trim crops the image to the bounding box of its non-transparent pixels.
// The boolean result is false when the image is fully transparent.
// Images without an alpha channel are returned whole.
func Trim(src image.Image) (*image.NRGBA, bool) {
	box, ok := AlphaBounds(src)
	if !ok {
		return nil, false
	}
	return imaging.Crop(src, box), true
}

// PadToSquare centers the image on a transparent square canvas whose side
// is max(width, height). Offsets use floor division, so an odd remainder
// leaves the extra pixel on the right/bottom (the image sits one pixel
// toward the top/left).
func PadToSquare(src image.Image) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == h {
		return imaging.Clone(src)
	}

	side := w
	if h > side {
		side = h
	}

	canvas := imaging.New(side, side, color.NRGBA{})
	return imaging.Paste(canvas, src, image.Pt((side-w)/2, (side-h)/2))
}

// AlphaBounds returns the bounding box of all pixels with alpha > 0, in
// the coordinate space of src.Bounds(). The box follows the Go convention
// of exclusive Max. For images without transparency (including formats
// that carry no alpha channel) the box is the full image extent.
// The boolean result is false when no pixel has alpha > 0.
func AlphaBounds(src image.Image) (image.Rectangle, bool) {
	b := src.Bounds()
	if b.Empty() {
		return image.Rectangle{}, false
	}

	// Fast path: opaque images (grayscale, truecolor without alpha, or
	// RGBA with all samples at 255) span their full extent.
	if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
		return b, true
	}

	n, ok := src.(*image.NRGBA)
	if !ok {
		// Clone re-origins bounds at (0, 0); shift the result back.
		box, found := nrgbaAlphaBounds(imaging.Clone(src))
		return box.Add(b.Min), found
	}
	return nrgbaAlphaBounds(n)
}

// nrgbaAlphaBounds scans the alpha samples of an NRGBA image row by row.
func nrgbaAlphaBounds(n *image.NRGBA) (image.Rectangle, bool) {
	b := n.Bounds()
	var box image.Rectangle
	found := false

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := n.Pix[n.PixOffset(b.Min.X, y):n.PixOffset(b.Max.X, y)]
		for x := 0; x*4 < len(row); x++ {
			if row[x*4+3] == 0 {
				continue
			}
			px := b.Min.X + x
			if !found {
				box = image.Rect(px, y, px+1, y+1)
				found = true
				continue
			}
			if px < box.Min.X {
				box.Min.X = px
			}
			if px+1 > box.Max.X {
				box.Max.X = px + 1
			}
			box.Max.Y = y + 1
		}
	}
	return box, found
}
