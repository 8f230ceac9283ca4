// Package imop implements the composition operations used for placing
// an overlay region (sunglasses, mustache) over the video frame.
//
// The image/draw core package blends proportionally to the source alpha,
// while the face filters need a hard cutover: every overlay pixel with a
// non-zero alpha replaces the frame color, every fully transparent pixel
// leaves it untouched. Both behaviours are offered here and operate directly
// on the pixel rows of *image.NRGBA values.
package imop

import (
	"fmt"
	"image"

	"github.com/esimov/facefilter/utils"
)

const (
	// Replace copies the overlay color wherever its alpha is greater than zero.
	Replace = "replace"
	// SrcOver blends the overlay color proportionally to its alpha.
	SrcOver = "src_over"
)

// Composite holds the currently active composition operation.
type Composite struct {
	current string
	ops     []string
}

// InitOp initializes a new Composite with Replace as the active operation.
func InitOp() *Composite {
	return &Composite{
		current: Replace,
		ops:     []string{Replace, SrcOver},
	}
}

// Set activates one of the supported composition operations.
func (op *Composite) Set(cop string) error {
	if !utils.Contains(op.ops, cop) {
		return fmt.Errorf("unsupported composite operation: %q", cop)
	}
	op.current = cop
	return nil
}

// Get returns the currently active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// Draw composes the src region starting at sp over the dst rectangle r.
// Both regions are clipped so that they have the same size and lie inside
// their image bounds. The alpha channel of dst is never modified.
func (op *Composite) Draw(dst *image.NRGBA, r image.Rectangle, src *image.NRGBA, sp image.Point) {
	r, sp, ok := clip(dst.Bounds(), r, src.Bounds(), sp)
	if !ok {
		return
	}
	w, h := r.Dx(), r.Dy()

	for y := 0; y < h; y++ {
		di := dst.PixOffset(r.Min.X, r.Min.Y+y)
		si := src.PixOffset(sp.X, sp.Y+y)
		drow := dst.Pix[di : di+w*4 : di+w*4]
		srow := src.Pix[si : si+w*4 : si+w*4]

		switch op.current {
		case SrcOver:
			srcOverRow(drow, srow)
		default:
			replaceRow(drow, srow)
		}
	}
}

// replaceRow copies the color channels of every pixel with a non-zero alpha.
func replaceRow(dst, src []uint8) {
	for i := 0; i+3 < len(src); i += 4 {
		if src[i+3] > 0 {
			copy(dst[i:i+3], src[i:i+3])
		}
	}
}

// srcOverRow mixes the color channels proportionally to the source alpha.
func srcOverRow(dst, src []uint8) {
	for i := 0; i+3 < len(src); i += 4 {
		a := uint32(src[i+3])
		switch a {
		case 0:
			continue
		case 0xff:
			copy(dst[i:i+3], src[i:i+3])
			continue
		}
		for c := 0; c < 3; c++ {
			v := uint32(src[i+c])*a + uint32(dst[i+c])*(0xff-a)
			dst[i+c] = uint8((v + 0x7f) / 0xff)
		}
	}
}

// clip restricts the destination rectangle and the matching source point
// so that both lie inside their image bounds and share the same size.
func clip(dstBounds, r, srcBounds image.Rectangle, sp image.Point) (image.Rectangle, image.Point, bool) {
	orig := r.Min
	r = r.Intersect(dstBounds)
	sp = sp.Add(r.Min.Sub(orig))

	sr := image.Rectangle{Min: sp, Max: sp.Add(r.Size())}.Intersect(srcBounds)
	r = image.Rectangle{Min: r.Min.Add(sr.Min.Sub(sp)), Max: r.Min.Add(sr.Max.Sub(sp))}
	sp = sr.Min

	if r.Empty() {
		return r, sp, false
	}
	return r, sp, true
}
