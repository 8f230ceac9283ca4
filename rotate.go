package facefilter

import (
	"image"
	"math"

	"github.com/esimov/facefilter/utils"
)

// rotateReplicate rotates the image by angle degrees around its center using
// bilinear interpolation. A positive angle means counter clockwise rotation.
// The output has the same size as the source; the samples falling outside
// of the source are taken from the nearest edge pixel.
func rotateReplicate(src *image.NRGBA, angle float64) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))

	if w == 0 || h == 0 {
		return dst
	}
	if angle == 0 {
		for y := 0; y < h; y++ {
			si := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w*4], src.Pix[si:si+w*4])
		}
		return dst
	}

	rad := angle * math.Pi / 180
	alpha, beta := math.Cos(rad), math.Sin(rad)
	cx, cy := float64(w/2), float64(h/2)

	// offset returns the index of the source pixel, clamped to the image edges.
	offset := func(x, y int) int {
		x = utils.Clamp(x, 0, w-1)
		y = utils.Clamp(y, 0, h-1)
		return src.PixOffset(b.Min.X+x, b.Min.Y+y)
	}

	for y := 0; y < h; y++ {
		dy := float64(y) - cy
		di := y * dst.Stride

		for x := 0; x < w; x++ {
			dx := float64(x) - cx

			// Inverse mapping of the destination pixel into the source space.
			sx := alpha*dx - beta*dy + cx
			sy := beta*dx + alpha*dy + cy

			x0, y0 := int(math.Floor(sx)), int(math.Floor(sy))
			fx, fy := sx-float64(x0), sy-float64(y0)

			i00, i10 := offset(x0, y0), offset(x0+1, y0)
			i01, i11 := offset(x0, y0+1), offset(x0+1, y0+1)

			for c := 0; c < 4; c++ {
				top := float64(src.Pix[i00+c])*(1-fx) + float64(src.Pix[i10+c])*fx
				bottom := float64(src.Pix[i01+c])*(1-fx) + float64(src.Pix[i11+c])*fx
				v := top*(1-fy) + bottom*fy
				dst.Pix[di+c] = uint8(utils.Clamp(v+0.5, 0, 255))
			}
			di += 4
		}
	}
	return dst
}
