package facefilter

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/esimov/facefilter/landmark"
	"github.com/esimov/facefilter/utils"
	"golang.org/x/image/vector"
)

// DefaultBlurKernel is the size of the gaussian kernel used for blurring the faces.
const DefaultBlurKernel = 31

// Blur blurs the frame over the union of the convex hulls of every face.
// The pixels outside of the hulls are left untouched.
func (p *Processor) Blur(frame *image.NRGBA, faces []landmark.Set) *image.NRGBA {
	if len(faces) == 0 {
		return frame
	}

	bounds := frame.Bounds()
	mask := hullMask(bounds, faces)
	sel := maskBounds(mask)
	if sel.Empty() {
		return frame
	}

	kernel := p.BlurKernel
	if kernel <= 0 {
		kernel = DefaultBlurKernel
	}
	sigma := blurSigma(kernel)
	radius := int(math.Ceil(sigma * 3))

	// Blurring only the selected area extended with the kernel radius
	// gives the same result inside the mask as blurring the whole frame.
	region := sel.Inset(-radius).Intersect(mask.Bounds())
	blurred := imaging.Blur(frame.SubImage(region.Add(bounds.Min)), sigma)

	for y := sel.Min.Y; y < sel.Max.Y; y++ {
		mi := mask.PixOffset(0, y)
		row := mask.Pix[mi : mi+mask.Bounds().Dx()]

		for x := sel.Min.X; x < sel.Max.X; {
			if row[x] == 0 {
				x++
				continue
			}
			start := x
			for x < sel.Max.X && row[x] != 0 {
				x++
			}
			n := (x - start) * 4
			di := frame.PixOffset(bounds.Min.X+start, bounds.Min.Y+y)
			si := blurred.PixOffset(start-region.Min.X, y-region.Min.Y)
			copy(frame.Pix[di:di+n], blurred.Pix[si:si+n])
		}
	}
	return frame
}

// blurSigma derives the gaussian standard deviation from the kernel size.
func blurSigma(kernel int) float64 {
	return 0.3*(float64(kernel-1)/2-1) + 0.8
}

// hullMask returns a mask with the origin at (0, 0) and the size of the frame bounds,
// where every pixel touched by one of the face hulls is set to 0xff.
func hullMask(bounds image.Rectangle, faces []landmark.Set) *image.Alpha {
	w, h := bounds.Dx(), bounds.Dy()
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	z := vector.NewRasterizer(w, h)

	for _, face := range faces {
		hull := convexHull(face)
		if len(hull) == 0 {
			continue
		}
		if len(hull) < 3 {
			// Collinear landmarks select the pixels of the segment.
			from, to := hull[0].Sub(bounds.Min), hull[len(hull)-1].Sub(bounds.Min)
			selectLine(mask, from, to)
			continue
		}
		z.Reset(w, h)
		z.DrawOp = draw.Over

		// The landmarks are addressing pixel centers.
		pt := func(p image.Point) (float32, float32) {
			return float32(p.X-bounds.Min.X) + 0.5, float32(p.Y-bounds.Min.Y) + 0.5
		}
		z.MoveTo(pt(hull[0]))
		for _, p := range hull[1:] {
			z.LineTo(pt(p))
		}
		z.ClosePath()
		z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	}

	for i, a := range mask.Pix {
		if a > 0 {
			mask.Pix[i] = 0xff
		}
	}
	return mask
}

// selectLine marks the pixels of the from-to segment on the mask.
func selectLine(mask *image.Alpha, from, to image.Point) {
	dx, dy := utils.Abs(to.X-from.X), -utils.Abs(to.Y-from.Y)
	sx, sy := 1, 1
	if from.X > to.X {
		sx = -1
	}
	if from.Y > to.Y {
		sy = -1
	}

	p, e := from, dx+dy
	for {
		if p.In(mask.Rect) {
			mask.SetAlpha(p.X, p.Y, color.Alpha{A: 0xff})
		}
		if p == to {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			p.X += sx
		}
		if e2 <= dx {
			e += dx
			p.Y += sy
		}
	}
}

// maskBounds returns the smallest rectangle containing every selected pixel of the mask.
func maskBounds(mask *image.Alpha) image.Rectangle {
	var r image.Rectangle
	b := mask.Bounds()

	for y := b.Min.Y; y < b.Max.Y; y++ {
		mi := mask.PixOffset(b.Min.X, y)
		row := mask.Pix[mi : mi+b.Dx()]
		for x, a := range row {
			if a == 0 {
				continue
			}
			r = r.Union(image.Rect(b.Min.X+x, y, b.Min.X+x+1, y+1))
		}
	}
	return r
}
