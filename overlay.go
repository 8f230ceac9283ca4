package facefilter

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/esimov/facefilter/imop"
)

// Placement defines the face relative geometry of an overlay.
//
// The From-To segment is the anchor baseline: its length multiplied by Scale gives the
// overlay width and its inclination gives the rotation. The overlay is horizontally centered
// on the mean of the Center points. Vertically the top edge is placed Lift times the overlay
// height above the reference point, which is Baseline when defined, otherwise the mean center.
type Placement struct {
	From, To image.Point
	Scale    float64
	Center   []image.Point
	Baseline *image.Point
	Lift     float64
}

// OverlaySize returns the size of an overlay with the source dimension of w0×h0
// stretched over the from-to segment, preserving the source aspect ratio.
func OverlaySize(from, to image.Point, scale float64, w0, h0 int) (int, int) {
	if w0 <= 0 || h0 <= 0 {
		return 0, 0
	}
	dist := math.Hypot(float64(to.X-from.X), float64(to.Y-from.Y))
	w := int(math.Round(dist * scale))
	h := int(math.Round(float64(w) * float64(h0) / float64(w0)))

	return w, h
}

// RotationAngle returns the angle in degrees the overlay has to be rotated with,
// such that its top edge remains perpendicular to the from-to segment.
// The image y axis points downwards, hence the inverted sign: a positive value
// means a counter clockwise rotation on the screen.
func RotationAngle(from, to image.Point) float64 {
	return -math.Atan2(float64(to.Y-from.Y), float64(to.X-from.X)) * 180 / math.Pi
}

// topLeft returns the upper left corner of a w×h overlay positioned by pl.
func (pl Placement) topLeft(w, h int) image.Point {
	center := meanPoint(pl.Center)
	ref := center
	if pl.Baseline != nil {
		ref = *pl.Baseline
	}
	return image.Point{
		X: int(float64(center.X) - float64(w)/2),
		Y: int(float64(ref.Y) - float64(h)*pl.Lift),
	}
}

// composite resizes and rotates the asset according to the placement geometry,
// then composes the result over the frame. It reports false if the overlay
// has been skipped because of a degenerate geometry.
func (p *Processor) composite(frame, asset *image.NRGBA, pl Placement) bool {
	if len(pl.Center) == 0 {
		return false
	}
	ab := asset.Bounds()
	w, h := OverlaySize(pl.From, pl.To, pl.Scale, ab.Dx(), ab.Dy())
	if w <= 0 || h <= 0 {
		return false
	}

	tl := pl.topLeft(w, h)
	dr := image.Rectangle{Min: tl, Max: tl.Add(image.Pt(w, h))}
	if dr.Intersect(frame.Bounds()).Empty() {
		return false
	}

	overlay := resizeArea(asset, w, h)
	overlay = rotateReplicate(overlay, RotationAngle(pl.From, pl.To))

	op := p.Compositor
	if op == nil {
		op = imop.InitOp()
	}
	op.Draw(frame, dr, overlay, image.Point{})
	return true
}

// resizeArea resizes the source image using an area averaging filter.
// The source is never modified, the result is always a new image.
func resizeArea(src *image.NRGBA, w, h int) *image.NRGBA {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return imaging.Clone(src)
	}
	return imaging.Resize(src, w, h, imaging.Box)
}

// meanPoint returns the truncated mean of the points.
func meanPoint(pts []image.Point) image.Point {
	if len(pts) == 0 {
		return image.Point{}
	}
	var sx, sy int
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return image.Pt(int(float64(sx)/n), int(float64(sy)/n))
}
