package facefilter

import (
	"fmt"
	"image"
	"io"

	"github.com/esimov/facefilter/imop"
	"github.com/esimov/facefilter/landmark"
	"github.com/esimov/facefilter/utils"
)

const (
	// SunglassesScale is the ratio between the sunglasses width and the eye corners distance.
	SunglassesScale = 2.2
	// MustacheScale is the ratio between the mustache width and the mouth corners distance.
	MustacheScale = 1.5
	// MustacheLift is the fraction of the mustache height placed above the nose tip.
	MustacheLift = 0.2
)

// Processor options
type Processor struct {
	Detector       landmark.Provider
	Scheme         landmark.Scheme
	Assets         *AssetStore
	Compositor     *imop.Composite
	Spinner        *utils.Spinner
	SunglassesPath string
	MustachePath   string
	BlurKernel     int
	Mode           Mode
}

// NewProcessor initializes a processor with the default filter options.
func NewProcessor(det landmark.Provider, scheme landmark.Scheme) *Processor {
	return &Processor{
		Detector:       det,
		Scheme:         scheme,
		Assets:         NewAssetStore(),
		Compositor:     imop.InitOp(),
		SunglassesPath: "assets/sunglasses.png",
		MustachePath:   "assets/mustache.png",
		BlurKernel:     DefaultBlurKernel,
	}
}

// Apply detects the faces on the frame and applies the filter selected by mode.
// The frame is modified in place. An asset load error leaves the frame unchanged.
func (p *Processor) Apply(frame *image.NRGBA, mode Mode) (*image.NRGBA, error) {
	if mode == ModeNone {
		return frame, nil
	}

	faces, err := p.Detector.Detect(frame)
	if err != nil {
		return frame, fmt.Errorf("error detecting the facial landmarks: %w", err)
	}

	switch mode {
	case ModeLandmarks:
		return p.Landmarks(frame, faces), nil
	case ModeBlur:
		return p.Blur(frame, faces), nil
	case ModeSunglasses:
		return p.Sunglasses(frame, faces)
	case ModeMustache:
		return p.Mustache(frame, faces)
	}
	return frame, fmt.Errorf("unsupported filter: %v", mode)
}

// Sunglasses places the sunglasses asset over the eyes of every face.
func (p *Processor) Sunglasses(frame *image.NRGBA, faces []landmark.Set) (*image.NRGBA, error) {
	if len(faces) == 0 {
		return frame, nil
	}
	asset, err := p.asset(p.SunglassesPath)
	if err != nil {
		return frame, err
	}

	for _, face := range faces {
		eyes, ok := p.Scheme.Points(face, landmark.LeftEyeCorner, landmark.RightEyeCorner)
		if !ok {
			continue
		}
		p.composite(frame, asset, Placement{
			From:   eyes[0],
			To:     eyes[1],
			Scale:  SunglassesScale,
			Center: eyes,
			Lift:   0.5,
		})
	}
	return frame, nil
}

// Mustache places the mustache asset between the nose and the mouth of every face.
// The overlay is horizontally centered on the mean of the nose tip and the mouth
// corners, but vertically it is anchored to the nose tip.
func (p *Processor) Mustache(frame *image.NRGBA, faces []landmark.Set) (*image.NRGBA, error) {
	if len(faces) == 0 {
		return frame, nil
	}
	asset, err := p.asset(p.MustachePath)
	if err != nil {
		return frame, err
	}

	for _, face := range faces {
		pts, ok := p.Scheme.Points(face, landmark.NoseTip, landmark.LeftMouthCorner, landmark.RightMouthCorner)
		if !ok {
			continue
		}
		nose := pts[0]
		p.composite(frame, asset, Placement{
			From:     pts[1],
			To:       pts[2],
			Scale:    MustacheScale,
			Center:   pts,
			Baseline: &nose,
			Lift:     MustacheLift,
		})
	}
	return frame, nil
}

func (p *Processor) asset(path string) (*image.NRGBA, error) {
	if p.Assets == nil {
		return LoadRGBA(path)
	}
	return p.Assets.Get(path)
}

// Process applies the filter selected by the Mode field over the image read from r
// and encodes the result into w. We are using the io package, since we can provide
// different input and output types, as long as they implement the io.Reader and io.Writer interface.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	src, _, err := image.Decode(r)
	if err != nil {
		return err
	}

	frame, err := p.Apply(ToFrame(src), p.Mode)
	if err != nil {
		return err
	}
	return encodeImg(w, frame)
}
