package landmark

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/esimov/facefilter/utils"
	pigo "github.com/esimov/pigo/core"
)

// PigoPoints is the number of landmarks returned for each face by the PigoDetector.
const PigoPoints = 21

var (
	eyeCascades   = []string{"lp46", "lp44", "lp42", "lp38", "lp312"}
	mouthCascades = []string{"lp93", "lp84", "lp82", "lp81"}
)

// PigoConfig holds the cascade locations and the detection parameters of the PigoDetector.
type PigoConfig struct {
	FaceFinder  string  `yaml:"face_finder"`
	Puploc      string  `yaml:"puploc"`
	FlpDir      string  `yaml:"flp_dir"`
	MinSize     int     `yaml:"min_size"`
	MaxSize     int     `yaml:"max_size"`
	ShiftFactor float64 `yaml:"shift_factor"`
	ScaleFactor float64 `yaml:"scale_factor"`
	IoU         float64 `yaml:"iou"`
	Threshold   float32 `yaml:"threshold"`
	Angle       float64 `yaml:"angle"`
	Perturbs    int     `yaml:"perturbs"`
}

// DefaultPigoConfig returns the detection parameters used for webcam sized frames.
func DefaultPigoConfig() PigoConfig {
	return PigoConfig{
		FaceFinder:  "cascade/facefinder",
		Puploc:      "cascade/puploc",
		FlpDir:      "cascade/lps",
		MinSize:     100,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		IoU:         0.2,
		Threshold:   5.0,
		Perturbs:    63,
	}
}

// WithDir returns the configuration with every cascade located under dir.
func (c PigoConfig) WithDir(dir string) PigoConfig {
	c.FaceFinder = filepath.Join(dir, "facefinder")
	c.Puploc = filepath.Join(dir, "puploc")
	c.FlpDir = filepath.Join(dir, "lps")
	return c
}

// PigoDetector is a landmark Provider built on top of the pigo face, pupil
// and facial landmark point cascades. The returned sets follow the Pigo scheme.
type PigoDetector struct {
	cfg        PigoConfig
	classifier *pigo.Pigo
	puploc     *pigo.PuplocCascade
	flpcs      map[string][]*pigo.FlpCascade
}

// NewPigoDetector unpacks the cascade files defined in the configuration.
func NewPigoDetector(cfg PigoConfig) (*PigoDetector, error) {
	if cfg.MinSize <= 0 || cfg.ShiftFactor <= 0 || cfg.ScaleFactor <= 1 {
		return nil, fmt.Errorf("invalid detection parameters: min size %d, shift %.2f, scale %.2f",
			cfg.MinSize, cfg.ShiftFactor, cfg.ScaleFactor)
	}
	if cfg.Perturbs <= 0 {
		cfg.Perturbs = 63
	}

	cascade, err := os.ReadFile(cfg.FaceFinder)
	if err != nil {
		return nil, fmt.Errorf("error reading the face finder cascade: %w", err)
	}
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("error unpacking the face finder cascade: %w", err)
	}

	cascade, err = os.ReadFile(cfg.Puploc)
	if err != nil {
		return nil, fmt.Errorf("error reading the pupil localization cascade: %w", err)
	}
	plc := &pigo.PuplocCascade{}
	puploc, err := plc.UnpackCascade(cascade)
	if err != nil {
		return nil, fmt.Errorf("error unpacking the pupil localization cascade: %w", err)
	}

	flpcs, err := puploc.ReadCascadeDir(cfg.FlpDir)
	if err != nil {
		return nil, fmt.Errorf("error reading the facial landmark cascades: %w", err)
	}
	for _, name := range append(eyeCascades, mouthCascades...) {
		if len(flpcs[name]) == 0 {
			return nil, fmt.Errorf("missing facial landmark cascade %q in %s", name, cfg.FlpDir)
		}
	}

	return &PigoDetector{
		cfg:        cfg,
		classifier: classifier,
		puploc:     puploc,
		flpcs:      flpcs,
	}, nil
}

// Detect runs the face detector over the frame and returns a landmark set
// for every face with a detection score above the configured threshold.
func (d *PigoDetector) Detect(frame *image.NRGBA) ([]Set, error) {
	if frame == nil {
		return nil, errors.New("nil frame")
	}
	bounds := frame.Bounds()
	cols, rows := bounds.Dx(), bounds.Dy()
	if cols == 0 || rows == 0 {
		return nil, nil
	}

	maxSize := d.cfg.MaxSize
	if maxSize <= 0 {
		maxSize = utils.Max(cols, rows)
	}

	imgParams := pigo.ImageParams{
		Pixels: grayscale(frame),
		Rows:   rows,
		Cols:   cols,
		Dim:    cols,
	}
	cParams := pigo.CascadeParams{
		MinSize:     d.cfg.MinSize,
		MaxSize:     maxSize,
		ShiftFactor: d.cfg.ShiftFactor,
		ScaleFactor: d.cfg.ScaleFactor,
		ImageParams: imgParams,
	}

	// Run the classifier over the obtained leaf nodes and return the detection results.
	// The result contains quadruplets representing the row, column, scale and detection score.
	dets := d.classifier.RunCascade(cParams, d.cfg.Angle)

	// Calculate the intersection over union (IoU) of two clusters.
	dets = d.classifier.ClusterDetections(dets, d.cfg.IoU)

	var faces []Set
	for _, det := range dets {
		if det.Q < d.cfg.Threshold {
			continue
		}
		set, ok := d.landmarks(det, imgParams)
		if !ok {
			continue
		}
		for i := range set {
			set[i] = set[i].Add(bounds.Min)
		}
		faces = append(faces, set)
	}
	return faces, nil
}

// landmarks localizes the pupils of a detected face, then runs the
// facial landmark point cascades relative to them.
func (d *PigoDetector) landmarks(det pigo.Detection, img pigo.ImageParams) (Set, bool) {
	scale := float32(det.Scale)

	leftEye := d.puploc.RunDetector(pigo.Puploc{
		Row:      det.Row - int(0.075*scale),
		Col:      det.Col - int(0.175*scale),
		Scale:    scale * 0.25,
		Perturbs: d.cfg.Perturbs,
	}, img, 0.0, false)

	rightEye := d.puploc.RunDetector(pigo.Puploc{
		Row:      det.Row - int(0.075*scale),
		Col:      det.Col + int(0.185*scale),
		Scale:    scale * 0.25,
		Perturbs: d.cfg.Perturbs,
	}, img, 0.0, false)

	if leftEye.Row <= 0 || leftEye.Col <= 0 || rightEye.Row <= 0 || rightEye.Col <= 0 {
		return nil, false
	}

	set := make(Set, 0, PigoPoints)
	set = append(set, d.toPoint(leftEye, img), d.toPoint(rightEye, img))

	for _, name := range eyeCascades {
		flpc := d.flpcs[name][0]
		set = append(set,
			d.toPoint(flpc.GetLandmarkPoint(leftEye, rightEye, img, d.cfg.Perturbs, false), img),
			d.toPoint(flpc.GetLandmarkPoint(leftEye, rightEye, img, d.cfg.Perturbs, true), img),
		)
	}
	for _, name := range mouthCascades {
		flpc := d.flpcs[name][0]
		set = append(set, d.toPoint(flpc.GetLandmarkPoint(leftEye, rightEye, img, d.cfg.Perturbs, false), img))
	}
	// The right mouth corner is the mirrored response of the lp84 cascade.
	flpc := d.flpcs["lp84"][0]
	set = append(set, d.toPoint(flpc.GetLandmarkPoint(leftEye, rightEye, img, d.cfg.Perturbs, true), img))

	for _, p := range faceBox(det) {
		set = append(set, clampPoint(p, img))
	}
	return set, true
}

func (d *PigoDetector) toPoint(pl *pigo.Puploc, img pigo.ImageParams) image.Point {
	if pl == nil {
		return image.Point{}
	}
	return clampPoint(image.Pt(pl.Col, pl.Row), img)
}

// faceBox returns the corners of a detection window, clockwise from the top left.
func faceBox(det pigo.Detection) [4]image.Point {
	half := det.Scale / 2
	return [4]image.Point{
		{X: det.Col - half, Y: det.Row - half},
		{X: det.Col + half, Y: det.Row - half},
		{X: det.Col + half, Y: det.Row + half},
		{X: det.Col - half, Y: det.Row + half},
	}
}

func clampPoint(p image.Point, img pigo.ImageParams) image.Point {
	return image.Pt(
		utils.Clamp(p.X, 0, img.Cols-1),
		utils.Clamp(p.Y, 0, img.Rows-1),
	)
}

// grayscale converts the frame to the luma plane expected by the cascades.
func grayscale(src *image.NRGBA) []uint8 {
	bounds := src.Bounds()
	cols, rows := bounds.Dx(), bounds.Dy()
	gray := make([]uint8, rows*cols)

	for y := 0; y < rows; y++ {
		i := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		row := src.Pix[i : i+cols*4]
		for x := 0; x < cols; x++ {
			r, g, b := float64(row[x*4]), float64(row[x*4+1]), float64(row[x*4+2])
			gray[y*cols+x] = uint8(0.299*r + 0.587*g + 0.114*b)
		}
	}
	return gray
}
