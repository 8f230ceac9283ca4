// Package opencv implements the webcam capture and display over OpenCV.
package opencv

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Camera reads the frames of a video capture device.
type Camera struct {
	dev *gocv.VideoCapture
	mat gocv.Mat
}

// OpenCamera opens the video capture device identified by its index.
func OpenCamera(device int) (*Camera, error) {
	dev, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("error opening video capture device %d: %w", device, err)
	}
	if !dev.IsOpened() {
		dev.Close()
		return nil, fmt.Errorf("could not open video capture device %d", device)
	}
	return &Camera{dev: dev, mat: gocv.NewMat()}, nil
}

// Read grabs the next frame.
func (c *Camera) Read() (image.Image, error) {
	if ok := c.dev.Read(&c.mat); !ok {
		return nil, errors.New("cannot read from the capture device")
	}
	if c.mat.Empty() {
		return nil, errors.New("empty frame")
	}
	return c.mat.ToImage()
}

// Close releases the device.
func (c *Camera) Close() error {
	if err := c.mat.Close(); err != nil {
		return err
	}
	return c.dev.Close()
}

// Window shows the frames in a HighGUI window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the provided title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays the frame.
func (w *Window) Show(frame *image.NRGBA) error {
	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return err
	}
	defer mat.Close()

	w.win.IMShow(mat)
	return nil
}

// WaitKey polls the keyboard for delay milliseconds.
func (w *Window) WaitKey(delay int) int {
	return w.win.WaitKey(delay)
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
