// Package webcam runs the live loop: it grabs the frames from a capture device,
// applies the selected face filter, draws the menu and shows the result,
// while the keyboard switches between the filters.
package webcam

import (
	"context"
	"fmt"
	"image"
	"log"

	"github.com/esimov/facefilter"
	"github.com/esimov/facefilter/utils"
)

// Capture provides the video frames.
type Capture interface {
	Read() (image.Image, error)
	Close() error
}

// Display shows the frames and reports the pressed keys.
type Display interface {
	Show(frame *image.NRGBA) error
	// WaitKey waits delay milliseconds for a key press and
	// returns its code, or -1 if no key has been pressed.
	WaitKey(delay int) int
	Close() error
}

// Filter modifies a frame according to the active mode.
type Filter interface {
	Apply(frame *image.NRGBA, mode facefilter.Mode) (*image.NRGBA, error)
}

// Overlay is drawn over every displayed frame.
type Overlay interface {
	Draw(frame *image.NRGBA)
}

// Options of the live loop.
type Options struct {
	Delay int             // key polling delay in milliseconds
	Mode  facefilter.Mode // initial filter
}

// Run processes the frames until the exit key is pressed, the capture fails or ctx is canceled.
// A capture failure only stops the loop, it is not reported as an error.
func Run(ctx context.Context, cam Capture, win Display, filter Filter, menu Overlay, opts Options) error {
	delay := opts.Delay
	if delay <= 0 {
		delay = 1
	}
	mode := opts.Mode

	var lastErr string
	for {
		if ctx.Err() != nil {
			return nil
		}

		img, err := cam.Read()
		if err != nil {
			log.Println(utils.StatusLine(fmt.Sprintf("Failed to grab frame: %v", err), utils.ErrorMessage))
			return nil
		}

		frame := facefilter.ToFrame(img)
		res, err := filter.Apply(frame, mode)
		if err != nil {
			// Report the same failure only once, not on every frame.
			if msg := err.Error(); msg != lastErr {
				log.Println(utils.StatusLine(msg, utils.ErrorMessage))
				lastErr = msg
			}
		} else {
			lastErr = ""
		}
		if res == nil {
			res = frame
		}
		if menu != nil {
			menu.Draw(res)
		}

		if err := win.Show(res); err != nil {
			return fmt.Errorf("could not display the frame: %w", err)
		}

		key := win.WaitKey(delay)
		if key < 0 {
			continue
		}
		key &= 0xff
		if key == facefilter.ExitKey {
			return nil
		}
		if next := mode.Next(key); next != mode {
			mode = next
			lastErr = ""
			log.Println(utils.StatusLine(fmt.Sprintf("Filter: %v", mode), utils.DefaultMessage))
		}
	}
}
