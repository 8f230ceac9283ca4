/*
Package facefilter applies cosmetic filters over the faces detected on a video frame.
The supported filters are the following: blurring the face region, placing a pair of sunglasses
over the eyes, placing a mustache above the mouth, or just drawing the detected landmark points.

The face geometry is provided by a landmark.Provider: two anchor points (the eye corners
or the mouth corners) define the size and the inclination of the overlay image, which is then
resized, rotated and composited over the frame.

The package provides a command line interface, supporting a live webcam mode and a batch mode
for still images. To check the supported commands type:

	$ facefilter --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"log"

		"github.com/esimov/facefilter"
		"github.com/esimov/facefilter/landmark"
	)

	func main() {
		det, err := landmark.NewPigoDetector(landmark.DefaultPigoConfig())
		if err != nil {
			log.Fatal(err)
		}
		p := facefilter.NewProcessor(det, landmark.Pigo)
		p.Mode = facefilter.ModeSunglasses

		if err := p.Process(in, out); err != nil {
			fmt.Printf("Error applying the filter: %s", err.Error())
		}
	}
*/
package facefilter
