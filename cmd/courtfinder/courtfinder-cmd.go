package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"tenniscourt"

	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/rimage"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <input.jpg> [output.jpg] [calibration.json]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  If output is not specified, it will be <input>_court.jpg\n")
		os.Exit(1)
	}

	inputFile := os.Args[1]

	var outputFile string
	if len(os.Args) >= 3 {
		outputFile = os.Args[2]
	} else {
		ext := filepath.Ext(inputFile)
		base := strings.TrimSuffix(inputFile, ext)
		outputFile = base + "_court" + ext
	}

	logger := logging.NewLogger("courtfinder")

	cal := tenniscourt.DefaultCalibration()
	if len(os.Args) >= 4 {
		var err error
		cal, err = tenniscourt.LoadCalibration(os.Args[3])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading calibration: %v\n", err)
			os.Exit(1)
		}
	}

	input, err := rimage.ReadImageFromFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading image: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Image size: %dx%d\n", input.Bounds().Dx(), input.Bounds().Dy())

	session, err := tenniscourt.NewSession(cal, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting session: %v\n", err)
		os.Exit(1)
	}

	model := session.IngestFrame(tenniscourt.FrameFromImage(input))
	regions := session.Regions()

	fmt.Printf("Court detected: %v (confidence %0.2f, %d candidates)\n", model.Detected, model.Confidence, model.Candidates)
	lines := model.Lines()
	for _, name := range slices.Sorted(maps.Keys(lines)) {
		fmt.Printf("  %-20s %v\n", name, lines[name])
	}
	fmt.Printf("Regions: %v\n", regions)

	output := tenniscourt.CourtDebugImage(input, model, regions)

	err = rimage.WriteImageToFile(outputFile, output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output image: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Saved output image to %s\n", outputFile)
}
