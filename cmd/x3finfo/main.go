// Command x3finfo reads a Sigma X3F raw file and prints its features, or
// develops and writes it as a PNG.
//
// Usage:
//
//	x3finfo <input.x3f>                 Display file metadata
//	x3finfo -render -o out.png <input>   Develop and write as PNG
package main

import (
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/sigmaraw/x3fcore"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "x3finfo: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("x3finfo", flag.ContinueOnError)
	render := fs.Bool("render", false, "develop the raw image instead of printing metadata")
	output := fs.String("o", "", `output PNG path (default: <input>.png), "-" for stdout`)
	wb := fs.String("wb", "", "white balance override (default: file's recorded white balance)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("missing input file\nUsage: x3finfo [-render] [-o out.png] <input.x3f>")
	}
	inputPath := fs.Arg(0)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}

	f, err := x3f.Open(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", inputPath, err)
	}

	if *render {
		return renderFile(f, inputPath, *output, *wb)
	}
	return printInfo(f, inputPath)
}

func printInfo(f *x3f.File, inputPath string) error {
	feat := f.GetFeatures()
	fmt.Printf("File:         %s\n", inputPath)
	fmt.Printf("Dimensions:   %d x %d\n", feat.Width, feat.Height)
	fmt.Printf("Camera model: %s\n", feat.CameraModel)
	fmt.Printf("White balance: %s\n", feat.WhiteBalance)
	fmt.Printf("Quattro:      %v\n", feat.IsQuattro)
	fmt.Printf("Thumbnail:    %v\n", feat.HasThumbnail)
	return nil
}

func renderFile(f *x3f.File, inputPath, outputPath, wb string) error {
	img, err := f.Render(x3f.RenderOptions{WhiteBalance: wb})
	if err != nil {
		return fmt.Errorf("rendering %s: %w", inputPath, err)
	}

	var w io.Writer
	if outputPath == "-" {
		w = os.Stdout
	} else {
		if outputPath == "" {
			outputPath = trimExt(inputPath) + ".png"
		}
		out, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer out.Close()
		w = out
	}

	if err := png.Encode(w, img.ToNRGBA()); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	if outputPath != "-" {
		fmt.Fprintf(os.Stderr, "Rendered %s -> %s\n", inputPath, outputPath)
	}
	return nil
}

func trimExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
