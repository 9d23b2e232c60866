package visualizer

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"

	"github.com/tsawler/go-motion/tensor"
)

// FramesFromGrid converts a stitched grid tensor, shape (time, height,
// width, channel) with values in [0,1], into an 8-bit RGB frame sequence.
// The conversion scales by 255 and truncates toward zero; values outside
// [0,1] wrap or overflow and are written as-is.
func FramesFromGrid(grid *tensor.Tensor) ([]*image.RGBA, error) {
	if grid.Rank() != 4 {
		return nil, fmt.Errorf("frame conversion requires a 4-D grid, got rank %d", grid.Rank())
	}
	if grid.Shape[3] != 3 {
		return nil, fmt.Errorf("frame conversion requires 3 channels, got %d", grid.Shape[3])
	}

	t, h, w := grid.Shape[0], grid.Shape[1], grid.Shape[2]
	frames := make([]*image.RGBA, t)
	for ti := 0; ti < t; ti++ {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetRGBA(x, y, color.RGBA{
					R: uint8(grid.At(ti, y, x, 0) * 255),
					G: uint8(grid.At(ti, y, x, 1) * 255),
					B: uint8(grid.At(ti, y, x, 2) * 255),
					A: 255,
				})
			}
		}
		frames[ti] = img
	}
	return frames, nil
}

// SaveGIF writes a frame sequence to path as a looping animated GIF.
// delay is the per-frame delay in hundredths of a second.
func SaveGIF(path string, frames []*image.RGBA, delay int) error {
	if len(frames) == 0 {
		return fmt.Errorf("cannot save animation with no frames")
	}

	anim := &gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		bounds := frame.Bounds()
		paletted := image.NewPaletted(bounds, palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, bounds, frame, bounds.Min)
		anim.Image = append(anim.Image, paletted)
		anim.Delay = append(anim.Delay, delay)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create animation file: %v", err)
	}
	defer file.Close()

	if err := gif.EncodeAll(file, anim); err != nil {
		return fmt.Errorf("failed to encode animation: %v", err)
	}
	return nil
}
