package visualizer

import (
	"image/gif"
	"os"
	"path/filepath"
	"testing"

	"github.com/tsawler/go-motion/tensor"
)

func TestFramesFromGridTruncates(t *testing.T) {
	// 255*0.999 = 254.745 truncates to 254, not 255.
	grid, err := tensor.Full([]int{1, 2, 2, 3}, 0.999)
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}
	grid.Set(0.5, 0, 0, 0, 0)

	frames, err := FramesFromGrid(grid)
	if err != nil {
		t.Fatalf("FramesFromGrid failed: %v", err)
	}
	if len(frames) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(frames))
	}

	c := frames[0].RGBAAt(0, 0)
	if c.R != 127 { // 255*0.5 = 127.5 truncates to 127
		t.Errorf("Expected truncated red value 127, got %d", c.R)
	}
	if c.G != 254 {
		t.Errorf("Expected truncated green value 254, got %d", c.G)
	}
	if c.A != 255 {
		t.Errorf("Expected opaque alpha, got %d", c.A)
	}

	c = frames[0].RGBAAt(1, 1)
	if c.R != 254 || c.G != 254 || c.B != 254 {
		t.Errorf("Expected (254,254,254), got (%d,%d,%d)", c.R, c.G, c.B)
	}
}

func TestFramesFromGridValidation(t *testing.T) {
	gray, _ := tensor.Zeros([]int{1, 2, 2, 1})
	if _, err := FramesFromGrid(gray); err == nil {
		t.Error("Expected error for non-RGB channel count")
	}

	rank3, _ := tensor.Zeros([]int{2, 2, 3})
	if _, err := FramesFromGrid(rank3); err == nil {
		t.Error("Expected error for non-4-D grid")
	}
}

func TestSaveGIF(t *testing.T) {
	grid, err := tensor.Full([]int{3, 4, 4, 3}, 0.5)
	if err != nil {
		t.Fatalf("Failed to create grid: %v", err)
	}

	frames, err := FramesFromGrid(grid)
	if err != nil {
		t.Fatalf("FramesFromGrid failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.gif")
	if err := SaveGIF(path, frames, 10); err != nil {
		t.Fatalf("SaveGIF failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open written animation: %v", err)
	}
	defer file.Close()

	decoded, err := gif.DecodeAll(file)
	if err != nil {
		t.Fatalf("Failed to decode written animation: %v", err)
	}
	if len(decoded.Image) != 3 {
		t.Errorf("Expected 3 frames, got %d", len(decoded.Image))
	}
	for i, delay := range decoded.Delay {
		if delay != 10 {
			t.Errorf("Expected delay 10 for frame %d, got %d", i, delay)
		}
	}
}

func TestSaveGIFRequiresFrames(t *testing.T) {
	if err := SaveGIF(filepath.Join(t.TempDir(), "empty.gif"), nil, 10); err == nil {
		t.Error("Expected error for empty frame sequence")
	}
}

func TestVisualizeReconstructionShape(t *testing.T) {
	v := New()

	// Model layout (batch=2, channel=3, time=2, height=4, width=4)
	input, err := tensor.Full([]int{2, 3, 2, 4, 4}, 0.4)
	if err != nil {
		t.Fatalf("Failed to create input: %v", err)
	}
	prediction := input.Clone()
	deformed := input.Clone()

	frames, err := v.VisualizeReconstruction(input, prediction, deformed)
	if err != nil {
		t.Fatalf("VisualizeReconstruction failed: %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(frames))
	}

	// 4 groups wide, 2 batch elements tall.
	bounds := frames[0].Bounds()
	if bounds.Dx() != 4*4 {
		t.Errorf("Expected grid width 16, got %d", bounds.Dx())
	}
	if bounds.Dy() != 2*4 {
		t.Errorf("Expected grid height 8, got %d", bounds.Dy())
	}
}

func TestVisualizeTransferShape(t *testing.T) {
	v := New()

	appearance, err := tensor.Full([]int{1, 3, 2, 4, 4}, 0.3)
	if err != nil {
		t.Fatalf("Failed to create appearance video: %v", err)
	}
	motion := appearance.Clone()
	prediction := appearance.Clone()

	frames, err := v.VisualizeTransfer(appearance, motion, prediction)
	if err != nil {
		t.Fatalf("VisualizeTransfer failed: %v", err)
	}

	if len(frames) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(frames))
	}

	bounds := frames[0].Bounds()
	if bounds.Dx() != 3*4 {
		t.Errorf("Expected grid width 12, got %d", bounds.Dx())
	}
	if bounds.Dy() != 4 {
		t.Errorf("Expected grid height 4, got %d", bounds.Dy())
	}
}
