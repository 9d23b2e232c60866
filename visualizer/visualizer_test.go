package visualizer

import (
	"testing"

	"github.com/tsawler/go-motion/tensor"
)

// testBatch builds a channel-last (batch, time, height, width, channel)
// video batch filled with value.
func testBatch(t *testing.T, b, frames, h, w, c int, value float32) *tensor.Tensor {
	t.Helper()
	videos, err := tensor.Full([]int{b, frames, h, w, c}, value)
	if err != nil {
		t.Fatalf("Failed to create test batch: %v", err)
	}
	return videos
}

func TestColumnShape(t *testing.T) {
	v := New()
	v.DrawBorder = false

	videos := testBatch(t, 3, 2, 4, 5, 3, 0.5)
	column, err := v.Column(videos)
	if err != nil {
		t.Fatalf("Column failed: %v", err)
	}

	expected := []int{2, 12, 5, 3} // (time, batch*height, width, channel)
	for i, dim := range column.Shape {
		if dim != expected[i] {
			t.Errorf("Shape mismatch at %d: expected %d, got %d", i, expected[i], dim)
		}
	}

	for _, value := range column.Data {
		if value != 0.5 {
			t.Fatalf("Expected untouched frame content with borders disabled, got %f", value)
		}
	}
}

func TestColumnBorders(t *testing.T) {
	v := New()

	videos := testBatch(t, 2, 1, 4, 4, 3, 0.25)
	column, err := v.Column(videos)
	if err != nil {
		t.Fatalf("Column failed: %v", err)
	}

	// Every stitched frame contributes its own border rows, so rows 0, 3,
	// 4 and 7 of the column are fully overwritten.
	for _, y := range []int{0, 3, 4, 7} {
		for x := 0; x < 4; x++ {
			if got := column.At(0, y, x, 0); got != markerValue {
				t.Errorf("Expected border at row %d col %d, got %f", y, x, got)
			}
		}
	}
	// First and last columns are overwritten in every row.
	for y := 0; y < 8; y++ {
		if got := column.At(0, y, 0, 1); got != markerValue {
			t.Errorf("Expected border in first column at row %d, got %f", y, got)
		}
		if got := column.At(0, y, 3, 1); got != markerValue {
			t.Errorf("Expected border in last column at row %d, got %f", y, got)
		}
	}
	// Interior pixels stay untouched.
	if got := column.At(0, 1, 2, 0); got != 0.25 {
		t.Errorf("Expected interior pixel to stay 0.25, got %f", got)
	}

	// Caller's batch must not be mutated.
	for _, value := range videos.Data {
		if value != 0.25 {
			t.Fatal("Column mutated the caller's video batch")
		}
	}
}

func TestRenderKeypoints(t *testing.T) {
	v := New()
	v.KPSize = 1

	video, err := tensor.Full([]int{2, 8, 8, 3}, 0.1)
	if err != nil {
		t.Fatalf("Failed to create video: %v", err)
	}

	keypoints := [][]Keypoint{
		{{X: 4, Y: 4}},
		{}, // no keypoints on the second frame
	}

	rendered, err := v.RenderKeypoints(video, keypoints)
	if err != nil {
		t.Fatalf("RenderKeypoints failed: %v", err)
	}

	// Shape preserved.
	for i, dim := range video.Shape {
		if rendered.Shape[i] != dim {
			t.Fatalf("Shape mismatch at %d: expected %d, got %d", i, dim, rendered.Shape[i])
		}
	}

	// Marker drawn at the center and its 4-neighborhood for radius 1.
	for _, p := range [][2]int{{4, 4}, {3, 4}, {5, 4}, {4, 3}, {4, 5}} {
		if got := rendered.At(0, p[0], p[1], 0); got != markerValue {
			t.Errorf("Expected marker at (%d,%d), got %f", p[0], p[1], got)
		}
	}
	// Diagonal neighbors are outside radius 1.
	if got := rendered.At(0, 3, 3, 0); got != 0.1 {
		t.Errorf("Expected untouched pixel at (3,3), got %f", got)
	}

	// Frame without keypoints untouched.
	frame, err := rendered.Index(1)
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	for _, value := range frame.Data {
		if value != 0.1 {
			t.Fatal("Frame without keypoints was modified")
		}
	}

	// Input untouched.
	for _, value := range video.Data {
		if value != 0.1 {
			t.Fatal("RenderKeypoints mutated its input")
		}
	}
}

func TestRenderKeypointsClipsOutOfBounds(t *testing.T) {
	v := New()
	v.KPSize = 2

	video, err := tensor.Full([]int{1, 4, 4, 3}, 0.0)
	if err != nil {
		t.Fatalf("Failed to create video: %v", err)
	}

	keypoints := [][]Keypoint{
		{{X: -1, Y: 0}, {X: 3, Y: 3}, {X: 10, Y: 10}},
	}

	rendered, err := v.RenderKeypoints(video, keypoints)
	if err != nil {
		t.Fatalf("RenderKeypoints failed: %v", err)
	}

	// The corner marker reaches the frame edge without going out of range.
	if got := rendered.At(0, 3, 3, 0); got != markerValue {
		t.Errorf("Expected clipped marker at corner, got %f", got)
	}
	// The fully off-frame keypoint leaves the frame as-is.
	if got := rendered.At(0, 1, 1, 0); got != 0 {
		t.Errorf("Expected interior pixel untouched, got %f", got)
	}
}

func TestRenderKeypointsFrameCountMismatch(t *testing.T) {
	v := New()
	video, _ := tensor.Zeros([]int{2, 4, 4, 3})

	if _, err := v.RenderKeypoints(video, [][]Keypoint{{}}); err == nil {
		t.Error("Expected error for keypoint frame count mismatch")
	}
}

func TestGridOrderAndWidth(t *testing.T) {
	v := New()
	v.DrawBorder = false

	left := testBatch(t, 1, 1, 2, 2, 3, 0.2)
	right := testBatch(t, 1, 1, 2, 2, 3, 0.8)

	grid, err := v.Grid(Plain(left), Plain(right))
	if err != nil {
		t.Fatalf("Grid failed: %v", err)
	}

	expected := []int{1, 2, 4, 3}
	for i, dim := range grid.Shape {
		if dim != expected[i] {
			t.Fatalf("Shape mismatch at %d: expected %d, got %d", i, expected[i], dim)
		}
	}

	// Argument order is left-to-right along the width axis.
	if got := grid.At(0, 0, 0, 0); got != 0.2 {
		t.Errorf("Expected first group on the left, got %f", got)
	}
	if got := grid.At(0, 0, 3, 0); got != 0.8 {
		t.Errorf("Expected second group on the right, got %f", got)
	}
}

func TestGridWithKeypoints(t *testing.T) {
	v := New()
	v.DrawBorder = false
	v.KPSize = 1

	videos := testBatch(t, 1, 1, 8, 8, 3, 0.0)
	keypoints := [][][]Keypoint{
		{{{X: 4, Y: 4}}},
	}

	grid, err := v.Grid(WithKeypoints(videos, keypoints))
	if err != nil {
		t.Fatalf("Grid failed: %v", err)
	}

	if got := grid.At(0, 4, 4, 0); got != markerValue {
		t.Errorf("Expected keypoint marker in grid, got %f", got)
	}

	// Caller's batch must stay unmarked.
	if got := videos.At(0, 0, 4, 4, 0); got != 0 {
		t.Error("Grid mutated the caller's video batch")
	}

	// Keypoint batch size mismatch propagates.
	if _, err := v.Grid(WithKeypoints(testBatch(t, 2, 1, 8, 8, 3, 0), keypoints)); err == nil {
		t.Error("Expected error for keypoint batch size mismatch")
	}
}

func TestGridRequiresGroups(t *testing.T) {
	if _, err := New().Grid(); err == nil {
		t.Error("Expected error for empty group list")
	}
}
