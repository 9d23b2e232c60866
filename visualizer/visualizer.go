package visualizer

import (
	"fmt"
	"math"

	"github.com/tsawler/go-motion/tensor"
)

// markerValue is the intensity written for keypoint markers and frame
// borders, white after 8-bit encoding.
const markerValue float32 = 1.0

// Keypoint is a 2-D image coordinate: X indexes columns, Y indexes rows.
type Keypoint struct {
	X float32
	Y float32
}

// Group is one stitching unit of a grid: a video batch, optionally carrying
// an aligned keypoint array to overlay before stitching.
type Group struct {
	video     *tensor.Tensor
	keypoints [][][]Keypoint
}

// Plain wraps a video batch with no keypoint overlay. The tensor must be
// channel-last, shape (batch, time, height, width, channel).
func Plain(video *tensor.Tensor) Group {
	return Group{video: video}
}

// WithKeypoints wraps a video batch with a keypoint array indexed as
// [batch][frame][keypoint].
func WithKeypoints(video *tensor.Tensor, keypoints [][][]Keypoint) Group {
	return Group{video: video, keypoints: keypoints}
}

// Visualizer renders model inputs and outputs into stitched comparison
// grids. Zero-value fields fall back to the defaults from New.
type Visualizer struct {
	// KPSize is the radius of keypoint markers, in pixels.
	KPSize int
	// DrawBorder controls the 1-pixel separator drawn around every frame
	// before stitching.
	DrawBorder bool
}

// New creates a Visualizer with the default marker radius and borders on.
func New() *Visualizer {
	return &Visualizer{
		KPSize:     2,
		DrawBorder: true,
	}
}

// RenderKeypoints overlays filled marker disks on a single video, one
// keypoint list per frame. The video must be channel-last, shape
// (time, height, width, channel). Returns a new tensor; the input is left
// untouched. Marker pixels outside the frame are clipped.
func (v *Visualizer) RenderKeypoints(video *tensor.Tensor, keypoints [][]Keypoint) (*tensor.Tensor, error) {
	if video.Rank() != 4 {
		return nil, fmt.Errorf("RenderKeypoints requires a 4-D video, got rank %d", video.Rank())
	}
	if len(keypoints) != video.Shape[0] {
		return nil, fmt.Errorf("keypoint frame count %d does not match video frames %d", len(keypoints), video.Shape[0])
	}

	out := video.Clone()
	for t, frame := range keypoints {
		for _, kp := range frame {
			v.drawDisk(out, t, kp)
		}
	}
	return out, nil
}

// drawDisk rasterizes a filled disk of radius KPSize centered on the
// keypoint, clipped to the frame bounds: every integer pixel whose center
// lies within the radius is overwritten on all channels.
func (v *Visualizer) drawDisk(video *tensor.Tensor, t int, kp Keypoint) {
	h, w, c := video.Shape[1], video.Shape[2], video.Shape[3]
	r := float64(v.KPSize)
	cx, cy := float64(kp.X), float64(kp.Y)

	minY := int(math.Ceil(cy - r))
	maxY := int(math.Floor(cy + r))
	minX := int(math.Ceil(cx - r))
	maxX := int(math.Floor(cx + r))

	for py := minY; py <= maxY; py++ {
		if py < 0 || py >= h {
			continue
		}
		for px := minX; px <= maxX; px++ {
			if px < 0 || px >= w {
				continue
			}
			dx := float64(px) - cx
			dy := float64(py) - cy
			if dx*dx+dy*dy > r*r {
				continue
			}
			for ch := 0; ch < c; ch++ {
				video.Set(markerValue, t, py, px, ch)
			}
		}
	}
}

// Column stitches all batch elements of a video batch into one tall column
// by concatenating along the height axis: (batch, time, height, width,
// channel) becomes (time, batch*height, width, channel). With DrawBorder
// enabled, the outermost pixel rows and columns of every frame are
// overwritten with the marker color on a working copy first.
func (v *Visualizer) Column(videos *tensor.Tensor) (*tensor.Tensor, error) {
	if videos.Rank() != 5 {
		return nil, fmt.Errorf("Column requires a 5-D video batch, got rank %d", videos.Rank())
	}

	work := videos
	if v.DrawBorder {
		work = videos.Clone()
		drawBorders(work)
	}

	b := work.Shape[0]
	parts := make([]*tensor.Tensor, b)
	for i := 0; i < b; i++ {
		part, err := work.Index(i)
		if err != nil {
			return nil, err
		}
		parts[i] = part
	}

	column, err := tensor.Concat(parts, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to stitch column: %v", err)
	}
	return column, nil
}

// drawBorders overwrites the first and last pixel rows and columns of every
// frame in the batch.
func drawBorders(videos *tensor.Tensor) {
	b, t, h, w, c := videos.Shape[0], videos.Shape[1], videos.Shape[2], videos.Shape[3], videos.Shape[4]
	for bi := 0; bi < b; bi++ {
		for ti := 0; ti < t; ti++ {
			for xi := 0; xi < w; xi++ {
				for ch := 0; ch < c; ch++ {
					videos.Set(markerValue, bi, ti, 0, xi, ch)
					videos.Set(markerValue, bi, ti, h-1, xi, ch)
				}
			}
			for yi := 0; yi < h; yi++ {
				for ch := 0; ch < c; ch++ {
					videos.Set(markerValue, bi, ti, yi, 0, ch)
					videos.Set(markerValue, bi, ti, yi, w-1, ch)
				}
			}
		}
	}
}

// Grid renders every group into a column and concatenates the columns
// side-by-side along the width axis, in argument order. Keypoint-bearing
// groups have their markers drawn first.
func (v *Visualizer) Grid(groups ...Group) (*tensor.Tensor, error) {
	if len(groups) == 0 {
		return nil, fmt.Errorf("Grid requires at least one group")
	}

	columns := make([]*tensor.Tensor, len(groups))
	for i, group := range groups {
		videos := group.video
		if group.keypoints != nil {
			rendered, err := v.renderBatch(videos, group.keypoints)
			if err != nil {
				return nil, fmt.Errorf("failed to render keypoints for group %d: %v", i, err)
			}
			videos = rendered
		}

		column, err := v.Column(videos)
		if err != nil {
			return nil, fmt.Errorf("failed to stitch group %d: %v", i, err)
		}
		columns[i] = column
	}

	grid, err := tensor.Concat(columns, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble grid: %v", err)
	}
	return grid, nil
}

// renderBatch overlays keypoints on every element of a video batch.
func (v *Visualizer) renderBatch(videos *tensor.Tensor, keypoints [][][]Keypoint) (*tensor.Tensor, error) {
	if videos.Rank() != 5 {
		return nil, fmt.Errorf("keypoint rendering requires a 5-D video batch, got rank %d", videos.Rank())
	}
	if len(keypoints) != videos.Shape[0] {
		return nil, fmt.Errorf("keypoint batch size %d does not match video batch %d", len(keypoints), videos.Shape[0])
	}

	rendered := make([]*tensor.Tensor, videos.Shape[0])
	for bi := range rendered {
		video, err := videos.Index(bi)
		if err != nil {
			return nil, err
		}
		rendered[bi], err = v.RenderKeypoints(video, keypoints[bi])
		if err != nil {
			return nil, fmt.Errorf("batch element %d: %v", bi, err)
		}
	}

	out, err := tensor.Stack(rendered)
	if err != nil {
		return nil, fmt.Errorf("failed to restack rendered batch: %v", err)
	}
	return out, nil
}
