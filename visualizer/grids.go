package visualizer

import (
	"fmt"
	"image"

	"github.com/tsawler/go-motion/tensor"
)

// VisualizeReconstruction builds the qualitative reconstruction grid:
// ground-truth video, predicted video, appearance-deformed video, and a
// 50/50 blend of ground truth and deformed, stitched side-by-side. Inputs
// are model-layout tensors (batch, channel, time, height, width); the
// result is an 8-bit RGB frame sequence.
func (v *Visualizer) VisualizeReconstruction(input, prediction, deformed *tensor.Tensor) ([]*image.RGBA, error) {
	gt, err := input.ChannelsLast()
	if err != nil {
		return nil, fmt.Errorf("failed to transpose ground truth: %v", err)
	}
	pred, err := prediction.ChannelsLast()
	if err != nil {
		return nil, fmt.Errorf("failed to transpose prediction: %v", err)
	}
	def, err := deformed.ChannelsLast()
	if err != nil {
		return nil, fmt.Errorf("failed to transpose deformed video: %v", err)
	}

	diff, err := tensor.Blend(gt, def, 0.5)
	if err != nil {
		return nil, fmt.Errorf("failed to blend ground truth and deformed video: %v", err)
	}

	grid, err := v.Grid(Plain(gt), Plain(pred), Plain(def), Plain(diff))
	if err != nil {
		return nil, err
	}
	return FramesFromGrid(grid)
}

// VisualizeTransfer builds the motion-transfer grid: appearance source,
// motion source, and the predicted transfer output, stitched side-by-side.
// Inputs are model-layout tensors; the result is an 8-bit RGB frame
// sequence.
func (v *Visualizer) VisualizeTransfer(appearance, motion, prediction *tensor.Tensor) ([]*image.RGBA, error) {
	app, err := appearance.ChannelsLast()
	if err != nil {
		return nil, fmt.Errorf("failed to transpose appearance video: %v", err)
	}
	mot, err := motion.ChannelsLast()
	if err != nil {
		return nil, fmt.Errorf("failed to transpose motion video: %v", err)
	}
	pred, err := prediction.ChannelsLast()
	if err != nil {
		return nil, fmt.Errorf("failed to transpose prediction: %v", err)
	}

	grid, err := v.Grid(Plain(app), Plain(mot), Plain(pred))
	if err != nil {
		return nil, err
	}
	return FramesFromGrid(grid)
}
