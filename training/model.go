package training

import (
	"fmt"

	"github.com/tsawler/go-motion/checkpoints"
	"github.com/tsawler/go-motion/tensor"
	"github.com/tsawler/go-motion/visualizer"
)

// Batch is one training batch: a 5-D video tensor in model layout
// (batch, channel, time, height, width), optionally with a keypoint array
// aligned per batch element and per frame.
type Batch struct {
	Video     *tensor.Tensor
	Keypoints [][][]visualizer.Keypoint
}

// TransferBatch pairs a motion source with an appearance source for
// transfer-mode evaluation. Second carries the batch-reversed videos.
type TransferBatch struct {
	First           *tensor.Tensor
	Second          *tensor.Tensor
	FirstKeypoints  [][][]visualizer.Keypoint
	SecondKeypoints [][][]visualizer.Keypoint
}

// Transfer derives the transfer-mode input from a batch by reversing the
// batch order of the videos (and keypoints, when present). Reversing a
// batch of size 1 yields the same pairing.
func (b *Batch) Transfer() (*TransferBatch, error) {
	if b.Video == nil {
		return nil, fmt.Errorf("batch has no video tensor")
	}

	second, err := b.Video.ReverseBatch()
	if err != nil {
		return nil, fmt.Errorf("failed to reverse batch: %v", err)
	}

	tb := &TransferBatch{
		First:  b.Video,
		Second: second,
	}

	if b.Keypoints != nil {
		tb.FirstKeypoints = b.Keypoints
		tb.SecondKeypoints = reverseKeypoints(b.Keypoints)
	}

	return tb, nil
}

func reverseKeypoints(keypoints [][][]visualizer.Keypoint) [][][]visualizer.Keypoint {
	out := make([][][]visualizer.Keypoint, len(keypoints))
	for i, frames := range keypoints {
		out[len(keypoints)-1-i] = frames
	}
	return out
}

// Output is the record a model forward pass returns. Deformed is only
// populated in reconstruction mode.
type Output struct {
	Prediction *tensor.Tensor
	Deformed   *tensor.Tensor
}

// Model is the collaborator under training. Forward passes made by the
// logger are inference-only and must not alter parameters; parameter
// state moves only through the state-dict methods.
type Model interface {
	// Forward runs reconstruction on a batch.
	Forward(batch *Batch) (*Output, error)

	// ForwardTransfer runs transfer-mode evaluation on a source pair.
	ForwardTransfer(batch *TransferBatch) (*Output, error)

	// StateDict exports the model parameters.
	StateDict() checkpoints.StateDict

	// LoadStateDict restores the model parameters in place.
	LoadStateDict(state checkpoints.StateDict) error
}

// Optimizer is the optimizer collaborator: only its serializable state is
// of interest here, the update rule stays external.
type Optimizer interface {
	StateDict() checkpoints.StateDict
	LoadStateDict(state checkpoints.StateDict) error
}
