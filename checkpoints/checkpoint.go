package checkpoints

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// CheckpointFormat defines the serialization format
type CheckpointFormat int

const (
	FormatJSON CheckpointFormat = iota
	FormatCBOR
	FormatBinary
)

func (cf CheckpointFormat) String() string {
	switch cf {
	case FormatJSON:
		return "JSON"
	case FormatCBOR:
		return "CBOR"
	case FormatBinary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// Extension returns the filename extension used for the format.
func (cf CheckpointFormat) Extension() string {
	switch cf {
	case FormatJSON:
		return ".json"
	case FormatCBOR:
		return ".cbor"
	case FormatBinary:
		return ".bin"
	default:
		return ""
	}
}

// FormatForPath infers the checkpoint format from a file path's extension.
func FormatForPath(path string) (CheckpointFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".cbor":
		return FormatCBOR, nil
	case ".bin":
		return FormatBinary, nil
	default:
		return 0, fmt.Errorf("unrecognized checkpoint extension on %q", path)
	}
}

// ParamTensor represents a named parameter tensor with its data
type ParamTensor struct {
	Name  string    `json:"name" cbor:"name"`
	Shape []int     `json:"shape" cbor:"shape"`
	Data  []float32 `json:"data" cbor:"data"`
}

// StateDict is an ordered collection of named parameter tensors, the
// export/import unit for models and optimizers.
type StateDict []ParamTensor

// Tensor returns the named parameter tensor, if present.
func (sd StateDict) Tensor(name string) (ParamTensor, bool) {
	for _, p := range sd {
		if p.Name == name {
			return p, true
		}
	}
	return ParamTensor{}, false
}

// Clone returns a deep copy of the state dict.
func (sd StateDict) Clone() StateDict {
	out := make(StateDict, len(sd))
	for i, p := range sd {
		out[i] = ParamTensor{
			Name:  p.Name,
			Shape: append([]int(nil), p.Shape...),
			Data:  append([]float32(nil), p.Data...),
		}
	}
	return out
}

// Restore copies parameter data from src into dst in place. Entries are
// matched positionally; names and shapes must agree pairwise.
func Restore(dst, src StateDict) error {
	if len(dst) != len(src) {
		return fmt.Errorf("parameter count mismatch: %d destination, %d source", len(dst), len(src))
	}

	for i := range dst {
		d, s := &dst[i], &src[i]
		if d.Name != s.Name {
			return fmt.Errorf("parameter name mismatch at index %d: %s vs %s", i, d.Name, s.Name)
		}
		if len(d.Shape) != len(s.Shape) {
			return fmt.Errorf("shape rank mismatch for parameter %s: %v vs %v", d.Name, d.Shape, s.Shape)
		}
		for j, dim := range d.Shape {
			if dim != s.Shape[j] {
				return fmt.Errorf("dimension mismatch for parameter %s at index %d: %d vs %d", d.Name, j, dim, s.Shape[j])
			}
		}
		if len(d.Data) != len(s.Data) {
			return fmt.Errorf("data length mismatch for parameter %s: %d vs %d", d.Name, len(d.Data), len(s.Data))
		}
		copy(d.Data, s.Data)
	}

	return nil
}

// Checkpoint is a point-in-time snapshot of model state, optional optimizer
// state, and the training iteration that produced them.
type Checkpoint struct {
	Model     StateDict          `json:"model" cbor:"model"`
	Optimizer StateDict          `json:"optimizer,omitempty" cbor:"optimizer,omitempty"`
	Iter      int                `json:"iter" cbor:"iter"`
	Metadata  CheckpointMetadata `json:"metadata" cbor:"metadata"`
}

// CheckpointMetadata contains checkpoint metadata
type CheckpointMetadata struct {
	Version   string    `json:"version" cbor:"version"`
	Framework string    `json:"framework" cbor:"framework"`
	CreatedAt time.Time `json:"created_at" cbor:"created_at"`
}

// CheckpointSaver handles saving checkpoints in various formats
type CheckpointSaver struct {
	format CheckpointFormat
}

// NewCheckpointSaver creates a new checkpoint saver for the specified format
func NewCheckpointSaver(format CheckpointFormat) *CheckpointSaver {
	return &CheckpointSaver{
		format: format,
	}
}

// Format returns the saver's serialization format.
func (cs *CheckpointSaver) Format() CheckpointFormat {
	return cs.format
}

// SaveCheckpoint saves a complete checkpoint
func (cs *CheckpointSaver) SaveCheckpoint(checkpoint *Checkpoint, path string) error {
	// Ensure metadata is set
	if checkpoint.Metadata.Framework == "" {
		checkpoint.Metadata.Framework = "go-motion"
		checkpoint.Metadata.Version = "1.0.0"
		checkpoint.Metadata.CreatedAt = time.Now()
	}

	switch cs.format {
	case FormatJSON:
		return cs.saveJSON(checkpoint, path)
	case FormatCBOR:
		return cs.saveCBOR(checkpoint, path)
	case FormatBinary:
		return cs.saveBinary(checkpoint, path)
	default:
		return fmt.Errorf("unsupported checkpoint format: %s", cs.format.String())
	}
}

// LoadCheckpoint loads a checkpoint
func (cs *CheckpointSaver) LoadCheckpoint(path string) (*Checkpoint, error) {
	switch cs.format {
	case FormatJSON:
		return cs.loadJSON(path)
	case FormatCBOR:
		return cs.loadCBOR(path)
	case FormatBinary:
		return cs.loadBinary(path)
	default:
		return nil, fmt.Errorf("unsupported checkpoint format: %s", cs.format.String())
	}
}
