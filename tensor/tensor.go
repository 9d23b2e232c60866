package tensor

import (
	"fmt"
)

// Tensor is a dense, CPU-resident float32 array with explicit shape and
// stride bookkeeping. Video batches use the layout (batch, channel, time,
// height, width) on the model side and (batch, time, height, width, channel)
// on the visualization side.
type Tensor struct {
	Shape    []int
	Strides  []int
	Data     []float32
	NumElems int
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v, elements=%d)", t.Shape, t.NumElems)
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.Shape)
}

// At returns the element at the given multi-dimensional index.
// It panics when the index rank or any coordinate is out of range,
// matching slice indexing behavior.
func (t *Tensor) At(indices ...int) float32 {
	return t.Data[t.offset(indices)]
}

// Set assigns the element at the given multi-dimensional index.
func (t *Tensor) Set(value float32, indices ...int) {
	t.Data[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.Shape) {
		panic(fmt.Sprintf("tensor: index rank %d does not match tensor rank %d", len(indices), len(t.Shape)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.Shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range for dimension %d (size %d)", idx, i, t.Shape[i]))
		}
		offset += idx * t.Strides[i]
	}
	return offset
}

func calculateStrides(shape []int) []int {
	if len(shape) == 0 {
		return []int{}
	}

	strides := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	return strides
}

func calculateNumElements(shape []int) int {
	if len(shape) == 0 {
		return 0
	}

	elements := 1
	for _, dim := range shape {
		elements *= dim
	}
	return elements
}

func validateShape(shape []int) error {
	if len(shape) == 0 {
		return fmt.Errorf("invalid shape: must have at least one dimension")
	}
	for i, dim := range shape {
		if dim <= 0 {
			return fmt.Errorf("invalid shape: dimension %d has size %d, must be positive", i, dim)
		}
	}
	return nil
}
