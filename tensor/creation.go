package tensor

import (
	"fmt"
)

// NewTensor creates a tensor with the given shape backed by data.
// The data slice is adopted, not copied; its length must match the shape.
func NewTensor(shape []int, data []float32) (*Tensor, error) {
	if err := validateShape(shape); err != nil {
		return nil, err
	}

	numElems := calculateNumElements(shape)
	if len(data) != numElems {
		return nil, fmt.Errorf("data length %d does not match tensor size %d", len(data), numElems)
	}

	return &Tensor{
		Shape:    append([]int(nil), shape...),
		Strides:  calculateStrides(shape),
		Data:     data,
		NumElems: numElems,
	}, nil
}

// Zeros creates a zero-filled tensor with the given shape.
func Zeros(shape []int) (*Tensor, error) {
	if err := validateShape(shape); err != nil {
		return nil, err
	}
	numElems := calculateNumElements(shape)
	return NewTensor(shape, make([]float32, numElems))
}

// Full creates a tensor with every element set to value.
func Full(shape []int, value float32) (*Tensor, error) {
	t, err := Zeros(shape)
	if err != nil {
		return nil, err
	}
	for i := range t.Data {
		t.Data[i] = value
	}
	return t, nil
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.Data))
	copy(data, t.Data)
	return &Tensor{
		Shape:    append([]int(nil), t.Shape...),
		Strides:  append([]int(nil), t.Strides...),
		Data:     data,
		NumElems: t.NumElems,
	}
}
