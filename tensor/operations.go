package tensor

import (
	"fmt"
)

// ChannelsLast permutes a 5-D video tensor from model layout
// (batch, channel, time, height, width) to visualization layout
// (batch, time, height, width, channel). The result is a fresh copy.
func (t *Tensor) ChannelsLast() (*Tensor, error) {
	if len(t.Shape) != 5 {
		return nil, fmt.Errorf("ChannelsLast requires a 5-D tensor, got rank %d", len(t.Shape))
	}

	b, c, ft, h, w := t.Shape[0], t.Shape[1], t.Shape[2], t.Shape[3], t.Shape[4]
	out, err := Zeros([]int{b, ft, h, w, c})
	if err != nil {
		return nil, err
	}

	for bi := 0; bi < b; bi++ {
		for ci := 0; ci < c; ci++ {
			for ti := 0; ti < ft; ti++ {
				for yi := 0; yi < h; yi++ {
					srcBase := bi*t.Strides[0] + ci*t.Strides[1] + ti*t.Strides[2] + yi*t.Strides[3]
					dstBase := bi*out.Strides[0] + ti*out.Strides[1] + yi*out.Strides[2] + ci
					for xi := 0; xi < w; xi++ {
						out.Data[dstBase+xi*out.Strides[3]] = t.Data[srcBase+xi]
					}
				}
			}
		}
	}

	return out, nil
}

// ReverseBatch returns a copy of the tensor with the leading (batch)
// dimension reversed. Reversing a batch of size 1 is a no-op copy.
func (t *Tensor) ReverseBatch() (*Tensor, error) {
	if len(t.Shape) < 1 {
		return nil, fmt.Errorf("ReverseBatch requires at least one dimension")
	}

	out := t.Clone()
	b := t.Shape[0]
	stride := t.Strides[0]
	for i := 0; i < b; i++ {
		src := t.Data[i*stride : (i+1)*stride]
		dst := out.Data[(b-1-i)*stride : (b-i)*stride]
		copy(dst, src)
	}
	return out, nil
}

// Index returns a copy of the i-th sub-tensor along the leading dimension,
// dropping that dimension from the shape.
func (t *Tensor) Index(i int) (*Tensor, error) {
	if len(t.Shape) < 2 {
		return nil, fmt.Errorf("Index requires at least two dimensions, got rank %d", len(t.Shape))
	}
	if i < 0 || i >= t.Shape[0] {
		return nil, fmt.Errorf("index %d out of range for leading dimension of size %d", i, t.Shape[0])
	}

	stride := t.Strides[0]
	data := make([]float32, stride)
	copy(data, t.Data[i*stride:(i+1)*stride])
	return NewTensor(t.Shape[1:], data)
}

// Stack joins tensors of identical shape along a new leading dimension.
func Stack(tensors []*Tensor) (*Tensor, error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("Stack requires at least one tensor")
	}

	first := tensors[0]
	for n, t := range tensors[1:] {
		if err := sameShape(first, t); err != nil {
			return nil, fmt.Errorf("tensor %d: %v", n+1, err)
		}
	}

	outShape := append([]int{len(tensors)}, first.Shape...)
	out, err := Zeros(outShape)
	if err != nil {
		return nil, err
	}
	for i, t := range tensors {
		copy(out.Data[i*first.NumElems:(i+1)*first.NumElems], t.Data)
	}
	return out, nil
}

// Blend computes alpha*a + (1-alpha)*b element-wise. The tensors must have
// identical shapes.
func Blend(a, b *Tensor, alpha float32) (*Tensor, error) {
	if err := sameShape(a, b); err != nil {
		return nil, err
	}

	out := a.Clone()
	for i := range out.Data {
		out.Data[i] = alpha*a.Data[i] + (1-alpha)*b.Data[i]
	}
	return out, nil
}

// Concat concatenates tensors along the given axis. All tensors must share
// rank and agree on every dimension except the concatenation axis.
func Concat(tensors []*Tensor, axis int) (*Tensor, error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("Concat requires at least one tensor")
	}

	first := tensors[0]
	if axis < 0 || axis >= len(first.Shape) {
		return nil, fmt.Errorf("concat axis %d out of range for rank %d", axis, len(first.Shape))
	}

	axisTotal := 0
	for n, t := range tensors {
		if len(t.Shape) != len(first.Shape) {
			return nil, fmt.Errorf("concat rank mismatch: tensor %d has rank %d, expected %d", n, len(t.Shape), len(first.Shape))
		}
		for d, dim := range t.Shape {
			if d != axis && dim != first.Shape[d] {
				return nil, fmt.Errorf("concat shape mismatch: tensor %d dimension %d is %d, expected %d", n, d, dim, first.Shape[d])
			}
		}
		axisTotal += t.Shape[axis]
	}

	outShape := append([]int(nil), first.Shape...)
	outShape[axis] = axisTotal
	out, err := Zeros(outShape)
	if err != nil {
		return nil, err
	}

	outer := 1
	for d := 0; d < axis; d++ {
		outer *= first.Shape[d]
	}
	inner := 1
	for d := axis + 1; d < len(first.Shape); d++ {
		inner *= first.Shape[d]
	}

	for o := 0; o < outer; o++ {
		dst := o * outShape[axis] * inner
		for _, t := range tensors {
			block := t.Shape[axis] * inner
			copy(out.Data[dst:dst+block], t.Data[o*block:(o+1)*block])
			dst += block
		}
	}

	return out, nil
}

func sameShape(a, b *Tensor) error {
	if len(a.Shape) != len(b.Shape) {
		return fmt.Errorf("shape mismatch: rank %d vs %d", len(a.Shape), len(b.Shape))
	}
	for i, dim := range a.Shape {
		if dim != b.Shape[i] {
			return fmt.Errorf("shape mismatch at dimension %d: %d vs %d", i, dim, b.Shape[i])
		}
	}
	return nil
}
