package training

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// LossEntry is one named scalar loss produced by a training iteration.
type LossEntry struct {
	Name  string
	Value float64
}

// lossBuffer accumulates the value-only projection of per-iteration loss
// lists between reports. Names are taken from the most recent append; only
// arrival order keys the buffered values.
type lossBuffer struct {
	names  []string
	values [][]float64
}

// append records one iteration's losses. After the first append, the loss
// list length must stay stable until the next reset.
func (b *lossBuffer) append(losses []LossEntry) error {
	if len(losses) == 0 {
		return fmt.Errorf("empty loss list")
	}
	if len(b.values) > 0 && len(losses) != len(b.names) {
		return fmt.Errorf("loss list length changed: got %d entries, buffer has %d", len(losses), len(b.names))
	}

	names := make([]string, len(losses))
	row := make([]float64, len(losses))
	for i, entry := range losses {
		names[i] = entry.Name
		row[i] = entry.Value
	}
	b.names = names
	b.values = append(b.values, row)
	return nil
}

func (b *lossBuffer) len() int {
	return len(b.values)
}

// means computes the per-name mean over the buffered window. An empty
// buffer yields NaN means, reported as-is rather than as an error.
func (b *lossBuffer) means() []float64 {
	out := make([]float64, len(b.names))
	if len(b.values) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	column := make([]float64, len(b.values))
	for i := range b.names {
		for j, row := range b.values {
			column[j] = row[i]
		}
		out[i] = stat.Mean(column, nil)
	}
	return out
}

// reset clears the buffered values. Names persist until the next append.
func (b *lossBuffer) reset() {
	b.values = b.values[:0]
}
