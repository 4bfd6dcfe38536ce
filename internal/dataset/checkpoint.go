package dataset

import (
	"fmt"
	"math"

	"github.com/elliotchance/orderedmap/v2"
)

// Checkpoint is the cleaning pipeline's self-reported counters, in the
// order the pipeline wrote them.
type Checkpoint struct {
	metrics *orderedmap.OrderedMap[string, float64]
}

// NewCheckpoint returns an empty checkpoint.
func NewCheckpoint() *Checkpoint {
	return &Checkpoint{metrics: orderedmap.NewOrderedMap[string, float64]()}
}

// CheckpointOf builds a checkpoint from alternating name, value pairs.
func CheckpointOf(pairs ...interface{}) *Checkpoint {
	c := NewCheckpoint()
	for i := 0; i+1 < len(pairs); i += 2 {
		name, _ := pairs[i].(string)
		if f, ok := FromAny(pairs[i+1]).Float(); ok {
			c.metrics.Set(name, f)
		}
	}
	return c
}

// CheckpointFromTable reads a two-column metric/value table. Rows with a
// missing metric name are skipped; a later duplicate metric overwrites the
// earlier value but keeps its position.
func CheckpointFromTable(t *Table, metricCol, valueCol string) (*Checkpoint, error) {
	names, err := t.col(metricCol)
	if err != nil {
		return nil, err
	}
	values, err := t.col(valueCol)
	if err != nil {
		return nil, err
	}

	c := NewCheckpoint()
	for r := range names {
		if names[r].IsMissing() {
			continue
		}
		f, ok := values[r].Float()
		if !ok {
			return nil, &MalformedInputError{
				Table:  t.name,
				Reason: fmt.Sprintf("metric %q has non-numeric value %q", names[r].String(), values[r].String()),
			}
		}
		c.metrics.Set(names[r].String(), f)
	}
	return c, nil
}

// Get returns a metric value.
func (c *Checkpoint) Get(name string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	return c.metrics.Get(name)
}

// Int returns a metric rounded to the nearest integer, so a counter
// reported as 10.7 compares as 11 rather than 10.
func (c *Checkpoint) Int(name string) (int, bool) {
	f, ok := c.Get(name)
	return int(math.Round(f)), ok
}

// Metrics returns the metric names in pipeline order.
func (c *Checkpoint) Metrics() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, c.metrics.Len())
	for el := c.metrics.Front(); el != nil; el = el.Next() {
		out = append(out, el.Key)
	}
	return out
}

// Len returns the number of metrics.
func (c *Checkpoint) Len() int {
	if c == nil {
		return 0
	}
	return c.metrics.Len()
}
