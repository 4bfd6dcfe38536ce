package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointFromTable(t *testing.T) {
	tbl := MustTable("checkpoint_summary", []string{"metric", "value"},
		Values("raw_rows", 100),
		Values("dropped_exact_duplicates", 5),
		Values(nil, 1),
		Values("borrowers_n", "80"),
		Values("raw_rows", 101),
	)

	chk, err := CheckpointFromTable(tbl, "metric", "value")
	require.NoError(t, err)

	assert.Equal(t, []string{"raw_rows", "dropped_exact_duplicates", "borrowers_n"}, chk.Metrics())
	assert.Equal(t, 3, chk.Len())

	v, ok := chk.Int("raw_rows")
	assert.True(t, ok)
	assert.Equal(t, 101, v, "later duplicate overwrites in place")

	v, ok = chk.Int("borrowers_n")
	assert.True(t, ok)
	assert.Equal(t, 80, v)

	_, ok = chk.Get("nonborrowers_n")
	assert.False(t, ok)
}

func TestCheckpointIntRounds(t *testing.T) {
	chk := CheckpointOf("borrowers_n", 10.7, "raw_cols", 3.2, "raw_rows", 99.5)

	for name, want := range map[string]int{"borrowers_n": 11, "raw_cols": 3, "raw_rows": 100} {
		v, ok := chk.Int(name)
		require.True(t, ok, name)
		assert.Equal(t, want, v, name)
	}
}

func TestCheckpointFromTableErrors(t *testing.T) {
	tbl := MustTable("chk", []string{"metric", "value"}, Values("raw_rows", "many"))

	_, err := CheckpointFromTable(tbl, "metric", "value")
	assert.True(t, errors.Is(err, ErrMalformedInput))

	_, err = CheckpointFromTable(tbl, "name", "value")
	assert.True(t, errors.Is(err, ErrColumnNotFound))

	_, err = CheckpointFromTable(tbl, "metric", "val")
	assert.True(t, errors.Is(err, ErrColumnNotFound))
}

func TestCheckpointOf(t *testing.T) {
	chk := CheckpointOf("raw_rows", 10, "bad", "x", "borrowers_n", 4.0)
	assert.Equal(t, []string{"raw_rows", "borrowers_n"}, chk.Metrics())
}

func TestNilCheckpoint(t *testing.T) {
	var chk *Checkpoint
	_, ok := chk.Get("raw_rows")
	assert.False(t, ok)
	assert.Nil(t, chk.Metrics())
	assert.Equal(t, 0, chk.Len())
}
