package hashing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute_Deterministic(t *testing.T) {
	components := []string{"mode=similar", "style=rock", "total_artists=42"}

	first := Compute(components)
	second := Compute(components)

	assert.Equal(t, first, second)
	assert.Len(t, first.FullHash, 64)
	assert.Equal(t, first.FullHash[:8], first.HashPrefix)
	assert.Equal(t, 3, first.Count)
}

func TestCompute_OrderIndependent(t *testing.T) {
	a := Compute([]string{"alpha", "beta", "gamma"})
	b := Compute([]string{"gamma", "alpha", "beta"})

	assert.Equal(t, a.FullHash, b.FullHash)
	assert.Equal(t, a.Seed, b.Seed)
}

func TestCompute_SeedNonNegative(t *testing.T) {
	inputs := [][]string{
		{},
		{""},
		{"x"},
		{"style=rock", "style=jazz"},
		{strings.Repeat("z", 100)},
	}
	for _, in := range inputs {
		res := Compute(in)
		assert.GreaterOrEqual(t, res.Seed, int32(0), "input %v", in)
	}
}

func TestCompute_DistinctInputsDiffer(t *testing.T) {
	a := Compute([]string{"style=rock"})
	b := Compute([]string{"style=jazz"})
	assert.NotEqual(t, a.FullHash, b.FullHash)
}

func TestCompute_ComponentCountGuard(t *testing.T) {
	many := make([]string, 5000)
	for i := range many {
		many[i] = strings.Repeat("a", i%7+1)
	}

	res := Compute(many)
	assert.Equal(t, maxComponents, res.Count)
}

func TestCompute_ComponentSizeGuard(t *testing.T) {
	huge := strings.Repeat("x", maxComponentBytes+1000)

	truncated := Compute([]string{huge})
	exact := Compute([]string{huge[:maxComponentBytes]})

	require.Equal(t, exact.FullHash, truncated.FullHash)
}

func TestCompute_EmptyInput(t *testing.T) {
	res := Compute(nil)
	assert.Equal(t, 0, res.Count)
	assert.Len(t, res.FullHash, 64)
}
