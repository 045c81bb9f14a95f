package dotprod

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparePair(t *testing.T) {
	p := ComparePair([]uint32{1, 2, 3, 4}, []uint32{1, 9, 3, 8})
	assert.False(t, p.OK())
	assert.Equal(t, []int{1, 3}, p.Mismatches)
	assert.Contains(t, p.String(), "2 mismatches, first at index 1 (2 != 9)")

	p = ComparePair([]uint32{1, 2}, []uint32{1, 2, 3})
	assert.False(t, p.OK())
	assert.Empty(t, p.Mismatches)
	assert.Contains(t, p.String(), "length 2 != 3")

	p = ComparePair([]uint32{5, 6}, []uint32{5, 6})
	assert.True(t, p.OK())
	assert.Contains(t, p.String(), "2 elements match")
}

func TestVerifyCPUAgainstEmulated(t *testing.T) {
	a, b := ExampleOperands()
	p, err := Verify(context.Background(), a, b, NewCPU(), NewEmulated())
	require.NoError(t, err)

	assert.True(t, p.OK(), p.String())
	assert.Equal(t, "cpu", p.Reference)
	assert.Equal(t, "emulated", p.Candidate)
	assert.Equal(t, ExampleResult(), p.Expected)
	assert.Equal(t, ExampleResult(), p.Actual)
}

// offByOne is an Executor that corrupts one element.
type offByOne struct{}

func (offByOne) Execute(_ context.Context, a, b []uint32) ([]uint32, error) {
	out := make([]uint32, len(a))
	for i := range a {
		out[i] = a[i] * b[i]
	}
	if len(out) > 2 {
		out[2]++
	}
	return out, nil
}

type failing struct{ err error }

func (f failing) Execute(context.Context, []uint32, []uint32) ([]uint32, error) {
	return nil, f.err
}

func TestVerifyDetectsMismatch(t *testing.T) {
	a, b := ExampleOperands()
	p, err := Verify(context.Background(), a, b, NewCPU(), offByOne{})
	require.NoError(t, err)

	assert.False(t, p.OK())
	assert.Equal(t, []int{2}, p.Mismatches)
	assert.Equal(t, "dotprod.offByOne", p.Candidate)
}

func TestVerifyPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	a, b := ExampleOperands()

	_, err := Verify(context.Background(), a, b, NewCPU(), failing{err: boom})
	assert.ErrorIs(t, err, boom)

	_, err = Verify(context.Background(), a, b[:3], NewCPU(), NewEmulated())
	assert.ErrorIs(t, err, ErrLengthMismatch)
}
