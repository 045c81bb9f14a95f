package dotprod

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Parity records how two result vectors differ. Integer products are
// compared exactly; there is no tolerance.
type Parity struct {
	Reference string // backend that produced Expected
	Candidate string // backend that produced Actual

	Expected []uint32
	Actual   []uint32

	// Mismatches holds the indices, within the shorter vector, where the
	// two results differ.
	Mismatches []int
}

// ComparePair compares expected with actual element by element.
func ComparePair(expected, actual []uint32) *Parity {
	p := &Parity{Expected: expected, Actual: actual}
	n := min(len(expected), len(actual))
	for i := 0; i < n; i++ {
		if expected[i] != actual[i] {
			p.Mismatches = append(p.Mismatches, i)
		}
	}
	return p
}

// OK reports whether both results have the same length and values.
func (p *Parity) OK() bool {
	return len(p.Expected) == len(p.Actual) && len(p.Mismatches) == 0
}

// String summarises the comparison in one line.
func (p *Parity) String() string {
	switch {
	case len(p.Expected) != len(p.Actual):
		return fmt.Sprintf("%s vs %s: length %d != %d",
			p.Reference, p.Candidate, len(p.Expected), len(p.Actual))
	case len(p.Mismatches) > 0:
		i := p.Mismatches[0]
		return fmt.Sprintf("%s vs %s: %d mismatches, first at index %d (%d != %d)",
			p.Reference, p.Candidate, len(p.Mismatches), i, p.Expected[i], p.Actual[i])
	default:
		return fmt.Sprintf("%s vs %s: %d elements match", p.Reference, p.Candidate, len(p.Expected))
	}
}

// Verify runs reference and candidate on the same operands concurrently
// and compares their results. An error from either executor is returned
// as is.
func Verify(ctx context.Context, a, b []uint32, reference, candidate Executor) (*Parity, error) {
	var expected, actual []uint32

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expected, err = reference.Execute(ctx, a, b)
		return err
	})
	g.Go(func() error {
		var err error
		actual, err = candidate.Execute(ctx, a, b)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p := ComparePair(expected, actual)
	p.Reference = backendOf(reference)
	p.Candidate = backendOf(candidate)
	return p, nil
}
