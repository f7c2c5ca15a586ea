package engine

import "fmt"

// ResourceError reports a circuit wider than the engine will allocate for.
// It is returned before any amplitude storage exists.
type ResourceError struct {
	Requested int
	Limit     int
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("circuit needs %d qubits, limit is %d", e.Requested, e.Limit)
}

// NumericalError signals an internal invariant violation: the state norm
// drifted outside tolerance. It indicates a defect, not bad input.
type NumericalError struct {
	Gate int // gate position, -1 when raised outside gate application
	Norm float64
}

func (e *NumericalError) Error() string {
	if e.Gate < 0 {
		return fmt.Sprintf("state norm %.12f outside tolerance", e.Norm)
	}
	return fmt.Sprintf("state norm %.12f outside tolerance after gate %d", e.Norm, e.Gate)
}
