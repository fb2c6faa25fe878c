package cfg

import "github.com/l3aro/go-bsl-flow/pkg/preproc"

// Options control graph construction.
type Options struct {
	// ProducePreprocessorConditions evaluates #If conditions and prunes arms
	// that no target platform compiles. When false, every arm is kept as an
	// ordinary branch.
	ProducePreprocessorConditions bool
	// ProduceLoopIterations adds LOOP_BACK edges from the loop body to its
	// header. When false, the body falls through to the loop exit.
	ProduceLoopIterations bool
	// DetermineAdjacentDeadCode links every jump to the code written after it
	// and marks that code unreachable.
	DetermineAdjacentDeadCode bool
	// Platforms is the set of targets the unit is compiled for. The zero set
	// means DefaultConstraints.
	Platforms preproc.Set
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		ProducePreprocessorConditions: true,
		ProduceLoopIterations:         true,
		DetermineAdjacentDeadCode:     false,
		Platforms:                     preproc.DefaultConstraints,
	}
}
