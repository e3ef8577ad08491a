package job

import (
	"fmt"
	"strings"
)

// ValidationError reports a single rejected option value. Setter is the name
// of the setter that rejected it; the registry is left untouched.
type ValidationError struct {
	Setter  string // setter that rejected the value
	Message string // rule message
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Setter, e.Message)
}

// MutuallyExclusiveError reports two options that cannot be present on the
// same job at the same time.
type MutuallyExclusiveError struct {
	A string
	B string
}

func (e *MutuallyExclusiveError) Error() string {
	return fmt.Sprintf("options %q and %q are mutually exclusive", e.A, e.B)
}

// DependentOptionError reports an option whose companion option is missing
// or inconsistent with it.
type DependentOptionError struct {
	Option   string // option being set
	Requires string // companion option
	Message  string
}

func (e *DependentOptionError) Error() string {
	return fmt.Sprintf("option %q requires %q: %s", e.Option, e.Requires, e.Message)
}

// UnknownOptionError lists keyword arguments left unconsumed after a batch
// apply finishes.
type UnknownOptionError struct {
	Names []string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown options: %s", strings.Join(e.Names, ", "))
}

// InvalidDependencyKindError reports a dependency kind outside the accepted
// sbatch vocabulary.
type InvalidDependencyKindError struct {
	Kind string
}

func (e *InvalidDependencyKindError) Error() string {
	return fmt.Sprintf("invalid dependency kind %q", e.Kind)
}
