package ingestion

import (
	"fmt"
	"strings"
)

// FailurePolicy decides what an embedding failure does to a build.
type FailurePolicy int

const (
	// FailFast aborts the build on the first embedding failure.
	FailFast FailurePolicy = iota
	// SkipAndReport skips the failing record and keeps going.
	SkipAndReport
)

func (p FailurePolicy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case SkipAndReport:
		return "skip"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// ParseFailurePolicy accepts "fail-fast" or "skip" (case-insensitive).
func ParseFailurePolicy(name string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fail-fast", "failfast":
		return FailFast, nil
	case "skip", "skip-and-report":
		return SkipAndReport, nil
	default:
		return FailFast, fmt.Errorf("%w: %q", ErrUnknownFailurePolicy, name)
	}
}
