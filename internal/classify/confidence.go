package classify

import "context"

// KeywordCounter reports the strongest single learned keyword count for a filename
type KeywordCounter interface {
	MaxKeywordCount(ctx context.Context, filename string) int
}

// Availability reports whether the inference service can be used
type Availability interface {
	Available(ctx context.Context) bool
}

// Estimator scores how far a classification for a filename can be trusted
type Estimator struct {
	counter      KeywordCounter
	availability Availability
}

// NewEstimator creates an estimator; availability may be nil (treated as unreachable)
func NewEstimator(counter KeywordCounter, availability Availability) *Estimator {
	return &Estimator{counter: counter, availability: availability}
}

// Confidence returns a score in [0, 1]. It is advisory and never blocks a decision.
func (e *Estimator) Confidence(ctx context.Context, filename string) float64 {
	if score := confidenceForCount(e.counter.MaxKeywordCount(ctx, filename)); score > 0 {
		return score
	}
	// only probe the service when the learned patterns say nothing
	if e.availability != nil && e.availability.Available(ctx) {
		return 0.7
	}
	return 0.0
}

func confidenceForCount(maxCount int) float64 {
	switch {
	case maxCount >= 10:
		return 0.95
	case maxCount >= 5:
		return 0.85
	case maxCount >= 3:
		return 0.75
	default:
		return 0
	}
}
