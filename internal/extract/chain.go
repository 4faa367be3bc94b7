package extract

import "go.uber.org/zap"

// strategy is one named parse attempt for a record field. A strategy reports
// failure by returning ok=false; it never errors, so the chain can always
// proceed to the next tier.
type strategy[T any] struct {
	name string
	run  func() (T, bool)
}

// runChain tries strategies in order and returns the first success. Tier
// order is the caller's contract: structured table parse first, then bounded
// regex patterns, then a raw-text capture.
func runChain[T any](field string, strategies ...strategy[T]) (T, bool) {
	for _, s := range strategies {
		if v, ok := s.run(); ok {
			zap.L().Debug("extract: strategy succeeded",
				zap.String("field", field),
				zap.String("strategy", s.name),
			)
			return v, true
		}
		zap.L().Debug("extract: strategy yielded nothing, trying next",
			zap.String("field", field),
			zap.String("strategy", s.name),
		)
	}
	var zero T
	return zero, false
}
