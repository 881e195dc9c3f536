package engine

// speedScore converts elapsed seconds to a tiered score. The first tier
// whose bound covers the elapsed minutes wins. Beyond the last tier the
// time-remaining fallback applies; it is not continuous with the tier
// scale and can exceed the lowest tier when total time is large.
func (e *Engine) speedScore(takenSeconds, totalSeconds int) float64 {
	minutes := float64(takenSeconds) / 60.0

	for _, tier := range e.cfg.SpeedTiers {
		if minutes <= tier.MaxMinutes {
			return tier.Score
		}
	}

	if totalSeconds <= 0 {
		return 0
	}
	remaining := float64(totalSeconds-takenSeconds) / float64(totalSeconds)
	if remaining < 0 {
		remaining = 0
	}
	return remaining * 10.0
}
