package reference

// Strategy combines per-candidate similarity scores when a resolved
// reference value is a list.
type Strategy interface {
	Combine(scores []float64) float64
	Name() string
}

// BestMatch takes the maximum similarity across candidates. This is the
// default list policy.
type BestMatch struct{}

func (BestMatch) Name() string { return "best_match" }

func (BestMatch) Combine(scores []float64) float64 {
	var best float64
	for _, s := range scores {
		if s > best {
			best = s
		}
	}
	return best
}

// Average takes the mean similarity across candidates. An alternate policy;
// not used by the default engine configuration.
type Average struct{}

func (Average) Name() string { return "average" }

func (Average) Combine(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
