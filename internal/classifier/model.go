package classifier

import (
	"fmt"
	"math"
)

// NaiveBayes is an exported multinomial naive Bayes model.
type NaiveBayes struct {
	Classes        []string    `json:"classes"`
	ClassLogPrior  []float64   `json:"class_log_prior"`
	FeatureLogProb [][]float64 `json:"feature_log_prob"`
}

func (m *NaiveBayes) validate(features int) error {
	if len(m.Classes) == 0 {
		return fmt.Errorf("model has no classes")
	}
	if len(m.ClassLogPrior) != len(m.Classes) {
		return fmt.Errorf("class_log_prior has %d entries for %d classes", len(m.ClassLogPrior), len(m.Classes))
	}
	if len(m.FeatureLogProb) != len(m.Classes) {
		return fmt.Errorf("feature_log_prob has %d rows for %d classes", len(m.FeatureLogProb), len(m.Classes))
	}
	for i, row := range m.FeatureLogProb {
		if len(row) != features {
			return fmt.Errorf("feature_log_prob row %d (%s) has %d columns, vocabulary has %d", i, m.Classes[i], len(row), features)
		}
	}
	return nil
}

// Predict returns the index of the most probable class and its posterior.
// Ties go to the lowest index.
func (m *NaiveBayes) Predict(counts map[int]float64) (int, float64, error) {
	jll := make([]float64, len(m.Classes))
	for c := range m.Classes {
		score := m.ClassLogPrior[c]
		row := m.FeatureLogProb[c]
		for col, n := range counts {
			if col < 0 || col >= len(row) {
				return 0, 0, fmt.Errorf("feature column %d out of range", col)
			}
			score += n * row[col]
		}
		jll[c] = score
	}

	best := 0
	for c := 1; c < len(jll); c++ {
		if jll[c] > jll[best] {
			best = c
		}
	}

	// log-sum-exp around the max keeps exp() in range
	var sum float64
	for _, s := range jll {
		sum += math.Exp(s - jll[best])
	}
	posterior := 1 / sum
	if math.IsNaN(posterior) || math.IsInf(posterior, 0) {
		return 0, 0, fmt.Errorf("posterior is not finite")
	}
	return best, posterior, nil
}
