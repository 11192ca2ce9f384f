package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"moyen/internal/domain"
)

var ErrClassificationFailed = errors.New("classification failed")

// Classifier pairs the training vectorizer with the trained model. It is
// immutable after construction and safe for concurrent use.
type Classifier struct {
	vectorizer Vectorizer
	model      NaiveBayes
}

func New(v Vectorizer, m NaiveBayes) (*Classifier, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}
	if err := m.validate(len(v.Vocabulary)); err != nil {
		return nil, err
	}
	return &Classifier{vectorizer: v, model: m}, nil
}

// Load reads the exported vectorizer and model artifacts.
func Load(vectorizerPath, modelPath string) (*Classifier, error) {
	var v Vectorizer
	if err := readJSON(vectorizerPath, &v); err != nil {
		return nil, fmt.Errorf("load vectorizer: %w", err)
	}
	var m NaiveBayes
	if err := readJSON(modelPath, &m); err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return New(v, m)
}

func readJSON(path string, out any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (c *Classifier) Classes() []string {
	return append([]string{}, c.model.Classes...)
}

// Classify returns the most probable tag for text. Any failure is reported as
// ErrClassificationFailed.
func (c *Classifier) Classify(text string) (domain.Classification, error) {
	counts, tokens := c.vectorizer.Transform(text)
	if tokens == 0 {
		return domain.Classification{}, fmt.Errorf("%w: no tokens in %q", ErrClassificationFailed, text)
	}
	idx, p, err := c.model.Predict(counts)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	return domain.Classification{Tag: c.model.Classes[idx], Confidence: p}, nil
}
