package classifier

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := Load("testdata/vectorizer.json", "testdata/model.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestClassify(t *testing.T) {
	c := testClassifier(t)
	tests := []struct {
		name     string
		text     string
		wantTag  string
		wantConf float64
	}{
		{name: "single token", text: "Weather", wantTag: "weather", wantConf: 0.8},
		{name: "repeated token", text: "weather weather please", wantTag: "weather", wantConf: 0.64 / 0.66},
		{name: "mixed", text: "what TIME is it", wantTag: "time", wantConf: 0.8},
		{name: "unknown tokens fall back to prior", text: "zebra crossing", wantTag: "greeting", wantConf: 1.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(tt.text)
			if err != nil {
				t.Fatalf("Classify(%q): %v", tt.text, err)
			}
			if got.Tag != tt.wantTag {
				t.Fatalf("tag=%s, want %s", got.Tag, tt.wantTag)
			}
			if math.Abs(got.Confidence-tt.wantConf) > 1e-6 {
				t.Fatalf("confidence=%.6f, want %.6f", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestClassifyFailsClosed(t *testing.T) {
	c := testClassifier(t)
	for _, text := range []string{"", "   ", "a ? !"} {
		if _, err := c.Classify(text); !errors.Is(err, ErrClassificationFailed) {
			t.Fatalf("Classify(%q) err=%v, want ErrClassificationFailed", text, err)
		}
	}
}

func TestLoadRejectsInconsistentArtifacts(t *testing.T) {
	if _, err := Load("testdata/vectorizer.json", "testdata/model_bad.json"); err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
	if _, err := Load("testdata/missing.json", "testdata/model.json"); err == nil {
		t.Fatalf("expected error for missing vectorizer")
	}
}

func TestNewRejectsSharedColumn(t *testing.T) {
	v := Vectorizer{Vocabulary: map[string]int{"a1": 0, "b2": 0}}
	m := NaiveBayes{Classes: []string{"x"}, ClassLogPrior: []float64{0}, FeatureLogProb: [][]float64{{0, 0}}}
	if _, err := New(v, m); err == nil {
		t.Fatalf("expected error for shared vocabulary column")
	}
}

func TestTokens(t *testing.T) {
	v := Vectorizer{Lowercase: true}
	got := v.Tokens("What's the Weather in São Paulo, a?")
	want := []string{"what", "the", "weather", "in", "são", "paulo"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestPredictTieGoesToLowestIndex(t *testing.T) {
	m := NaiveBayes{
		Classes:        []string{"a", "b"},
		ClassLogPrior:  []float64{math.Log(0.5), math.Log(0.5)},
		FeatureLogProb: [][]float64{{math.Log(0.5)}, {math.Log(0.5)}},
	}
	idx, p, err := m.Predict(map[int]float64{0: 1})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if idx != 0 || math.Abs(p-0.5) > 1e-9 {
		t.Fatalf("Predict = (%d, %.3f), want (0, 0.5)", idx, p)
	}
}
