package detection

import (
	"context"
	"time"

	"github.com/yanqian/skinscan/pkg/util"
)

// classWeights follow model output order; benign classes are slightly favored.
var classWeights = []float64{0.1, 0.1, 0.1, 0.15, 0.2, 0.2, 0.15}

const (
	minConfidence = 0.7
	maxConfidence = 0.98
)

// RandomSource supplies the randomness behind simulated predictions.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// RandomClassifier simulates a model by sampling classes from fixed weights.
// It never inspects the image.
type RandomClassifier struct {
	rng     RandomSource
	latency time.Duration
}

// NewRandomClassifier builds a classifier. A nil rng uses a randomly seeded source.
func NewRandomClassifier(rng RandomSource, latency time.Duration) *RandomClassifier {
	if rng == nil {
		rng = util.NewLockedRand(0)
	}
	return &RandomClassifier{rng: rng, latency: latency}
}

// Classify returns a simulated prediction after the configured latency.
func (c *RandomClassifier) Classify(ctx context.Context, _ []byte) (Prediction, error) {
	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Prediction{}, ctx.Err()
		case <-timer.C:
		}
	}
	idx := c.pickClass()
	confidence := minConfidence + c.rng.Float64()*(maxConfidence-minConfidence)
	return Prediction{
		Class:        classes[idx].Code,
		Confidence:   confidence,
		Distribution: c.distribute(idx, confidence),
		Features:     c.features(),
	}, nil
}

func (c *RandomClassifier) pickClass() int {
	r := c.rng.Float64()
	var cumulative float64
	for i, w := range classWeights {
		cumulative += w
		if r < cumulative {
			return i
		}
	}
	return len(classWeights) - 1
}

// distribute spreads 1-confidence over the other classes so entries sum to 1.
func (c *RandomClassifier) distribute(predicted int, confidence float64) []ClassProbability {
	shares := make([]float64, len(classes))
	var total float64
	for i := range classes {
		if i == predicted {
			continue
		}
		shares[i] = 0.01 + c.rng.Float64()
		total += shares[i]
	}
	remaining := 1 - confidence
	out := make([]ClassProbability, len(classes))
	for i, info := range classes {
		p := confidence
		if i != predicted {
			p = remaining * shares[i] / total
		}
		out[i] = ClassProbability{Class: info.Code, Probability: p}
	}
	return out
}

func (c *RandomClassifier) features() Features {
	return Features{
		Area:        10000 + c.rng.Intn(40001),
		Perimeter:   between(c.rng, 300, 1200),
		Circularity: between(c.rng, 0.5, 0.95),
		Asymmetry:   between(c.rng, 0.1, 0.5),
	}
}

func between(rng RandomSource, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

var _ Classifier = (*RandomClassifier)(nil)
