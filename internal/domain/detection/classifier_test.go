package detection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/skinscan/pkg/util"
)

type scriptedRand struct {
	floats []float64
	next   int
}

func (r *scriptedRand) Float64() float64 {
	if r.next >= len(r.floats) {
		return 0.5
	}
	v := r.floats[r.next]
	r.next++
	return v
}

func (r *scriptedRand) Intn(n int) int { return n / 2 }

func TestRandomClassifier_WeightedPick(t *testing.T) {
	cases := []struct {
		draw float64
		want string
	}{
		{draw: 0.0, want: "akiec"},
		{draw: 0.15, want: "bcc"},
		{draw: 0.25, want: "bkl"},
		{draw: 0.35, want: "df"},
		{draw: 0.5, want: "mel"},
		{draw: 0.8, want: "nv"},
		{draw: 0.95, want: "vasc"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			classifier := NewRandomClassifier(&scriptedRand{floats: []float64{tc.draw}}, 0)
			prediction, err := classifier.Classify(context.Background(), []byte("img"))
			require.NoError(t, err)
			require.Equal(t, tc.want, prediction.Class)
		})
	}
}

func TestRandomClassifier_PredictionShape(t *testing.T) {
	classifier := NewRandomClassifier(util.NewLockedRand(7), 0)
	for i := 0; i < 200; i++ {
		prediction, err := classifier.Classify(context.Background(), nil)
		require.NoError(t, err)
		require.GreaterOrEqual(t, prediction.Confidence, minConfidence)
		require.Less(t, prediction.Confidence, maxConfidence)

		require.Len(t, prediction.Distribution, len(classes))
		var sum float64
		for _, entry := range prediction.Distribution {
			require.Greater(t, entry.Probability, 0.0)
			if entry.Class == prediction.Class {
				require.Equal(t, prediction.Confidence, entry.Probability)
			} else {
				require.Less(t, entry.Probability, prediction.Confidence)
			}
			sum += entry.Probability
		}
		require.InDelta(t, 1.0, sum, 1e-9)

		f := prediction.Features
		require.GreaterOrEqual(t, f.Area, 10000)
		require.LessOrEqual(t, f.Area, 50000)
		require.GreaterOrEqual(t, f.Perimeter, 300.0)
		require.Less(t, f.Perimeter, 1200.0)
		require.GreaterOrEqual(t, f.Circularity, 0.5)
		require.Less(t, f.Circularity, 0.95)
		require.GreaterOrEqual(t, f.Asymmetry, 0.1)
		require.Less(t, f.Asymmetry, 0.5)
	}
}

func TestRandomClassifier_SeededDeterminism(t *testing.T) {
	a := NewRandomClassifier(util.NewLockedRand(42), 0)
	b := NewRandomClassifier(util.NewLockedRand(42), 0)
	for i := 0; i < 10; i++ {
		pa, err := a.Classify(context.Background(), nil)
		require.NoError(t, err)
		pb, err := b.Classify(context.Background(), nil)
		require.NoError(t, err)
		require.Equal(t, pa, pb)
	}
}

func TestRandomClassifier_LatencyHonorsCancellation(t *testing.T) {
	classifier := NewRandomClassifier(util.NewLockedRand(1), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := classifier.Classify(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}
