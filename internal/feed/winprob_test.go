package feed

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestSeed_Table(t *testing.T) {
	p := DefaultWinProbParams()
	tests := []struct {
		name           string
		home, away     int
		live, finished bool
		want           Triple
		conf           int
	}{
		{"level live", 1, 1, true, false, Triple{0.42, 0.30, 0.28}, 68},
		{"home by one", 2, 1, true, false, Triple{0.58, 0.25, 0.17}, 68},
		{"away by one", 0, 1, false, false, Triple{0.22, 0.28, 0.50}, 84},
		{"home by three", 3, 0, true, false, Triple{0.75, 0.15, 0.10}, 68},
		{"away by two", 0, 2, true, false, Triple{0.10, 0.15, 0.75}, 68},
		{"finished home win", 1, 0, false, true, Triple{1, 0, 0}, 84},
		{"finished away win", 0, 4, false, true, Triple{0, 0, 1}, 84},
		{"finished draw", 2, 2, false, true, Triple{0.42, 0.30, 0.28}, 84},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Seed(tt.home, tt.away, tt.live, tt.finished)
			if got.Home != tt.want.Home || got.Draw != tt.want.Draw || got.Away != tt.want.Away {
				t.Fatalf("Seed = %v/%v/%v, want %v", got.Home, got.Draw, got.Away, tt.want)
			}
			if got.Confidence != tt.conf {
				t.Fatalf("Confidence = %d, want %d", got.Confidence, tt.conf)
			}
		})
	}
}

func TestJitter_StaysNormalizedAndBounded(t *testing.T) {
	p := DefaultWinProbParams()
	rng := rand.New(rand.NewPCG(1, 2))
	w := p.Seed(5, 0, false, true)

	for i := range 500 {
		prev := w
		w = p.Jitter(w, rng)
		if sum := w.Home + w.Draw + w.Away; math.Abs(sum-1) > 1e-9 {
			t.Fatalf("step %d: sum = %v, want 1", i, sum)
		}
		if w.Home <= 0 || w.Draw <= 0 || w.Away <= 0 {
			t.Fatalf("step %d: non-positive outcome %v/%v/%v", i, w.Home, w.Draw, w.Away)
		}
		if math.Abs(w.Home-prev.Home) > 0.15 {
			t.Fatalf("step %d: home moved %v", i, w.Home-prev.Home)
		}
	}
}

func TestJitter_ZeroBoundsIsIdentityOnNormalizedInput(t *testing.T) {
	p := DefaultWinProbParams()
	p.JitterHome, p.JitterDraw, p.JitterAway = 0, 0, 0
	w := p.Seed(0, 0, true, false)
	got := p.Jitter(w, rand.New(rand.NewPCG(3, 4)))
	if math.Abs(got.Home-w.Home) > 1e-12 || math.Abs(got.Away-w.Away) > 1e-12 {
		t.Fatalf("Jitter = %v, want %v", got, w)
	}
}
