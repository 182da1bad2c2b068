package feed

import (
	"math/rand/v2"

	"github.com/five82/pitchside/internal/state"
)

// Triple is a home/draw/away probability split.
type Triple struct {
	Home, Draw, Away float64
}

// WinProbParams holds the seed table and jitter bounds used for the live
// list's probability estimates. Probabilities are fractions of 1.
type WinProbParams struct {
	Level       Triple // score level
	HomeByOne   Triple
	AwayByOne   Triple
	HomeByTwo   Triple // home ahead by two or more
	AwayByTwo   Triple
	LiveConf    int
	SettledConf int
	JitterHome  float64
	JitterDraw  float64
	JitterAway  float64
	Floor       float64
}

// DefaultWinProbParams returns the production constants.
func DefaultWinProbParams() WinProbParams {
	return WinProbParams{
		Level:       Triple{0.42, 0.30, 0.28},
		HomeByOne:   Triple{0.58, 0.25, 0.17},
		AwayByOne:   Triple{0.22, 0.28, 0.50},
		HomeByTwo:   Triple{0.75, 0.15, 0.10},
		AwayByTwo:   Triple{0.10, 0.15, 0.75},
		LiveConf:    68,
		SettledConf: 84,
		JitterHome:  0.025,
		JitterDraw:  0.015,
		JitterAway:  0.025,
		Floor:       0.01,
	}
}

// Seed estimates a probability split from the score alone. A finished match
// with a winner is certain.
func (p WinProbParams) Seed(scoreHome, scoreAway int, live, finished bool) state.WinProb {
	diff := scoreHome - scoreAway
	var t Triple
	switch {
	case finished && diff > 0:
		t = Triple{1, 0, 0}
	case finished && diff < 0:
		t = Triple{0, 0, 1}
	case diff == 0:
		t = p.Level
	case diff == 1:
		t = p.HomeByOne
	case diff == -1:
		t = p.AwayByOne
	case diff >= 2:
		t = p.HomeByTwo
	default:
		t = p.AwayByTwo
	}
	conf := p.SettledConf
	if live {
		conf = p.LiveConf
	}
	return state.WinProb{Home: t.Home, Draw: t.Draw, Away: t.Away, Confidence: conf}
}

// Prematch is the estimate for a fixture that has not kicked off.
func (p WinProbParams) Prematch() state.WinProb {
	w := p.Seed(0, 0, false, false)
	w.Quality = state.QualityBasic
	return w
}

// Jitter perturbs w by a bounded uniform step per outcome, floors each
// outcome and renormalizes so the three sum to 1.
func (p WinProbParams) Jitter(w state.WinProb, rng *rand.Rand) state.WinProb {
	step := func(bound float64) float64 {
		if bound <= 0 {
			return 0
		}
		return (rng.Float64()*2 - 1) * bound
	}
	home := max(w.Home+step(p.JitterHome), p.Floor)
	draw := max(w.Draw+step(p.JitterDraw), p.Floor)
	away := max(w.Away+step(p.JitterAway), p.Floor)
	sum := home + draw + away

	out := w
	out.Home = home / sum
	out.Draw = draw / sum
	out.Away = away / sum
	return out
}
