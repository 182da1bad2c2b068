package state

// PlaceholderMatchID is the reserved identity of the synthetic demo match.
// Network results for this id are never applied.
const PlaceholderMatchID = "placeholder-demo"

const (
	placeholderHome = "ALPHA"
	placeholderAway = "OMEGA"
)

var placeholderHistory = []float64{0.42, 0.48, 0.53, 0.49, 0.57, 0.61, 0.58, 0.56}

// PlaceholderMatch builds the demo summary for the given league.
func PlaceholderMatch(mode LeagueMode) Match {
	return Match{
		ID:         PlaceholderMatchID,
		LeagueName: mode.String(),
		Home:       placeholderHome,
		Away:       placeholderAway,
		ScoreHome:  2,
		ScoreAway:  1,
		Minute:     54,
		Live:       true,
		Win: WinProb{
			Home:       0.56,
			Draw:       0.22,
			Away:       0.22,
			Quality:    QualityEvent,
			Confidence: 74,
		},
	}
}

// PlaceholderDetail builds the pinned detail of the demo match.
func PlaceholderDetail() MatchDetail {
	return MatchDetail{
		HomeTeam: placeholderHome,
		AwayTeam: placeholderAway,
		Stats: []StatRow{
			{Name: "Possession", Home: "58%", Away: "42%"},
			{Name: "Shots", Home: "14", Away: "9"},
			{Name: "Shots on target", Home: "6", Away: "3"},
			{Name: "xG", Home: "1.72", Away: "0.86"},
			{Name: "Passes", Home: "412", Away: "298"},
			{Name: "Corners", Home: "5", Away: "2"},
		},
		Events: []Event{
			{Minute: 6, Kind: EventGoal, Team: placeholderHome, Description: "Goal"},
			{Minute: 27, Kind: EventCard, Team: placeholderAway, Description: "Yellow card"},
			{Minute: 41, Kind: EventGoal, Team: placeholderHome, Description: "Goal"},
			{Minute: 52, Kind: EventSub, Team: placeholderAway, Description: "Substitution"},
		},
		Lineups: &Lineups{Sides: []LineupSide{
			{
				Team: placeholderHome, TeamAbbr: "ALP", Formation: "4-3-3",
				Starting: []PlayerSlot{
					demoPlayer("A. Stone", 1, "GK", true),
					demoPlayer("R. Vega", 3, "DF", true),
					demoPlayer("M. Holt", 4, "DF", true),
					demoPlayer("J. Nox", 6, "MF", true),
					demoPlayer("T. Vale", 8, "MF", true),
					demoPlayer("K. Rook", 9, "FW", true),
				},
				Subs: []PlayerSlot{
					demoPlayer("P. Vale", 12, "DF", false),
					demoPlayer("S. Quinn", 18, "FW", false),
				},
			},
			{
				Team: placeholderAway, TeamAbbr: "OME", Formation: "4-2-3-1",
				Starting: []PlayerSlot{
					demoPlayer("L. Park", 1, "GK", true),
					demoPlayer("D. Moss", 2, "DF", true),
					demoPlayer("I. Noor", 5, "DF", true),
					demoPlayer("C. Hale", 7, "MF", true),
					demoPlayer("V. Ash", 10, "MF", true),
					demoPlayer("E. Pike", 11, "FW", true),
				},
				Subs: []PlayerSlot{
					demoPlayer("N. Gray", 14, "MF", false),
					demoPlayer("O. Reed", 19, "FW", false),
				},
			},
		}},
	}
}

func demoPlayer(name string, number int, pos string, starter bool) PlayerSlot {
	return PlayerSlot{Name: name, Number: number, Position: pos, Starter: starter}
}
