package state

// Command is one immutable request from the consumer to the worker. The set
// of implementations is closed.
type Command interface {
	isCommand()
}

// FetchMatchDetails asks for a full detail fetch including commentary.
type FetchMatchDetails struct {
	ID string
}

// FetchMatchDetailsBasic asks for stats, events and lineups only.
type FetchMatchDetailsBasic struct {
	ID string
}

// FetchUpcoming asks for the upcoming fixture window.
type FetchUpcoming struct{}

// FetchAnalysis asks for the team list of a league.
type FetchAnalysis struct {
	Mode LeagueMode
}

// FetchSquad asks for one team's squad.
type FetchSquad struct {
	Mode     LeagueMode
	TeamID   int
	TeamName string
}

// FetchPlayer asks for one player's detail.
type FetchPlayer struct {
	Mode       LeagueMode
	PlayerID   int
	PlayerName string
}

// PrefetchPlayers warms player details for rankings.
type PrefetchPlayers struct {
	Mode      LeagueMode
	PlayerIDs []int
}

// WarmRankCache fetches squads and players for every team in Teams. With
// MissingOnly set, ids already present in CachedSquads/CachedPlayers are
// skipped.
type WarmRankCache struct {
	Mode          LeagueMode
	MissingOnly   bool
	Teams         []TeamAnalysis
	CachedSquads  map[int][]SquadPlayer
	CachedPlayers []int
}

// ExportAnalysis writes the analysis and rankings of a league to Path.
type ExportAnalysis struct {
	Path     string
	Mode     LeagueMode
	Teams    []TeamAnalysis
	Rankings []RankingRow
}

func (FetchMatchDetails) isCommand()      {}
func (FetchMatchDetailsBasic) isCommand() {}
func (FetchUpcoming) isCommand()          {}
func (FetchAnalysis) isCommand()          {}
func (FetchSquad) isCommand()             {}
func (FetchPlayer) isCommand()            {}
func (PrefetchPlayers) isCommand()        {}
func (WarmRankCache) isCommand()          {}
func (ExportAnalysis) isCommand()         {}
