package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/five82/pitchside/internal/logging"
	"github.com/five82/pitchside/internal/provider"
	"github.com/five82/pitchside/internal/state"
)

const dumpCommentaryLines = 5

// detailFetcher is the one upstream call the dump needs.
type detailFetcher interface {
	FetchMatchDetails(ctx context.Context, matchID string) (state.MatchDetail, error)
}

// DumpMatchDetails fetches one match's details and prints a summary to w
// without starting the TUI.
func DumpMatchDetails(ctx context.Context, opts Options, matchID string, w io.Writer) error {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return errors.New("match id is required")
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	pcfg := cfg.ProviderConfig()
	pcfg.Logger = logging.NewNop()
	client, err := provider.NewClient(pcfg)
	if err != nil {
		return errors.Wrap(err, "init provider client")
	}
	return dumpMatchDetails(ctx, client, matchID, w)
}

func dumpMatchDetails(ctx context.Context, f detailFetcher, matchID string, w io.Writer) error {
	detail, err := f.FetchMatchDetails(ctx, matchID)
	if err != nil {
		return errors.Wrapf(err, "fetch match %s", matchID)
	}

	commentaryErr := detail.CommentaryError
	if commentaryErr == "" {
		commentaryErr = "-"
	}
	lineups := 0
	if detail.Lineups != nil {
		lineups = len(detail.Lineups.Sides)
	}
	fmt.Fprintf(w, "matchId=%s\n", matchID)
	fmt.Fprintf(w, "events=%d\n", len(detail.Events))
	fmt.Fprintf(w, "commentary=%d\n", len(detail.Commentary))
	fmt.Fprintf(w, "commentary_error=%s\n", commentaryErr)
	fmt.Fprintf(w, "stats=%d\n", len(detail.Stats))
	fmt.Fprintf(w, "lineups=%d\n", lineups)

	for i, e := range detail.Commentary {
		if i == dumpCommentaryLines {
			break
		}
		fmt.Fprintln(w, commentaryLine(e))
	}
	return nil
}

func commentaryLine(e state.CommentaryEntry) string {
	minute := "--"
	if e.Minute != nil {
		minute = fmt.Sprintf("%d'", *e.Minute)
		if e.MinutePlus != nil && *e.MinutePlus > 0 {
			minute = fmt.Sprintf("%d+%d'", *e.Minute, *e.MinutePlus)
		}
	}
	line := minute + " " + e.Text
	if e.Team != "" {
		line += " [" + e.Team + "]"
	}
	return line
}
