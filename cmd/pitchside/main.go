package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/five82/pitchside/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional, defaults to ~/.config/pitchside/config.toml)")
	pollSeconds := flag.Int("poll", 0, "live refresh interval in seconds (optional, minimum 5)")
	league := flag.String("league", "", "league to open with, e.g. premier-league or la-liga")
	exportDir := flag.String("export-dir", "", "directory for analysis exports (optional, defaults to the working directory)")
	dumpID := flag.String("dump-match-details", "", "print the details of one match and exit")
	flag.Parse()

	// Local env files are optional.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		PollEvery:  *pollSeconds,
		League:     *league,
		ExportDir:  *exportDir,
	}

	if *dumpID != "" {
		if err := app.DumpMatchDetails(ctx, opts, *dumpID, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "pitchside: %v\n", err)
			return 1
		}
		return 0
	}

	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "pitchside: %v\n", err)
		return 1
	}
	return 0
}
