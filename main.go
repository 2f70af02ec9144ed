package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"courtside/internal/back"
	"courtside/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// Version holds the build-time version string.
var Version = "unknown" // nolint:gochecknoglobals

func main() {
	flag.Parse()

	if err := run(flag.Arg(0)); err != nil {
		log.Fatalf("error: %s", err)
	}
}

func run(command string) error {
	switch command {
	case "version":
		fmt.Fprintf(os.Stdout, "Courtside %s\n", Version)
		return nil
	case "help":
		fmt.Fprint(os.Stdout, help())
		return nil
	case "dev:fixtures":
		b, err := newBack()
		if err != nil {
			return err
		}
		return b.LoadFixtures()
	case "rerank":
		b, err := newBack()
		if err != nil {
			return err
		}
		return b.Rerank()
	case "leaderboard":
		b, err := newBack()
		if err != nil {
			return err
		}
		return printLeaderboard(b)
	default:
		fmt.Fprint(os.Stderr, help())
		os.Exit(1)
		return nil
	}
}

func newBack() (*back.Back, error) {
	conf, err := config.NewFromUserConfigDir()
	if err != nil {
		return nil, err
	}

	return back.New("sqlite3", conf.SQLDSN, conf.RatingParameters())
}

func printLeaderboard(b *back.Back) error {
	stats, err := b.GetLeaderboard()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "#\tPLAYER\tSCORE\tW\tL\tWIN %\tTOURNAMENT WINS")
	for k, v := range stats {
		fmt.Fprintf(
			w, "%d\t%s\t%.2f\t%d\t%d\t%.1f\t%d\n",
			k+1, v.Player.Name, v.RankingScore,
			v.TotalWins, v.TotalLosses, v.WinPercentage, v.TournamentWins,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if pom, ok, err := b.GetPlayerOfMonth(time.Now()); err != nil {
		return err
	} else if ok {
		fmt.Fprintf(os.Stdout, "\nPlayer of the month: %s (score %d)\n", pom.Player.Name, pom.MonthlyScore)
	}

	return nil
}

func help() string {
	return fmt.Sprintf(`
Courtside tracks the matches, tournaments, and rankings of a club.

Usage: %[1]s COMMAND [ARGS…]

COMMANDS
    dev:fixtures create default data for quick testing during development
    help         display this help
    leaderboard  display the current standings and player of the month
    rerank       wipe and recompute every player rating from the full history
    version      display the current version
`,
		os.Args[0],
	)
}
