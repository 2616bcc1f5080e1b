package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/bigbrainbot/internal/model"
	"github.com/freeeve/bigbrainbot/internal/replay"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	every := flag.Int("every", 50, "print every n-th turn (0 = only the result)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: replay [-every n] <file%s>\n", replay.Ext)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	rp, err := replay.Load(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load replay")
	}

	h := rp.Header
	fmt.Printf("%s  (%s, %dx%d)\n", h.Name, h.MapName, h.Width, h.Height)
	fmt.Printf("  match %s, seats: %s\n", h.MatchID, strings.Join(h.Policies, ", "))

	for _, f := range rp.Frames {
		if *every <= 0 || f.Turn%*every != 0 {
			continue
		}
		var parts []string
		for _, s := range f.Seats {
			parts = append(parts, fmt.Sprintf("seat %d: %s banked, %d ships", s.Seat, humanize.Comma(int64(s.Banked)), len(s.Ships)))
		}
		fmt.Printf("  turn %4d  map %s  %s\n", f.Turn, humanize.Comma(int64(f.MapHalite)), strings.Join(parts, "; "))
	}

	if rp.Result == nil {
		fmt.Printf("\nReplay ends after %d frames without a result\n", len(rp.Frames))
		return
	}
	fmt.Printf("\nResult after %d turns: ", rp.Result.Turns)
	if rp.Result.Winner == model.NoWinner {
		fmt.Println("tie")
	} else {
		fmt.Printf("seat %d wins\n", rp.Result.Winner)
	}
	for _, s := range rp.Result.Seats {
		fmt.Printf("  seat %d (%s): %s banked, %d ships, %d spawned, %d collisions (%d own)\n",
			s.Seat, s.Policy, humanize.Comma(int64(s.Banked)), s.Ships, s.Spawned, s.Collisions, s.SelfCollisions)
	}
}
