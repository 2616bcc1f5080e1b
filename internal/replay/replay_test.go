package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/freeeve/bigbrainbot/internal/model"
	"github.com/freeeve/bigbrainbot/pkg/halite"
)

func TestWriteAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "replays")
	w, err := Create(dir, "m-42")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w.Path() != PathFor(dir, "m-42") {
		t.Errorf("Path = %q", w.Path())
	}

	hdr := &Header{
		MatchID:   "m-42",
		Name:      "duel",
		Width:     2,
		Height:    1,
		Policies:  []string{"harvest", "blockade"},
		Shipyards: []halite.Position{halite.Pos(0, 0), halite.Pos(1, 0)},
		Halite:    [][]int{{10, 20}},
		Constants: halite.DefaultConstants(),
	}
	if err := w.WriteHeader(hdr); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	for turn := 1; turn <= 3; turn++ {
		f := &Frame{
			Turn:      turn,
			MapHalite: 30 - turn,
			Seats: []SeatFrame{{
				Seat:     0,
				Banked:   100 * turn,
				Commands: "m 0 n",
				Ships:    []*halite.Ship{{ID: 0, Position: halite.Pos(0, turn), Halite: turn}},
			}},
			Changed: []CellDelta{{X: 0, Y: 0, Halite: 10 - turn}},
		}
		if err := w.WriteFrame(f); err != nil {
			t.Fatalf("WriteFrame %d: %v", turn, err)
		}
	}
	res := &Result{Turns: 3, Winner: 0, Seats: []model.SeatResult{{Seat: 0, Policy: "harvest", Banked: 300}}}
	if err := w.WriteResult(res); err != nil {
		t.Fatalf("WriteResult: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.WriteFrame(&Frame{}); err == nil {
		t.Error("write after close should fail")
	}

	rp, err := Load(w.Path())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rp.Header.MatchID != "m-42" || rp.Header.Halite[0][1] != 20 || rp.Header.Constants.MaxTurns != 500 {
		t.Errorf("header = %+v", rp.Header)
	}
	if len(rp.Frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(rp.Frames))
	}
	last := rp.Frames[2]
	if last.Turn != 3 || last.Seats[0].Banked != 300 || last.Seats[0].Ships[0].Position != halite.Pos(0, 3) {
		t.Errorf("last frame = %+v", last)
	}
	if rp.Result == nil || rp.Result.Turns != 3 || rp.Result.Seats[0].Banked != 300 {
		t.Errorf("result = %+v", rp.Result)
	}
}

func TestLoadWithoutResult(t *testing.T) {
	dir := t.TempDir()
	w, err := Create(dir, "partial")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.WriteHeader(&Header{MatchID: "partial"}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteFrame(&Frame{Turn: 1}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	rp, err := Load(w.Path())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rp.Result != nil || len(rp.Frames) != 1 {
		t.Errorf("replay = %+v, want one frame and no result", rp)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad"+Ext)
	if err := os.WriteFile(path, []byte("not zstd at all"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load should fail on a non-zstd file")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing"+Ext)); err == nil {
		t.Error("Load should fail on a missing file")
	}
}
