package presence

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
	"time"
)

func TestReconstruct_LastEventWins(t *testing.T) {
	lines := []string{
		joinLine("A"),
		joinLine("B"),
		"some unrelated engine output",
		leaveLine("A"),
		leaveLine("Ghost"),
		joinLine("C"),
		leaveLine("C"),
		joinLine("C"),
	}
	got := Reconstruct("Island", lines, time.Now())
	keys := make([]string, 0, len(got))
	for name := range got {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	if want := []string{"B", "C"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("Reconstruct() present = %v, want %v", keys, want)
	}
	if got["B"].UniqueID != "id-B" || got["B"].Server != "Island" || got["B"].Platform != "Steam" {
		t.Fatalf("Reconstruct() entry = %+v", got["B"])
	}
}

func TestReconstruct_RandomInterleavings(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	players := []string{"Alpha", "Bravo", "Charlie", "Delta"}

	for round := 0; round < 200; round++ {
		var lines []string
		last := map[string]bool{}
		n := rng.Intn(40)
		for i := 0; i < n; i++ {
			name := players[rng.Intn(len(players))]
			switch rng.Intn(3) {
			case 0:
				lines = append(lines, joinLine(name))
				last[name] = true
			case 1:
				lines = append(lines, leaveLine(name))
				last[name] = false
			default:
				lines = append(lines, "noise line "+name)
			}
		}

		got := Reconstruct("s", lines, time.Now())
		for _, name := range players {
			_, present := got[name]
			if present != last[name] {
				t.Fatalf("round %d: %s present = %v, want %v\nlines: %v", round, name, present, last[name], lines)
			}
		}
	}
}
