package allocate

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/icco/jukebox/internal/kind"
	"github.com/icco/jukebox/internal/mapping"
)

func fill(n int, it mapping.Item) []mapping.Item {
	out := make([]mapping.Item, n)
	for i := range out {
		out[i] = it
	}
	return out
}

func TestVerifyReportsEveryShortage(t *testing.T) {
	required := fill(27, "rest")
	required[3] = "a"
	required[20] = "a"
	required[8] = "b"

	stacks := []Stack{
		{Slot: 0, Item: "rest", Count: 10},
		{Slot: 4, Item: "rest", Count: 10},
		{Slot: 5, Item: "b", Count: 1},
		{Slot: 6, Item: "a", Count: 0},
		{Slot: 7, Item: "c", Count: 64},
	}

	err := Verify(required, stacks)
	if kind.Of(err) != kind.Availability {
		t.Fatalf("Expected availability error, got %v", err)
	}
	var short *ShortageError
	if !errors.As(err, &short) {
		t.Fatalf("Expected *ShortageError in chain, got %T", err)
	}

	want := []Shortage{{"rest", 4}, {"a", 2}}
	if len(short.Missing) != len(want) {
		t.Fatalf("Expected %v, got %v", want, short.Missing)
	}
	for i := range want {
		if short.Missing[i] != want[i] {
			t.Errorf("Expected shortage %d = %v, got %v", i, want[i], short.Missing[i])
		}
	}
	if !strings.Contains(short.Error(), "- rest: 4,\n- a: 2") {
		t.Errorf("Unexpected report:\n%s", short.Error())
	}
}

func TestVerifyExactSupply(t *testing.T) {
	required := fill(27, "rest")
	required[0] = "a"
	stacks := []Stack{
		{Slot: 1, Item: "rest", Count: 13},
		{Slot: 2, Item: "rest", Count: 13},
		{Slot: 3, Item: "a", Count: 1},
	}
	if err := Verify(required, stacks); err != nil {
		t.Errorf("Expected exact supply to verify, got %v", err)
	}
}

func TestPlanPrefersLargestStack(t *testing.T) {
	required := []mapping.Item{"a", "x", "x", "x", "x", "a", "x", "x", "x", "a"}
	stacks := []Stack{
		{Slot: 0, Item: "a", Count: 1},
		{Slot: 1, Item: "a", Count: 64},
		{Slot: 2, Item: "x", Count: 7},
		{Slot: 3, Item: "y", Count: 64},
	}

	plan, err := Allocate(required, stacks)
	if err != nil {
		t.Fatalf("Error allocating: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("Expected 2 moves, got %v", plan)
	}
	if plan[0].Source != 1 || !equalInts(plan[0].Destinations, []int{0, 5, 9}) {
		t.Errorf("Expected slot 1 -> [0 5 9], got %v", plan[0])
	}
	if plan[1].Source != 2 || !equalInts(plan[1].Destinations, []int{1, 2, 3, 4, 6, 7, 8}) {
		t.Errorf("Expected slot 2 -> [1 2 3 4 6 7 8], got %v", plan[1])
	}
}

func TestPlanSplitsAcrossEqualStacks(t *testing.T) {
	required := []mapping.Item{"a", "a", "a"}
	stacks := []Stack{
		{Slot: 3, Item: "a", Count: 2},
		{Slot: 7, Item: "a", Count: 2},
	}

	plan := PlanMoves(required, stacks)
	want := Plan{
		{Source: 7, Destinations: []int{0, 1}},
		{Source: 3, Destinations: []int{2}},
	}
	if len(plan) != len(want) {
		t.Fatalf("Expected %v, got %v", want, plan)
	}
	for i := range want {
		if plan[i].Source != want[i].Source || !equalInts(plan[i].Destinations, want[i].Destinations) {
			t.Errorf("Expected move %d = %v, got %v", i, want[i], plan[i])
		}
	}
}

func TestAllocatorSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	items := []mapping.Item{"rest", "a", "b", "c", "d"}

	succeeded := 0
	for round := 0; round < 300; round++ {
		required := make([]mapping.Item, 27)
		for i := range required {
			required[i] = items[rng.Intn(len(items))]
		}
		var stacks []Stack
		for slot := 0; slot < 36; slot++ {
			if rng.Intn(3) == 0 {
				stacks = append(stacks, Stack{Slot: slot, Item: items[rng.Intn(len(items))], Count: rng.Intn(12)})
			}
		}

		plan, err := Allocate(required, stacks)
		if err != nil {
			var short *ShortageError
			if !errors.As(err, &short) {
				t.Fatalf("round %d: Expected shortage, got %v", round, err)
			}
			for _, m := range short.Missing {
				if supply(stacks, m.Item)+m.Count != demand(required, m.Item) {
					t.Fatalf("round %d: Wrong deficit for %s: %d", round, m.Item, m.Count)
				}
			}
			continue
		}
		succeeded++

		for _, it := range items {
			if demand(required, it) > supply(stacks, it) {
				t.Fatalf("round %d: Success reported while %s is short", round, it)
			}
		}

		sim := NewSimulator(stacks, 27)
		if err := Apply(context.Background(), plan, sim); err != nil {
			t.Fatalf("round %d: Error applying plan: %v", round, err)
		}
		got := sim.Items()
		for i := range required {
			if got[i] != required[i] || sim.Container[i].Count != 1 {
				t.Fatalf("round %d: slot %d holds %d %q, expected one %q", round, i, sim.Container[i].Count, got[i], required[i])
			}
		}
		for _, it := range items {
			if supply(sim.Inventory, it)+demand(required, it) != supply(stacks, it) {
				t.Fatalf("round %d: Items of %s were lost or created", round, it)
			}
		}
	}
	if succeeded == 0 {
		t.Fatal("Expected some rounds to be satisfiable")
	}
}

func TestApplyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := NewSimulator([]Stack{{Slot: 0, Item: "a", Count: 1}}, 27)
	err := Apply(ctx, Plan{{Source: 0, Destinations: []int{0}}}, sim)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if sim.Container[0].Count != 0 {
		t.Error("Expected no moves after cancellation")
	}
}

func TestApplyReportsHostFailure(t *testing.T) {
	sim := NewSimulator([]Stack{{Slot: 0, Item: "a", Count: 1}}, 27)
	sim.Container[4] = Stack{Slot: 4, Item: "b", Count: 1}

	err := Apply(context.Background(), Plan{{Source: 0, Destinations: []int{4}}}, sim)
	if kind.Of(err) != kind.IO {
		t.Errorf("Expected io error, got %v", err)
	}
}

func supply(stacks []Stack, it mapping.Item) int {
	n := 0
	for _, s := range stacks {
		if s.Item == it {
			n += s.Count
		}
	}
	return n
}

func demand(required []mapping.Item, it mapping.Item) int {
	n := 0
	for _, r := range required {
		if r == it {
			n++
		}
	}
	return n
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
