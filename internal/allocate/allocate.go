// Package allocate checks that an inventory can fill a container and plans
// the moves that fill it.
package allocate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"

	"github.com/icco/jukebox/internal/kind"
	"github.com/icco/jukebox/internal/mapping"
)

// Stack is an inventory slot holding Count of Item.
type Stack struct {
	Slot  int          `yaml:"slot"`
	Item  mapping.Item `yaml:"item"`
	Count int          `yaml:"count"`
}

// Shortage is how many more of an item the inventory needs.
type Shortage struct {
	Item  mapping.Item
	Count int
}

// ShortageError lists every missing item.
type ShortageError struct {
	Missing []Shortage
}

func (e *ShortageError) Error() string {
	lines := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		lines[i] = fmt.Sprintf("- %s: %d", m.Item, m.Count)
	}
	return "Missing items:\n" + strings.Join(lines, ",\n")
}

// Move takes the stack in Source and drops one item into each destination.
type Move struct {
	Source       int
	Destinations []int
}

// Plan is the ordered list of moves for one container.
type Plan []Move

// Verify reports a ShortageError when the stacks cannot cover required.
func Verify(required []mapping.Item, stacks []Stack) error {
	var order []mapping.Item
	need := make(map[mapping.Item]int)
	for _, it := range required {
		if _, ok := need[it]; !ok {
			order = append(order, it)
		}
		need[it]++
	}

	for _, s := range stacks {
		if s.Count <= 0 {
			continue
		}
		if n, ok := need[s.Item]; ok {
			need[s.Item] = n - s.Count
		}
	}

	var missing []Shortage
	for _, it := range order {
		if n := need[it]; n > 0 {
			missing = append(missing, Shortage{Item: it, Count: n})
		}
	}
	if len(missing) > 0 {
		return fault.Wrap(&ShortageError{Missing: missing}, ftag.With(kind.Availability))
	}
	return nil
}

// PlanMoves assigns destinations to stacks, biggest stacks first so fewer
// pickups are needed. Stacks of equal size are visited from the last slot.
func PlanMoves(required []mapping.Item, stacks []Stack) Plan {
	wanted := make(map[mapping.Item]bool, len(required))
	for _, it := range required {
		wanted[it] = true
	}

	var candidates []Stack
	for _, s := range stacks {
		if s.Count > 0 && wanted[s.Item] {
			candidates = append(candidates, s)
		}
	}
	slices.SortStableFunc(candidates, func(a, b Stack) int {
		return a.Count - b.Count
	})

	filled := make([]bool, len(required))
	next := func(it mapping.Item) int {
		for i, r := range required {
			if !filled[i] && r == it {
				return i
			}
		}
		return -1
	}

	var plan Plan
	for i := len(candidates) - 1; i >= 0; i-- {
		s := candidates[i]
		var dests []int
		count := s.Count
		for idx := next(s.Item); idx != -1 && count > 0; idx = next(s.Item) {
			filled[idx] = true
			dests = append(dests, idx)
			count--
		}
		if len(dests) > 0 {
			plan = append(plan, Move{Source: s.Slot, Destinations: dests})
		}
	}
	return plan
}

// Allocate verifies availability and returns the plan.
func Allocate(required []mapping.Item, stacks []Stack) (Plan, error) {
	if err := Verify(required, stacks); err != nil {
		return nil, err
	}
	return PlanMoves(required, stacks), nil
}
