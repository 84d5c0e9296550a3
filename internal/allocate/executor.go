package allocate

import (
	"context"
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/icco/jukebox/internal/kind"
	"github.com/icco/jukebox/internal/mapping"
)

// Executor performs the slot clicks of a plan on the host.
type Executor interface {
	// PickUp takes the whole stack in an inventory slot.
	PickUp(source int) error
	// PlaceOne drops a single held item into a container slot.
	PlaceOne(dest int) error
	// PutBack returns whatever is still held to the inventory slot.
	PutBack(source int) error
}

// Apply replays a plan move by move.
func Apply(ctx context.Context, plan Plan, ex Executor) error {
	for _, m := range plan {
		if err := ctx.Err(); err != nil {
			return fault.Wrap(err, fmsg.With("applying plan"))
		}
		if err := ex.PickUp(m.Source); err != nil {
			return transferFailed(err, "picking up from %d", m.Source)
		}
		for _, d := range m.Destinations {
			if err := ex.PlaceOne(d); err != nil {
				return transferFailed(err, "placing into %d", d)
			}
		}
		if err := ex.PutBack(m.Source); err != nil {
			return transferFailed(err, "returning to %d", m.Source)
		}
	}
	return nil
}

func transferFailed(err error, format string, args ...any) error {
	return fault.Wrap(err, ftag.With(kind.IO), fmsg.With(fmt.Sprintf(format, args...)))
}

// Simulator is an in-memory host: a player inventory and one container.
type Simulator struct {
	Inventory []Stack
	Container []Stack
	hand      Stack
	held      bool
}

// NewSimulator returns a simulator with an empty container of the given size.
func NewSimulator(inventory []Stack, size int) *Simulator {
	s := &Simulator{
		Inventory: append([]Stack(nil), inventory...),
		Container: make([]Stack, size),
	}
	for i := range s.Container {
		s.Container[i].Slot = i
	}
	return s
}

// Stacks returns the non-empty inventory stacks.
func (s *Simulator) Stacks() []Stack {
	var out []Stack
	for _, st := range s.Inventory {
		if st.Count > 0 {
			out = append(out, st)
		}
	}
	return out
}

// Items returns the item in each container slot, empty string for empty slots.
func (s *Simulator) Items() []mapping.Item {
	out := make([]mapping.Item, len(s.Container))
	for i, c := range s.Container {
		if c.Count > 0 {
			out[i] = c.Item
		}
	}
	return out
}

func (s *Simulator) slot(source int) (int, error) {
	for i, st := range s.Inventory {
		if st.Slot == source {
			return i, nil
		}
	}
	return -1, fmt.Errorf("no inventory slot %d", source)
}

func (s *Simulator) PickUp(source int) error {
	if s.held {
		return fmt.Errorf("already holding %d %s", s.hand.Count, s.hand.Item)
	}
	i, err := s.slot(source)
	if err != nil {
		return err
	}
	if s.Inventory[i].Count == 0 {
		return fmt.Errorf("inventory slot %d is empty", source)
	}
	s.hand = s.Inventory[i]
	s.held = true
	s.Inventory[i].Count = 0
	return nil
}

func (s *Simulator) PlaceOne(dest int) error {
	if !s.held || s.hand.Count == 0 {
		return fmt.Errorf("nothing held for container slot %d", dest)
	}
	if dest < 0 || dest >= len(s.Container) {
		return fmt.Errorf("container slot %d out of range", dest)
	}
	c := &s.Container[dest]
	if c.Count > 0 && c.Item != s.hand.Item {
		return fmt.Errorf("container slot %d holds %s", dest, c.Item)
	}
	c.Item = s.hand.Item
	c.Count++
	s.hand.Count--
	return nil
}

func (s *Simulator) PutBack(source int) error {
	if !s.held {
		return nil
	}
	i, err := s.slot(source)
	if err != nil {
		return err
	}
	if s.Inventory[i].Count > 0 {
		return fmt.Errorf("inventory slot %d is occupied", source)
	}
	s.Inventory[i] = s.hand
	s.hand = Stack{}
	s.held = false
	return nil
}
