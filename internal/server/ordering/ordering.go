// Package ordering assigns the real-valued sort keys (pos) of lists within a
// board and cards within a list.
//
// New items append at max+Step. Moves store the caller's pos verbatim; when
// the moved item lands within float resolution of a neighbour the whole
// scope is renumbered to Step, 2*Step, ... in (pos, id) order.
package ordering

import (
	"context"
	"math"
	"sort"

	"github.com/dmitrijs2005/taskboard/internal/common"
)

const (
	// Step is the gap between consecutive positions after an append or a
	// rebalance; it is also the first position in an empty scope.
	Step = 65536.0

	// relativeGap is the smallest neighbour distance, relative to magnitude,
	// that still counts as distinct.
	relativeGap = 1e-9
)

// Item is one sibling in a scope.
type Item struct {
	ID  string
	Pos float64
}

// Scope is a set of siblings stored somewhere. Implementations are bound to a
// single parent (a board for lists, a list for cards) and to one DBTX, so a
// Settle inside a transaction renumbers inside that transaction.
type Scope interface {
	// MaxPos returns the largest pos in scope; ok is false for an empty scope.
	MaxPos(ctx context.Context) (max float64, ok bool, err error)
	// Items returns every sibling ordered by (pos, id).
	Items(ctx context.Context) ([]Item, error)
	SetPos(ctx context.Context, id string, pos float64) error
}

// Validate accepts strictly positive finite positions.
func Validate(pos float64) error {
	if math.IsNaN(pos) || math.IsInf(pos, 0) || pos <= 0 {
		return common.ErrInvalidPosition
	}
	return nil
}

// Next is the append position after max.
func Next(max float64, ok bool) float64 {
	if !ok {
		return Step
	}
	return max + Step
}

// Append returns a position after every sibling in s. If that position would
// not be distinct from the current maximum the scope is rebalanced first.
func Append(ctx context.Context, s Scope) (float64, error) {
	max, ok, err := s.MaxPos(ctx)
	if err != nil {
		return 0, err
	}

	next := Next(max, ok)
	if ok && (Validate(next) != nil || tooClose(max, next)) {
		n, err := rebalanceScope(ctx, s)
		if err != nil {
			return 0, err
		}
		next = Step * float64(n+1)
	}
	return next, nil
}

// Sort orders items by (pos, id).
func Sort(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Pos != items[j].Pos {
			return items[i].Pos < items[j].Pos
		}
		return items[i].ID < items[j].ID
	})
}

func tooClose(a, b float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= relativeGap*scale
}

// Crowded reports whether the item with id sits within float resolution of
// its predecessor or successor. items must be sorted.
func Crowded(items []Item, id string) bool {
	for i, it := range items {
		if it.ID != id {
			continue
		}
		if i > 0 && tooClose(items[i-1].Pos, it.Pos) {
			return true
		}
		if i+1 < len(items) && tooClose(it.Pos, items[i+1].Pos) {
			return true
		}
		return false
	}
	return false
}

// Rebalance returns items, in their current order, renumbered to
// Step*(i+1). items must be sorted.
func Rebalance(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{ID: it.ID, Pos: Step * float64(i+1)}
	}
	return out
}

// Settle checks the neighbours of movedID and rebalances s when they are
// crowded. It reports whether a rebalance happened.
func Settle(ctx context.Context, s Scope, movedID string) (bool, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return false, err
	}
	Sort(items)
	if !Crowded(items, movedID) {
		return false, nil
	}
	if err := apply(ctx, s, items); err != nil {
		return false, err
	}
	return true, nil
}

func rebalanceScope(ctx context.Context, s Scope) (int, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return 0, err
	}
	Sort(items)
	return len(items), apply(ctx, s, items)
}

func apply(ctx context.Context, s Scope, sorted []Item) error {
	for i, it := range Rebalance(sorted) {
		if sorted[i].Pos == it.Pos {
			continue
		}
		if err := s.SetPos(ctx, it.ID, it.Pos); err != nil {
			return err
		}
	}
	return nil
}
