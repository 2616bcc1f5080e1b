// Package nav finds collision-free routes across the toroidal Halite grid.
//
// The search is a deterministic A*: the open set is a binary heap keyed by
// f-score with the insertion sequence as secondary key, and neighbours are
// expanded in North, South, East, West order, so identical inputs always
// produce identical paths.
package nav

import (
	"container/heap"
	"fmt"

	"github.com/freeeve/bigbrainbot/pkg/halite"
)

// CostFunc returns the cost of stepping onto cell.
type CostFunc func(cell *halite.Cell) float64

// FrictionCost charges halite/10 per step. The wrapped Manhattan heuristic
// can overestimate this cost (empty cells are free), so paths found with it
// are neither guaranteed shortest nor cheapest. In particular they are not
// distance-optimal: with zero-halite cells costing 0, a longer route over
// empty cells can beat a shorter one through a rich cell.
func FrictionCost(cell *halite.Cell) float64 {
	return float64(cell.Halite) / 10
}

// StepFrictionCost charges one per step plus halite/10. The heuristic never
// overestimates it, so paths are optimal for this combined cost.
func StepFrictionCost(cell *halite.Cell) float64 {
	return 1 + float64(cell.Halite)/10
}

// CostByName maps a configuration name to a cost function.
func CostByName(name string) (CostFunc, error) {
	switch name {
	case "", "step_friction":
		return StepFrictionCost, nil
	case "friction":
		return FrictionCost, nil
	}
	return nil, fmt.Errorf("unknown path cost %q", name)
}

// Options tunes a search. The zero value uses StepFrictionCost and caps
// expansions at the map's cell count.
type Options struct {
	Cost          CostFunc
	MaxExpansions int
}

// Result is the outcome of FindPath.
type Result struct {
	// Steps runs from the source (exclusive) to the destination (inclusive).
	Steps []halite.Position
	// Found is true when the destination was reached. A search from a cell
	// to itself is Found with no steps.
	Found bool
	// Exhausted is true when the search stopped at MaxExpansions.
	Exhausted bool
	Expanded  int
	Cost      float64
}

// Next returns the first step of the path.
func (r Result) Next() (halite.Position, bool) {
	if len(r.Steps) == 0 {
		return halite.Position{}, false
	}
	return r.Steps[0], true
}

type node struct {
	idx int
	f   float64
	seq int
}

type openList []node

func (ol openList) Len() int      { return len(ol) }
func (ol openList) Swap(i, j int) { ol[i], ol[j] = ol[j], ol[i] }
func (ol *openList) Push(x any)   { *ol = append(*ol, x.(node)) }

func (ol openList) Less(i, j int) bool {
	if ol[i].f != ol[j].f {
		return ol[i].f < ol[j].f
	}
	return ol[i].seq < ol[j].seq
}

func (ol *openList) Pop() any {
	old := *ol
	n := old[len(old)-1]
	*ol = old[:len(old)-1]
	return n
}

// FindPath runs A* from src to dst over m. Cells marked occupied are never
// entered, including dst itself. The map is read but never written.
func FindPath(m *halite.GameMap, src, dst halite.Position, opts Options) Result {
	cost := opts.Cost
	if cost == nil {
		cost = StepFrictionCost
	}
	limit := opts.MaxExpansions
	if limit <= 0 {
		limit = m.CellCount()
	}

	src, dst = m.Normalize(src), m.Normalize(dst)
	if src == dst {
		return Result{Found: true}
	}

	n := m.CellCount()
	g := make([]float64, n)
	cameFrom := make([]int, n)
	closed := make([]bool, n)
	seen := make([]bool, n)
	for i := range cameFrom {
		cameFrom[i] = -1
	}

	srcIdx, dstIdx := m.Index(src), m.Index(dst)
	seq := 0
	ol := &openList{{idx: srcIdx, f: float64(m.Distance(src, dst)), seq: seq}}
	seen[srcIdx] = true

	var res Result
	for ol.Len() > 0 {
		cur := heap.Pop(ol).(node)
		if closed[cur.idx] {
			continue
		}
		if cur.idx == dstIdx {
			res.Found = true
			res.Cost = g[cur.idx]
			res.Steps = reconstruct(m, cameFrom, srcIdx, dstIdx)
			return res
		}
		if res.Expanded >= limit {
			res.Exhausted = true
			return res
		}
		closed[cur.idx] = true
		res.Expanded++

		curPos := positionOf(m, cur.idx)
		for _, nb := range m.Neighbors(curPos) {
			ni := m.Index(nb)
			if closed[ni] || m.IsOccupied(nb) {
				continue
			}
			tentative := g[cur.idx] + cost(m.At(nb))
			if seen[ni] && tentative >= g[ni] {
				continue
			}
			seen[ni] = true
			g[ni] = tentative
			cameFrom[ni] = cur.idx
			seq++
			heap.Push(ol, node{idx: ni, f: tentative + float64(m.Distance(nb, dst)), seq: seq})
		}
	}
	return res
}

func reconstruct(m *halite.GameMap, cameFrom []int, srcIdx, dstIdx int) []halite.Position {
	var rev []halite.Position
	for i := dstIdx; i != srcIdx && i >= 0; i = cameFrom[i] {
		rev = append(rev, positionOf(m, i))
	}
	steps := make([]halite.Position, len(rev))
	for i := range rev {
		steps[i] = rev[len(rev)-1-i]
	}
	return steps
}

func positionOf(m *halite.GameMap, idx int) halite.Position {
	return halite.Pos(idx%m.Width, idx/m.Width)
}
