// Package bvh is a bounding volume hierarchy over opaque elements, refined
// with the surface area heuristic.
package bvh

import (
	"math"
	"math/rand"

	"whitted/aabox"
)

type Element struct {
	// A handle back into some other storage array.
	Ref int

	// The bounds of this element.  Must be finite.
	Bounds aabox.AABox
}

type Node struct {
	Bounds aabox.AABox

	// Only leaves hold elements.
	Elements []Element

	LoChild *Node
	HiChild *Node
}

// candidateCuts is how many random split positions are tried per axis.
const candidateCuts = 5

type split struct {
	objective  float64
	lo, hi     []Element
	loBox      aabox.AABox
	hiBox      aabox.AABox
	successful bool
}

func boundsOf(elements []Element) aabox.AABox {
	b := aabox.AccumZeroAABox()
	for _, e := range elements {
		b = aabox.MinContainingAABox(b, e.Bounds)
	}
	return b
}

// trySplit partitions elements by centroid along axis.
func trySplit(elements []Element, axis int, cut float64) split {
	lo := []Element{}
	hi := []Element{}
	for _, e := range elements {
		if e.Bounds.Centroid()[axis] < cut {
			lo = append(lo, e)
		} else {
			hi = append(hi, e)
		}
	}

	if len(lo) == 0 || len(hi) == 0 {
		return split{}
	}

	loBox := boundsOf(lo)
	hiBox := boundsOf(hi)
	return split{
		objective:  float64(len(lo))*loBox.SurfaceArea() + float64(len(hi))*hiBox.SurfaceArea(),
		lo:         lo,
		hi:         hi,
		loBox:      loBox,
		hiBox:      hiBox,
		successful: true,
	}
}

func (cur *Node) refine(splitCost, terminationThreshold float64, rng *rand.Rand) {
	best := split{objective: math.Inf(1)}

	for axis := 0; axis < 3; axis++ {
		for i := 0; i < candidateCuts; i++ {
			cut := cur.Elements[rng.Intn(len(cur.Elements))].Bounds.Centroid()[axis]
			trial := trySplit(cur.Elements, axis, cut)
			if trial.successful && trial.objective < best.objective {
				best = trial
			}
		}
	}

	if !best.successful {
		// Every candidate put all elements on one side.
		return
	}

	// Splitting has to beat leaving the node alone by a margin.
	parentObjective := float64(len(cur.Elements)) * cur.Bounds.SurfaceArea()
	if best.objective+splitCost >= parentObjective-terminationThreshold {
		return
	}

	cur.LoChild = &Node{Bounds: best.loBox, Elements: best.lo}
	cur.HiChild = &Node{Bounds: best.hiBox, Elements: best.hi}

	// All of cur's elements have been divided among its children.
	cur.Elements = nil
}

type Tree struct {
	Root *Node
}

// New builds a single-leaf tree holding every element.  Call Refine to split
// it.
func New(elements []Element) *Tree {
	return &Tree{
		Root: &Node{
			Bounds:   boundsOf(elements),
			Elements: append([]Element(nil), elements...),
		},
	}
}

// Refine splits leaves until no split improves the surface area heuristic by
// more than threshold.  Candidate cuts come from a fixed-seed generator, so
// the same elements always produce the same tree.
func (t *Tree) Refine(splitCost, threshold float64) {
	rng := rand.New(rand.NewSource(12345))

	workStack := []*Node{t.Root}
	for len(workStack) != 0 {
		cur := workStack[len(workStack)-1]
		workStack = workStack[:len(workStack)-1]

		if len(cur.Elements) < 2 {
			continue
		}

		cur.refine(splitCost, threshold, rng)

		if cur.LoChild != nil {
			workStack = append(workStack, cur.LoChild)
		}
		if cur.HiChild != nil {
			workStack = append(workStack, cur.HiChild)
		}
	}
}

// Selector decides whether a node or element box is worth descending into.
type Selector func(b aabox.AABox) bool

// Visitor receives the Ref of every selected element.
type Visitor func(ref int)

// Query visits every element whose own box, and every enclosing node box, pass
// selector.  The selector may tighten between calls (for example as a closest
// hit is found); nodes still on the stack are re-tested when popped.
func (t *Tree) Query(selector Selector, visitor Visitor) {
	workStack := []*Node{t.Root}
	for len(workStack) != 0 {
		cur := workStack[len(workStack)-1]
		workStack = workStack[:len(workStack)-1]

		if !selector(cur.Bounds) {
			continue
		}

		for i := range cur.Elements {
			if selector(cur.Elements[i].Bounds) {
				visitor(cur.Elements[i].Ref)
			}
		}

		if cur.LoChild != nil {
			workStack = append(workStack, cur.LoChild)
		}
		if cur.HiChild != nil {
			workStack = append(workStack, cur.HiChild)
		}
	}
}

type Stats struct {
	Nodes       int
	Leaves      int
	Elements    int
	MaxDepth    int
	MaxLeafSize int
}

func (t *Tree) Stats() Stats {
	type frame struct {
		node  *Node
		depth int
	}

	s := Stats{}
	workStack := []frame{{t.Root, 1}}
	for len(workStack) != 0 {
		cur := workStack[len(workStack)-1]
		workStack = workStack[:len(workStack)-1]

		s.Nodes++
		if cur.depth > s.MaxDepth {
			s.MaxDepth = cur.depth
		}
		if cur.node.LoChild == nil && cur.node.HiChild == nil {
			s.Leaves++
		}
		s.Elements += len(cur.node.Elements)
		if len(cur.node.Elements) > s.MaxLeafSize {
			s.MaxLeafSize = len(cur.node.Elements)
		}

		if cur.node.LoChild != nil {
			workStack = append(workStack, frame{cur.node.LoChild, cur.depth + 1})
		}
		if cur.node.HiChild != nil {
			workStack = append(workStack, frame{cur.node.HiChild, cur.depth + 1})
		}
	}
	return s
}
