package graph

import (
	"fmt"
	"math"

	"github.com/katalvlaran/sparseblossom/core"
)

// MatchingGraph is the permanent weighted adjacency structure the
// flooder runs over: one DetectorNode per detector, each with a fixed
// list of neighbors (or the boundary sentinel), weighted and tagged with
// the observables crossed.
//
// Negative input weights are normalized to positive by AddEdge and
// AddBoundaryEdge; MatchingGraph also tracks which detection events and
// observables were touched by a negative-weight edge, so the driver can
// XOR the correction back in after a decode.
type MatchingGraph struct {
	Nodes              []DetectorNode
	NumObservables     int
	NegWeightDetEvents map[int]struct{}
	NegWeightObs       map[int]struct{}
	NegWeightObsMask   core.ObsMask
	NegWeightSum       core.TotalWeight
	IsUserBoundaryNode []bool
	NormalisingConst   float64
}

// NewMatchingGraph allocates numNodes empty DetectorNodes.
func NewMatchingGraph(numNodes, numObservables int) *MatchingGraph {
	nodes := make([]DetectorNode, numNodes)
	for i := range nodes {
		nodes[i] = NewDetectorNode()
	}
	return &MatchingGraph{
		Nodes:              nodes,
		NumObservables:     numObservables,
		NegWeightDetEvents: make(map[int]struct{}),
		NegWeightObs:       make(map[int]struct{}),
		NormalisingConst:   1.0,
	}
}

func toggle(set map[int]struct{}, key int) {
	if _, ok := set[key]; ok {
		delete(set, key)
	} else {
		set[key] = struct{}{}
	}
}

func obsMaskOf(observables []int, numObservables int) core.ObsMask {
	var mask core.ObsMask
	if numObservables <= 64 {
		for _, obs := range observables {
			mask ^= 1 << uint(obs)
		}
	}
	return mask
}

func absWeight(w core.SignedWeight) core.Weight {
	if w < 0 {
		return core.Weight(-w)
	}
	return core.Weight(w)
}

// AddEdge adds a weighted edge between detector nodes u and v, tagged
// with the given observable indices. Self-loops (u == v) are skipped, as
// they carry no matching information. weight may be negative; negative
// edges are flipped positive and the touched detection events and
// observables are recorded for the driver's post-decode correction.
func (g *MatchingGraph) AddEdge(u, v int, weight core.SignedWeight, observables []int) error {
	if u < 0 || u >= len(g.Nodes) || v < 0 || v >= len(g.Nodes) {
		return fmt.Errorf("%w: edge (%d,%d)", core.ErrNodeOutOfRange, u, v)
	}
	if weight < 0 {
		for _, obs := range observables {
			toggle(g.NegWeightObs, obs)
		}
		toggle(g.NegWeightDetEvents, u)
		toggle(g.NegWeightDetEvents, v)
		g.NegWeightSum += core.TotalWeight(weight)
	}
	if u == v {
		return nil
	}

	w := absWeight(weight)
	mask := obsMaskOf(observables, g.NumObservables)

	g.Nodes[u].Neighbors = append(g.Nodes[u].Neighbors, core.NodeIdx(v))
	g.Nodes[u].NeighborWeights = append(g.Nodes[u].NeighborWeights, w)
	g.Nodes[u].NeighborObservables = append(g.Nodes[u].NeighborObservables, mask)

	g.Nodes[v].Neighbors = append(g.Nodes[v].Neighbors, core.NodeIdx(u))
	g.Nodes[v].NeighborWeights = append(g.Nodes[v].NeighborWeights, w)
	g.Nodes[v].NeighborObservables = append(g.Nodes[v].NeighborObservables, mask)
	return nil
}

// AddBoundaryEdge adds a weighted edge from detector node u to the
// boundary, tagged with the given observable indices.
func (g *MatchingGraph) AddBoundaryEdge(u int, weight core.SignedWeight, observables []int) error {
	if u < 0 || u >= len(g.Nodes) {
		return fmt.Errorf("%w: boundary edge at %d", core.ErrNodeOutOfRange, u)
	}
	if weight < 0 {
		for _, obs := range observables {
			toggle(g.NegWeightObs, obs)
		}
		toggle(g.NegWeightDetEvents, u)
		g.NegWeightSum += core.TotalWeight(weight)
	}

	w := absWeight(weight)
	mask := obsMaskOf(observables, g.NumObservables)

	g.Nodes[u].Neighbors = append(g.Nodes[u].Neighbors, core.BoundaryNode)
	g.Nodes[u].NeighborWeights = append(g.Nodes[u].NeighborWeights, w)
	g.Nodes[u].NeighborObservables = append(g.Nodes[u].NeighborObservables, mask)
	return nil
}

// NegWeightObsMaskOf computes the XOR of every observable touched by a
// negative-weight edge, for the driver to apply after extracting matches.
func (g *MatchingGraph) NegWeightObsMaskOf() core.ObsMask {
	var mask core.ObsMask
	for obs := range g.NegWeightObs {
		mask ^= 1 << uint(obs)
	}
	return mask
}

// ValidateObservable returns ErrObservableOutOfRange if idx cannot be
// represented in a 64-bit ObsMask.
func ValidateObservable(idx int) error {
	if idx < 0 || idx >= 64 {
		return fmt.Errorf("%w: %d", core.ErrObservableOutOfRange, idx)
	}
	return nil
}

// ValidateWeight returns ErrNaNWeight if w is not finite.
func ValidateWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return core.ErrNaNWeight
	}
	return nil
}
