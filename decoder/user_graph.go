// Package decoder exposes the top-level Matching driver: accumulating a
// weighted detector graph from explicit edges or a parsed detector error
// model, and decoding syndromes into observable predictions by running
// the flooder/matcher pipeline underneath.
package decoder

import (
	"fmt"
	"math"

	"github.com/katalvlaran/sparseblossom/core"
	"github.com/katalvlaran/sparseblossom/flooder"
	"github.com/katalvlaran/sparseblossom/graph"
	"github.com/katalvlaran/sparseblossom/matcher"
	"github.com/katalvlaran/sparseblossom/search"
)

// UserEdge is a user-facing edge between two detector nodes, or a
// detector node and the boundary (Node2 == BoundaryNodeID).
type UserEdge struct {
	Node1             int
	Node2             int
	ObservableIndices []int
	Weight            float64
	ErrorProbability  float64
}

// BoundaryNodeID is the sentinel Node2 value marking a boundary edge.
const BoundaryNodeID = -1

// UserNode holds per-node metadata.
type UserNode struct {
	IsBoundary bool
}

// UserGraph accumulates edges from explicit calls or a parsed detector
// error model, and lazily builds the internal MatchingGraph / SearchGraph
// / Mwpm solver from them.
type UserGraph struct {
	Nodes          []UserNode
	Edges          []UserEdge
	BoundaryNodes  map[int]struct{}
	NumObservables int

	mwpm          *matcher.Mwpm
	searchFlooder *search.SearchFlooder
}

// NewUserGraph returns an empty UserGraph.
func NewUserGraph() *UserGraph {
	return &UserGraph{BoundaryNodes: make(map[int]struct{})}
}

func (g *UserGraph) ensureNode(id int) {
	for id >= len(g.Nodes) {
		g.Nodes = append(g.Nodes, UserNode{})
	}
}

func (g *UserGraph) updateNumObservables(observables []int) {
	for _, obs := range observables {
		if obs+1 > g.NumObservables {
			g.NumObservables = obs + 1
		}
	}
}

// AddEdge adds a weighted edge between detector nodes node1 and node2.
func (g *UserGraph) AddEdge(node1, node2 int, observables []int, weight, errorProbability float64) error {
	if err := graph.ValidateWeight(weight); err != nil {
		return err
	}
	for _, obs := range observables {
		if err := graph.ValidateObservable(obs); err != nil {
			return err
		}
	}
	max := node1
	if node2 > max {
		max = node2
	}
	g.ensureNode(max)
	g.updateNumObservables(observables)
	g.Edges = append(g.Edges, UserEdge{
		Node1:             node1,
		Node2:             node2,
		ObservableIndices: append([]int(nil), observables...),
		Weight:            weight,
		ErrorProbability:  errorProbability,
	})
	g.mwpm = nil
	g.searchFlooder = nil
	return nil
}

// AddBoundaryEdge adds a weighted edge from node to the boundary.
func (g *UserGraph) AddBoundaryEdge(node int, observables []int, weight, errorProbability float64) error {
	if err := graph.ValidateWeight(weight); err != nil {
		return err
	}
	for _, obs := range observables {
		if err := graph.ValidateObservable(obs); err != nil {
			return err
		}
	}
	g.ensureNode(node)
	g.updateNumObservables(observables)
	g.Edges = append(g.Edges, UserEdge{
		Node1:             node,
		Node2:             BoundaryNodeID,
		ObservableIndices: append([]int(nil), observables...),
		Weight:            weight,
		ErrorProbability:  errorProbability,
	})
	g.mwpm = nil
	g.searchFlooder = nil
	return nil
}

// SetBoundary replaces the set of boundary nodes.
func (g *UserGraph) SetBoundary(nodes map[int]struct{}) {
	for n := range g.BoundaryNodes {
		if n < len(g.Nodes) {
			g.Nodes[n].IsBoundary = false
		}
	}
	g.BoundaryNodes = nodes
	maxBoundary := -1
	for n := range nodes {
		if n > maxBoundary {
			maxBoundary = n
		}
	}
	if maxBoundary >= 0 {
		g.ensureNode(maxBoundary)
	}
	for n := range nodes {
		g.Nodes[n].IsBoundary = true
	}
	g.mwpm = nil
	g.searchFlooder = nil
}

// IsBoundaryNode reports whether nodeID represents a boundary node.
func (g *UserGraph) IsBoundaryNode(nodeID int) bool {
	return nodeID == BoundaryNodeID || (nodeID < len(g.Nodes) && g.Nodes[nodeID].IsBoundary)
}

func (g *UserGraph) maxAbsWeight() float64 {
	max := 0.0
	for _, e := range g.Edges {
		if w := math.Abs(e.Weight); w > max {
			max = w
		}
	}
	return max
}

// edgeWeightNormalisingConstant computes the discretization factor: 1.0
// if every edge weight is already integral, otherwise
// (numDistinctWeights-1)/maxAbsWeight.
func (g *UserGraph) edgeWeightNormalisingConstant(numDistinctWeights core.Weight) float64 {
	maxAbs := g.maxAbsWeight()
	allIntegral := true
	for _, e := range g.Edges {
		if math.Round(e.Weight) != e.Weight {
			allIntegral = false
			break
		}
	}
	if allIntegral {
		return 1.0
	}
	return float64(numDistinctWeights-1) / maxAbs
}

func obsMaskOf(observables []int) core.ObsMask {
	var mask core.ObsMask
	for _, obs := range observables {
		mask ^= 1 << uint(obs)
	}
	return mask
}

// ToMatchingGraph converts the user graph into a discretized
// MatchingGraph. An edge whose both endpoints are boundary nodes carries
// no detection information and is dropped, matching how a boundary-to-
// boundary edge has no meaningful physical interpretation in a decoding
// graph.
func (g *UserGraph) ToMatchingGraph(numDistinctWeights core.Weight) *graph.MatchingGraph {
	mg := graph.NewMatchingGraph(len(g.Nodes), g.NumObservables)
	norm := g.edgeWeightNormalisingConstant(numDistinctWeights)

	for _, e := range g.Edges {
		w := core.SignedWeight(math.Round(e.Weight*norm)) * 2
		n1Boundary := g.IsBoundaryNode(e.Node1)
		n2Boundary := g.IsBoundaryNode(e.Node2)

		switch {
		case n2Boundary && !n1Boundary:
			mg.AddBoundaryEdge(e.Node1, w, e.ObservableIndices)
		case n1Boundary && !n2Boundary:
			mg.AddBoundaryEdge(e.Node2, w, e.ObservableIndices)
		case !n1Boundary:
			mg.AddEdge(e.Node1, e.Node2, w, e.ObservableIndices)
		}
	}

	mg.NormalisingConst = norm * 2.0

	if len(g.BoundaryNodes) > 0 {
		mg.IsUserBoundaryNode = make([]bool, len(g.Nodes))
		for i := range g.BoundaryNodes {
			mg.IsUserBoundaryNode[i] = true
		}
	}

	return mg
}

// ToSearchGraph converts the user graph into a discretized SearchGraph,
// the region-free mirror used for shortest-path reconstruction.
func (g *UserGraph) ToSearchGraph(numDistinctWeights core.Weight) *search.SearchGraph {
	sg := search.NewSearchGraph(len(g.Nodes), g.NumObservables)
	norm := g.edgeWeightNormalisingConstant(numDistinctWeights)

	for _, e := range g.Edges {
		wSigned := core.SignedWeight(math.Round(e.Weight*norm)) * 2
		w := core.Weight(wSigned)
		if wSigned < 0 {
			w = core.Weight(-wSigned)
		}
		obs := obsMaskOf(e.ObservableIndices)
		n1Boundary := g.IsBoundaryNode(e.Node1)
		n2Boundary := g.IsBoundaryNode(e.Node2)

		switch {
		case n2Boundary && !n1Boundary:
			sg.AddBoundaryEdge(e.Node1, w, obs)
		case n1Boundary && !n2Boundary:
			sg.AddBoundaryEdge(e.Node2, w, obs)
		case !n1Boundary:
			sg.AddEdge(e.Node1, e.Node2, w, obs)
		}
	}

	return sg
}

// ToMwpm builds a fresh Mwpm solver from the current graph.
func (g *UserGraph) ToMwpm() *matcher.Mwpm {
	mg := g.ToMatchingGraph(core.NumDistinctWeights)
	f := flooder.NewGraphFlooder(mg)
	return matcher.NewMwpm(f)
}

// GetMwpm lazily builds (or returns the cached) Mwpm solver.
func (g *UserGraph) GetMwpm() *matcher.Mwpm {
	if g.mwpm == nil {
		g.mwpm = g.ToMwpm()
	}
	return g.mwpm
}

// GetSearchFlooder lazily builds (or returns the cached) SearchFlooder
// used to reconstruct the actual shortest path between matched nodes
// once the matcher decides which detection events pair up.
func (g *UserGraph) GetSearchFlooder() *search.SearchFlooder {
	if g.searchFlooder == nil {
		sg := g.ToSearchGraph(core.NumDistinctWeights)
		g.searchFlooder = search.NewSearchFlooder(sg)
	}
	return g.searchFlooder
}

// HandleDEMInstruction converts a detector-error-model error instruction
// (probability p, the detectors it fires, and the observables it flips)
// into a weighted edge: weight = ln((1-p)/p). An instruction touching
// more than two detectors (a hyperedge) is not representable in this
// graph model and is skipped.
func (g *UserGraph) HandleDEMInstruction(p float64, detectors []int, observables []int) error {
	weight := math.Log((1 - p) / p)
	switch len(detectors) {
	case 2:
		return g.AddEdge(detectors[0], detectors[1], observables, weight, p)
	case 1:
		return g.AddBoundaryEdge(detectors[0], observables, weight, p)
	default:
		return nil
	}
}

// NumEdges returns the number of edges added so far.
func (g *UserGraph) NumEdges() int { return len(g.Edges) }

// NumNodes returns the number of nodes (detector and boundary) seen so
// far.
func (g *UserGraph) NumNodes() int { return len(g.Nodes) }

// NumDetectors returns the number of non-boundary nodes.
func (g *UserGraph) NumDetectors() int { return len(g.Nodes) - len(g.BoundaryNodes) }

// String renders a short human-readable summary, useful for CLI output.
func (g *UserGraph) String() string {
	return fmt.Sprintf("UserGraph{nodes=%d, edges=%d, observables=%d}", len(g.Nodes), len(g.Edges), g.NumObservables)
}
