package search

import (
	"github.com/katalvlaran/sparseblossom/core"
)

// SearchEventKind tags which variant of SearchEvent is populated.
type SearchEventKind uint8

const (
	searchEventNone SearchEventKind = iota
	searchEventLookAtNode
)

// SearchEvent is a radix-queue entry for the bidirectional Dijkstra
// search: "look at this node's neighbors again at this time".
type SearchEvent struct {
	Kind SearchEventKind
	Node core.SearchNodeIdx
	At   core.CyclicTime
}

// Time implements core.HasTime.
func (e SearchEvent) Time() core.CyclicTime { return e.At }

// IsNoEvent implements core.HasTime.
func (e SearchEvent) IsNoEvent() bool { return e.Kind == searchEventNone }

func lookAtSearchNode(node core.SearchNodeIdx, at core.CyclicTime) SearchEvent {
	return SearchEvent{Kind: searchEventLookAtNode, Node: node, At: at}
}

// SearchGraphEdge is the edge on which two search fronts collided, or the
// predecessor edge of a node on a traced-back path. HasNode is false for
// the "no collision found" sentinel.
type SearchGraphEdge struct {
	HasNode       bool
	Node          core.SearchNodeIdx
	NeighborIndex int
}

var noSearchGraphEdge = SearchGraphEdge{NeighborIndex: core.NoNeighbor}

type targetType uint8

const (
	targetNone targetType = iota
	targetDetectorNode
	targetBoundary
)

// SearchFlooder runs bidirectional Dijkstra over a SearchGraph to
// reconstruct the actual shortest path between two matched nodes (or a
// node and the boundary), once the matcher has decided they pair up.
type SearchFlooder struct {
	Graph *SearchGraph
	Queue *core.RadixQueue[SearchEvent]

	reachedNodes []core.SearchNodeIdx
	target       targetType
}

// NewSearchFlooder wraps g in a fresh SearchFlooder.
func NewSearchFlooder(g *SearchGraph) *SearchFlooder {
	return &SearchFlooder{Graph: g, Queue: core.NewRadixQueue[SearchEvent]()}
}

func (f *SearchFlooder) findNextEvent(nodeIdx core.SearchNodeIdx) (int, core.CumulativeTime) {
	node := &f.Graph.Nodes[nodeIdx]
	bestTime := core.CumulativeTime(1<<63 - 1)
	bestNeighbor := core.NoNeighbor

	start := 0
	if len(node.Neighbors) > 0 && node.Neighbors[0] == core.SearchNodeIdx(core.None) {
		if f.target == targetBoundary {
			weight := core.CumulativeTime(node.NeighborWeights[0])
			covered := core.CumulativeTime(f.Queue.CurTime) - node.DistanceFromSource
			collisionTime := core.CumulativeTime(f.Queue.CurTime) + weight - covered
			if collisionTime < bestTime {
				bestTime = collisionTime
				bestNeighbor = 0
			}
		}
		start = 1
	}

	for i := start; i < len(node.Neighbors); i++ {
		weight := core.CumulativeTime(node.NeighborWeights[i])
		nbIdx := node.Neighbors[i]
		nb := &f.Graph.Nodes[nbIdx]

		var collisionTime core.CumulativeTime
		if nb.ReachedFromSource == node.ReachedFromSource {
			continue
		} else if nb.ReachedFromSource == core.SearchNodeIdx(core.None) {
			covered := core.CumulativeTime(f.Queue.CurTime) - node.DistanceFromSource
			collisionTime = core.CumulativeTime(f.Queue.CurTime) + weight - covered
		} else {
			coveredThis := core.CumulativeTime(f.Queue.CurTime) - node.DistanceFromSource
			coveredNb := core.CumulativeTime(f.Queue.CurTime) - nb.DistanceFromSource
			collisionTime = core.CumulativeTime(f.Queue.CurTime) + (weight-coveredThis-coveredNb)/2
		}

		if collisionTime < bestTime {
			bestTime = collisionTime
			bestNeighbor = i
		}
	}

	return bestNeighbor, bestTime
}

func (f *SearchFlooder) rescheduleEvents(nodeIdx core.SearchNodeIdx) {
	bestNb, bestTime := f.findNextEvent(nodeIdx)
	tracker := &f.Graph.Nodes[nodeIdx].NodeEventTracker
	if bestNb == core.NoNeighbor {
		tracker.SetNoDesiredEvent()
	} else {
		event := lookAtSearchNode(nodeIdx, core.CyclicTime(bestTime))
		core.SetDesiredEvent(tracker, event, f.Queue)
	}
}

func (f *SearchFlooder) startAtEmptyNode(src core.SearchNodeIdx) {
	node := &f.Graph.Nodes[src]
	node.ReachedFromSource = src
	node.HasPredecessor = false
	node.IndexOfPredecessor = core.NoNeighbor
	node.DistanceFromSource = 0

	f.reachedNodes = append(f.reachedNodes, src)
	f.rescheduleEvents(src)
}

func (f *SearchFlooder) exploreEmptyNode(emptyIdx core.SearchNodeIdx, emptyToFromIndex int) {
	fromIdx := f.Graph.Nodes[emptyIdx].Neighbors[emptyToFromIndex]
	fromSource := f.Graph.Nodes[fromIdx].ReachedFromSource
	fromDist := f.Graph.Nodes[fromIdx].DistanceFromSource
	weight := core.CumulativeTime(f.Graph.Nodes[emptyIdx].NeighborWeights[emptyToFromIndex])

	empty := &f.Graph.Nodes[emptyIdx]
	empty.ReachedFromSource = fromSource
	empty.HasPredecessor = true
	empty.IndexOfPredecessor = emptyToFromIndex
	empty.DistanceFromSource = weight + fromDist

	f.reachedNodes = append(f.reachedNodes, emptyIdx)
	f.rescheduleEvents(emptyIdx)
}

func (f *SearchFlooder) doLookAtNodeEvent(nodeIdx core.SearchNodeIdx) SearchGraphEdge {
	nextNb, nextTime := f.findNextEvent(nodeIdx)

	if nextNb != core.NoNeighbor {
		if nextTime == core.CumulativeTime(f.Queue.CurTime) {
			dst := f.Graph.Nodes[nodeIdx].Neighbors[nextNb]
			if dst == core.SearchNodeIdx(core.None) {
				return SearchGraphEdge{HasNode: true, Node: nodeIdx, NeighborIndex: nextNb}
			}

			dstReached := f.Graph.Nodes[dst].ReachedFromSource
			if dstReached == core.SearchNodeIdx(core.None) {
				reverseIdx := f.Graph.Nodes[dst].IndexOfNeighbor(nodeIdx)
				f.exploreEmptyNode(dst, reverseIdx)

				tracker := &f.Graph.Nodes[nodeIdx].NodeEventTracker
				event := lookAtSearchNode(nodeIdx, core.CyclicTime(f.Queue.CurTime))
				core.SetDesiredEvent(tracker, event, f.Queue)
				return noSearchGraphEdge
			}
			return SearchGraphEdge{HasNode: true, Node: nodeIdx, NeighborIndex: nextNb}
		}

		tracker := &f.Graph.Nodes[nodeIdx].NodeEventTracker
		event := lookAtSearchNode(nodeIdx, core.CyclicTime(nextTime))
		core.SetDesiredEvent(tracker, event, f.Queue)
	}

	return noSearchGraphEdge
}

// RunUntilCollision runs bidirectional Dijkstra from src to dst (or to
// the boundary, if hasDst is false) and returns the collision edge.
func (f *SearchFlooder) RunUntilCollision(src core.SearchNodeIdx, dst core.SearchNodeIdx, hasDst bool) SearchGraphEdge {
	if hasDst {
		f.target = targetDetectorNode
		f.startAtEmptyNode(dst)
	} else {
		f.target = targetBoundary
	}
	f.startAtEmptyNode(src)

	for !f.Queue.IsEmpty() {
		ev := f.Queue.Dequeue()
		if ev.IsNoEvent() || ev.Kind != searchEventLookAtNode {
			continue
		}
		node := ev.Node
		tracker := &f.Graph.Nodes[node].NodeEventTracker
		shouldProcess := core.DequeueDecision(tracker, ev, f.Queue, func(t core.CyclicTime) SearchEvent {
			return lookAtSearchNode(node, t)
		})
		if shouldProcess {
			edge := f.doLookAtNodeEvent(node)
			if edge.HasNode {
				return edge
			}
		}
	}

	return noSearchGraphEdge
}

func (f *SearchFlooder) traceBackFromNode(start core.SearchNodeIdx) []SearchGraphEdge {
	var edges []SearchGraphEdge
	cur := start
	for {
		node := &f.Graph.Nodes[cur]
		if !node.HasPredecessor {
			break
		}
		predIdx := node.IndexOfPredecessor
		edges = append(edges, SearchGraphEdge{HasNode: true, Node: cur, NeighborIndex: predIdx})
		cur = f.Graph.Nodes[cur].Neighbors[predIdx]
	}
	return edges
}

// pathEdgeCallback receives each edge of a reconstructed shortest path in
// order: from (core.SearchNodeIdx(core.None) means boundary), to (same),
// and the observable mask crossed.
type pathEdgeCallback func(from, to core.SearchNodeIdx, obsMask core.ObsMask)

// IterEdgesOnShortestPath runs a search between src and dst (or the
// boundary, if hasDst is false) and invokes callback once per edge of
// the reconstructed shortest path, in order from src to dst.
func (f *SearchFlooder) IterEdgesOnShortestPath(src int, dst int, hasDst bool, callback pathEdgeCallback) {
	srcIdx := core.SearchNodeIdx(src)
	var dstIdx core.SearchNodeIdx
	if hasDst {
		dstIdx = core.SearchNodeIdx(dst)
	}

	collisionEdge := f.RunUntilCollision(srcIdx, dstIdx, hasDst)
	if !collisionEdge.HasNode {
		f.Reset()
		return
	}

	collisionNode := collisionEdge.Node
	path1 := f.traceBackFromNode(collisionNode)

	otherOpt := f.Graph.Nodes[collisionNode].Neighbors[collisionEdge.NeighborIndex]
	hasOther := otherOpt != core.SearchNodeIdx(core.None)

	path2 := []SearchGraphEdge{collisionEdge}
	if hasOther {
		path2 = append(path2, f.traceBackFromNode(otherOpt)...)
	}

	lastEdge := path2[len(path2)-1]
	lastOfPath2 := f.Graph.Nodes[lastEdge.Node].Neighbors[lastEdge.NeighborIndex]
	leadsToSrc := lastOfPath2 == srcIdx

	if leadsToSrc {
		f.emitReversed(path2, callback)
		f.emitForward(path1, callback)
	} else {
		f.emitReversed(path1, callback)
		f.emitForward(path2, callback)
	}

	f.Reset()
}

func (f *SearchFlooder) emitForward(edges []SearchGraphEdge, callback pathEdgeCallback) {
	for _, e := range edges {
		from := e.Node
		to := f.Graph.Nodes[e.Node].Neighbors[e.NeighborIndex]
		obs := f.Graph.Nodes[e.Node].NeighborObservables[e.NeighborIndex]
		callback(from, to, obs)
	}
}

func (f *SearchFlooder) emitReversed(edges []SearchGraphEdge, callback pathEdgeCallback) {
	for i := len(edges) - 1; i >= 0; i-- {
		e := edges[i]
		nb := f.Graph.Nodes[e.Node].Neighbors[e.NeighborIndex]
		from := nb
		to := e.Node

		var obs core.ObsMask
		if nb != core.SearchNodeIdx(core.None) {
			reverseIdx := f.Graph.Nodes[nb].IndexOfNeighbor(e.Node)
			obs = f.Graph.Nodes[nb].NeighborObservables[reverseIdx]
		} else {
			obs = f.Graph.Nodes[e.Node].NeighborObservables[e.NeighborIndex]
		}
		callback(from, to, obs)
	}
}

// FindShortestPath runs a search between src and dst (or the boundary,
// if hasDst is false) and returns a CompressedEdge summarizing just the
// XORed observable mask crossed along the path.
func (f *SearchFlooder) FindShortestPath(src int, dst int, hasDst bool) core.CompressedEdge {
	var obsMask core.ObsMask
	f.IterEdgesOnShortestPath(src, dst, hasDst, func(_, _ core.SearchNodeIdx, obs core.ObsMask) {
		obsMask ^= obs
	})

	edge := core.CompressedEdge{LocFrom: core.NodeIdx(src), ObsMask: obsMask}
	if hasDst {
		edge.LocTo = core.NodeIdx(dst)
	} else {
		edge.LocTo = core.NodeIdx(core.None)
	}
	return edge
}

// Reset clears every node touched by the last search and rewinds the
// queue.
func (f *SearchFlooder) Reset() {
	for _, idx := range f.reachedNodes {
		f.Graph.Nodes[idx].Reset()
	}
	f.reachedNodes = f.reachedNodes[:0]
	f.Queue.Reset()
	f.target = targetNone
}
