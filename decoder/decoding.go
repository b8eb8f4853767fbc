package decoder

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/sparseblossom/core"
	"github.com/katalvlaran/sparseblossom/matcher"
)

// ErrSyndromeLength is returned when a syndrome's length does not match
// the number of detector nodes in the graph.
var ErrSyndromeLength = fmt.Errorf("decoder: syndrome length does not match detector count")

// Matching is the public decoder: a UserGraph plus the solver caches it
// lazily builds from it.
type Matching struct {
	userGraph *UserGraph
}

// NewMatching returns an empty Matching, ready for edges to be added.
func NewMatching() *Matching {
	return &Matching{userGraph: NewUserGraph()}
}

// FromDEM builds a Matching from a Stim-style detector error model text.
func FromDEM(demText string) (*Matching, error) {
	g, err := ParseDEM(demText)
	if err != nil {
		return nil, err
	}
	return &Matching{userGraph: g}, nil
}

// AddEdge adds a weighted edge between detector nodes n1 and n2.
func (m *Matching) AddEdge(n1, n2 int, weight float64, observables []int, errorProbability float64) error {
	return m.userGraph.AddEdge(n1, n2, observables, weight, errorProbability)
}

// AddBoundaryEdge adds a weighted edge from node to the boundary.
func (m *Matching) AddBoundaryEdge(node int, weight float64, observables []int, errorProbability float64) error {
	return m.userGraph.AddBoundaryEdge(node, observables, weight, errorProbability)
}

// SetBoundary marks the given node IDs as boundary nodes.
func (m *Matching) SetBoundary(boundary []int) {
	set := make(map[int]struct{}, len(boundary))
	for _, n := range boundary {
		set[n] = struct{}{}
	}
	m.userGraph.SetBoundary(set)
}

// NumNodes returns the number of detector and boundary nodes seen so far.
func (m *Matching) NumNodes() int { return m.userGraph.NumNodes() }

// NumDetectors returns the number of non-boundary nodes.
func (m *Matching) NumDetectors() int { return m.userGraph.NumDetectors() }

// Decode decodes a syndrome bit vector (one byte per detector, non-zero
// meaning that detector fired) into observable predictions (one byte per
// observable, 0 or 1).
func (m *Matching) Decode(syndrome []byte) (predictions []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("decoder: decode failed: %w", e)
				return
			}
			err = fmt.Errorf("decoder: decode failed: %v", r)
		}
	}()

	mwpm := m.userGraph.GetMwpm()
	if len(syndrome) != len(mwpm.Flooder.Graph.Nodes) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSyndromeLength, len(syndrome), len(mwpm.Flooder.Graph.Nodes))
	}
	numObservables := m.userGraph.NumObservables

	detectionEvents := syndromeToDetectionEvents(syndrome)
	negObsMask := computeNegObsMask(mwpm.Flooder.Graph.NegWeightObs)
	effectiveEvents := applyNegativeWeightEvents(detectionEvents, mwpm.Flooder.Graph.NegWeightDetEvents, mwpm.Flooder.Graph.IsUserBoundaryNode)

	processTimelineUntilCompletion(mwpm, effectiveEvents)

	matchedPairs := extractMatchEdges(mwpm, effectiveEvents)
	res := shatterAndExtract(mwpm, effectiveEvents)

	searchObsMask := m.deriveObsMaskViaSearch(matchedPairs)
	finalObsMask := searchObsMask ^ negObsMask
	_ = res.ObsMask // flooder-accumulated mask; searchObsMask supersedes it as the authoritative derivation

	predictions = obsMaskToPredictions(finalObsMask, numObservables)

	mwpm.Reset()
	return predictions, nil
}

// DecodeBatch decodes each syndrome in syndromes independently and
// returns one prediction vector per input.
func (m *Matching) DecodeBatch(syndromes [][]byte) ([][]byte, error) {
	results := make([][]byte, len(syndromes))
	for i, s := range syndromes {
		r, err := m.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("decoder: batch index %d: %w", i, err)
		}
		results[i] = r
	}
	return results, nil
}

// MatchedPair is one matched pair of detector node indices from
// DecodeToEdges. To indicates a boundary match when HasTo is false.
type MatchedPair struct {
	From  int
	To    int
	HasTo bool
}

// DecodeToEdges decodes a syndrome and returns the matched detector-node
// pairs directly, without deriving observable predictions.
func (m *Matching) DecodeToEdges(syndrome []byte) (pairs []MatchedPair, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("decoder: decode_to_edges failed: %w", e)
				return
			}
			err = fmt.Errorf("decoder: decode_to_edges failed: %v", r)
		}
	}()

	mwpm := m.userGraph.GetMwpm()
	if len(syndrome) != len(mwpm.Flooder.Graph.Nodes) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSyndromeLength, len(syndrome), len(mwpm.Flooder.Graph.Nodes))
	}

	detectionEvents := syndromeToDetectionEvents(syndrome)
	effectiveEvents := applyNegativeWeightEvents(detectionEvents, mwpm.Flooder.Graph.NegWeightDetEvents, mwpm.Flooder.Graph.IsUserBoundaryNode)

	processTimelineUntilCompletion(mwpm, effectiveEvents)
	matchedPairs := extractMatchEdges(mwpm, effectiveEvents)

	mwpm.Reset()
	return matchedPairs, nil
}

func syndromeToDetectionEvents(syndrome []byte) []int {
	var events []int
	for i, v := range syndrome {
		if v != 0 {
			events = append(events, i)
		}
	}
	return events
}

func computeNegObsMask(negObsSet map[int]struct{}) core.ObsMask {
	var mask core.ObsMask
	for obs := range negObsSet {
		mask ^= 1 << uint(obs)
	}
	return mask
}

// applyNegativeWeightEvents computes the symmetric difference of
// detectionEvents and negDetSet, filtering out user-graph boundary nodes
// from the result.
func applyNegativeWeightEvents(detectionEvents []int, negDetSet map[int]struct{}, isBoundary []bool) []int {
	isBoundaryAt := func(d int) bool {
		return d < len(isBoundary) && isBoundary[d]
	}

	if len(negDetSet) == 0 {
		var result []int
		for _, d := range detectionEvents {
			if !isBoundaryAt(d) {
				result = append(result, d)
			}
		}
		return result
	}

	active := make(map[int]struct{}, len(detectionEvents))
	for _, d := range detectionEvents {
		active[d] = struct{}{}
	}
	for d := range negDetSet {
		if _, ok := active[d]; ok {
			delete(active, d)
		} else {
			active[d] = struct{}{}
		}
	}

	result := make([]int, 0, len(active))
	for d := range active {
		if !isBoundaryAt(d) {
			result = append(result, d)
		}
	}
	sort.Ints(result)
	return result
}

func processTimelineUntilCompletion(m *matcher.Mwpm, detectionEvents []int) {
	m.Flooder.Queue.CurTime = 0
	numNodes := len(m.Flooder.Graph.Nodes)

	for _, det := range detectionEvents {
		if det >= numNodes {
			continue
		}
		m.CreateDetectionEvent(core.NodeIdx(det))
	}

	for {
		event := m.Flooder.RunUntilNextMwpmNotification()
		if event.IsNoEvent() {
			break
		}
		m.ProcessEvent(event)
	}
}

func shatterAndExtract(m *matcher.Mwpm, detectionEvents []int) matcher.MatchingResult {
	var res matcher.MatchingResult
	for _, i := range detectionEvents {
		if i >= len(m.Flooder.Graph.Nodes) {
			continue
		}
		node := &m.Flooder.Graph.Nodes[i]
		if !node.RegionThatArrived.Valid() {
			continue
		}
		top := node.RegionThatArrivedTop

		nodesToClean := collectShellNodes(m, top)
		region := m.Flooder.RegionArena.Get(int32(top))
		if region.HasMatch && region.Match.HasRegion {
			nodesToClean = append(nodesToClean, collectShellNodes(m, region.Match.Region)...)
		}

		res.Add(m.ShatterBlossomAndExtractMatches(top))

		for _, nodeIdx := range nodesToClean {
			m.Flooder.Graph.Nodes[nodeIdx].Reset()
		}
	}
	return res
}

func collectShellNodes(m *matcher.Mwpm, region core.RegionIdx) []core.NodeIdx {
	var nodes []core.NodeIdx
	collectShellNodesRecursive(m, region, &nodes)
	return nodes
}

func collectShellNodesRecursive(m *matcher.Mwpm, region core.RegionIdx, out *[]core.NodeIdx) {
	r := m.Flooder.RegionArena.Get(int32(region))
	*out = append(*out, r.ShellArea...)
	for _, child := range r.BlossomChildren {
		collectShellNodesRecursive(m, child.Region, out)
	}
}

func extractMatchEdges(m *matcher.Mwpm, detectionEvents []int) []MatchedPair {
	var pairs []MatchedPair
	for _, i := range detectionEvents {
		if i >= len(m.Flooder.Graph.Nodes) {
			continue
		}
		node := &m.Flooder.Graph.Nodes[i]
		if !node.RegionThatArrived.Valid() {
			continue
		}
		top := node.RegionThatArrivedTop
		region := m.Flooder.RegionArena.Get(int32(top))
		if !region.HasMatch {
			continue
		}

		from := i
		hasTo := region.Match.Edge.LocTo.Valid()
		to := int(region.Match.Edge.LocTo)

		if !hasTo || from <= to {
			pairs = append(pairs, MatchedPair{From: from, To: to, HasTo: hasTo})
		}
	}
	return pairs
}

func obsMaskToPredictions(mask core.ObsMask, numObservables int) []byte {
	predictions := make([]byte, numObservables)
	for i := 0; i < numObservables; i++ {
		predictions[i] = byte((mask >> uint(i)) & 1)
	}
	return predictions
}

// deriveObsMaskViaSearch reconstructs the actual shortest path between
// each matched pair of detector nodes (or a node and the boundary) over
// the region-free search graph, XORing together every edge's observable
// mask along the way. This is the authoritative source of the decode's
// observable mask: the flooder's incrementally-accumulated
// CompressedEdge.ObsMask values track the same quantity but are not
// independently re-derived from the graph's actual topology.
func (m *Matching) deriveObsMaskViaSearch(pairs []MatchedPair) core.ObsMask {
	sf := m.userGraph.GetSearchFlooder()
	var mask core.ObsMask
	for _, p := range pairs {
		edge := sf.FindShortestPath(p.From, p.To, p.HasTo)
		mask ^= edge.ObsMask
	}
	return mask
}
