// Package sparseblossom is an event-driven minimum-weight perfect
// matching (MWPM) decoder for quantum error correction, built around
// the Sparse Blossom variant of Edmonds' blossom algorithm.
//
// 🚀 What is sparseblossom?
//
//	A pure-Go decoder that turns a weighted detector graph (or a parsed
//	detector error model) and a syndrome into observable predictions:
//		• Event-driven flooding: growing/shrinking wavefront regions over
//		  a sparse weighted graph, ordered by a monotonic radix queue
//		• Blossom algorithm: alternating trees, blossom formation on
//		  odd-cycle collisions, blossom shattering on full contraction
//		• Shortest-path reconstruction: bidirectional Dijkstra over a
//		  region-free mirror graph, for the actual matched path
//		• Detector error model parsing: Stim-style error/detector/repeat
//		  blocks into a weighted UserGraph
//
// ✨ Why choose sparseblossom?
//
//   - Arena-based, index-addressed graph state — no pointer graphs, no
//     allocator churn across repeated decodes
//   - Bit-packed Varying values for O(1) radius/collision-time arithmetic
//   - Pure Go — no cgo, minimal third-party surface
//   - Decode, DecodeBatch, and DecodeToEdges for different call shapes
//
// Under the hood, everything is organized under dedicated subpackages:
//
//	core/    — index types, Varying values, the radix queue, the arena allocator
//	graph/   — the permanent weighted MatchingGraph and its DetectorNode/FillRegion state
//	flooder/ — the event-driven wavefront simulation (GraphFlooder)
//	matcher/ — alternating trees and the blossom algorithm proper (Mwpm)
//	search/  — bidirectional Dijkstra shortest-path reconstruction
//	decoder/ — the public Matching driver, UserGraph, and DEM parsing
//	cmd/decode/ — a small CLI: detector error model + syndrome in, predictions out
//
// Quick example:
//
//	m := decoder.NewMatching()
//	m.AddEdge(0, 1, 1.0, []int{0}, 0.01)
//	m.AddBoundaryEdge(1, 1.0, nil, 0.01)
//	predictions, err := m.Decode([]byte{1, 0})
//
// See DESIGN.md for the grounding behind each package's design choices.
//
//	go get github.com/katalvlaran/sparseblossom
package sparseblossom
