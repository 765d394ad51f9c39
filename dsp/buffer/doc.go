// Package buffer provides a planar multichannel sample block and a pool
// for allocation-friendly real-time processing. Processors accept raw
// [][]float64 channel slices; Planar is an optional convenience that helps
// hosts manage allocation and reuse in render loops.
package buffer
