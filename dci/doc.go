// Package dci provides the domain model for replaying captured downlink
// control information (DCI) onto a PDCCH subframe timeline.
//
// # Reading Guide
//
// Start with these files:
//   - message.go: canonical DCI messages, formats and CCE locations
//   - source.go: the Source contract the scheduler pulls one interval at a time
//   - codec.go: the physical-layer codec and output sink boundaries
//
// # Architecture
//
// The dci package defines interfaces and plain data types; implementations
// live in sub-packages:
//   - dci/bits/: checked bit reader/writer and the hex payload codec
//   - dci/replay/: trace line source, record parser and interval grouping
//   - dci/lte/: reference LTE Rel-8 codec (pack/unpack, search space, PDCCH placement)
//   - dci/enb/: the subframe scheduler, search-space cache and output sinks
//
// dci/lte registers its constructor via init() into NewCodecFunc, so callers
// that only need the Codec interface import dci/lte for its side effect.
package dci
