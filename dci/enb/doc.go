// Package enb drives the subframe timeline: it pulls one interval group at a
// time from a dci.Source, builds each subframe through the dci.Codec and hands
// it to a dci.Sink.
//
// # Reading Guide
//
//   - scheduler.go: the per-subframe loop and its termination rules
//   - searchspace.go: the UE-specific search space table used to verify placements
//   - sink.go, parquet.go: output collaborators
package enb
