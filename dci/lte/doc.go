// Package lte is the reference physical-layer codec: LTE Rel-8 FDD DCI
// formats 0, 1, 1A, 2 and 2A (36.212 §5.3.3.1), the UE-specific search
// space (36.213 §9.1.1), control region sizing, CRC attachment with RNTI
// masking and PDCCH CCE placement.
//
// Importing the package registers Codec as dci.NewCodecFunc.
package lte
