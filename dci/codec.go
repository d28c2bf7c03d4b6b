package dci

// Codec is the physical-layer boundary: DCI pack/unpack, search-space hashing
// and PDCCH placement. Decoding depends on the cell configuration, so every
// call receives it.
type Codec interface {
	// Decode unpacks a captured payload into a canonical message.
	Decode(cell CellConfig, raw Raw) (Message, error)
	// Render packs a canonical message into channel bits for the given subframe.
	Render(cell CellConfig, sf *Subframe, msg Message) (ChannelBits, error)
	// Place writes channel bits into the subframe's control region at loc.
	Place(sf *Subframe, loc Location, bits ChannelBits) error
	// CandidateLocations returns the UE-specific search space of rnti in
	// subframe sfIdx for a control region of nofCCE elements.
	CandidateLocations(rnti uint16, sfIdx, nofCCE uint32) []Location
	// NofCCE returns the control region size for cfi (1..3).
	NofCCE(cell CellConfig, cfi uint32) (uint32, error)
	// Baseline fills reference, synchronisation and broadcast content and
	// resets the control region for sf.CFI.
	Baseline(cell CellConfig, sf *Subframe) error
}

// NewCodecFunc constructs the registered Codec implementation.
// Set by dci/lte's init(); nil until that package is imported.
var NewCodecFunc func() Codec

// NewCodec returns the registered codec. It panics when no implementation has
// been linked in.
func NewCodec() Codec {
	if NewCodecFunc == nil {
		panic("dci.NewCodecFunc is nil: import dci/lte to register the codec")
	}
	return NewCodecFunc()
}

// Sink consumes completed subframes (modulation and RF or file output).
type Sink interface {
	WriteSubframe(sf *Subframe) error
	Close() error
}
