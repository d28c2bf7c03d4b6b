package dci

// Source yields the DCIs active in successive intervals. The slices returned
// by Downlink, Uplink and Rejected belong to the source and are only valid
// until the next Advance.
type Source interface {
	// Ended reports whether no further group can be produced.
	Ended() bool
	// Advance builds the next group. It returns false, leaving the previous
	// group untouched, when the source has ended. Rejected is refreshed on
	// every call.
	Advance() bool
	// Interval returns the interval id of the current group.
	Interval() uint32
	// CFI returns the control format indicator declared for the current group.
	CFI() uint32
	Downlink() []Message
	Uplink() []Message
	// Rejected returns the errors of lines dropped by the last Advance.
	Rejected() []error
	Cell() CellConfig
}
