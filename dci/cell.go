package dci

import "fmt"

const (
	// SubframesPerFrame is the number of 1 ms subframes in a radio frame.
	SubframesPerFrame = 10
	// FrameCycle is the system frame number period.
	FrameCycle = 1024
	// IntervalCycle is the number of distinct interval ids (TTIs).
	IntervalCycle = FrameCycle * SubframesPerFrame
	// MaxCFI is the largest control format indicator value.
	MaxCFI = 3
)

// Interval maps a frame number and subframe index to an interval id (TTI).
func Interval(sfn, sfIdx uint32) uint32 {
	return (sfn%FrameCycle)*SubframesPerFrame + sfIdx
}

// CyclicPrefix selects normal or extended cyclic prefix.
type CyclicPrefix string

const (
	CPNormal   CyclicPrefix = "normal"
	CPExtended CyclicPrefix = "extended"
)

// PHICHLength is the PHICH duration.
type PHICHLength string

const (
	PHICHNormal   PHICHLength = "normal"
	PHICHExtended PHICHLength = "extended"
)

// PHICHResources is the Ng parameter.
type PHICHResources string

const (
	PHICHR1_6 PHICHResources = "1/6"
	PHICHR1_2 PHICHResources = "1/2"
	PHICHR1   PHICHResources = "1"
	PHICHR2   PHICHResources = "2"
)

// FrameType is the duplex mode.
type FrameType string

const (
	FDD FrameType = "fdd"
	TDD FrameType = "tdd"
)

// CellConfig describes the cell for the whole run. It is never mutated after
// the scheduler starts.
type CellConfig struct {
	NofPRB         uint32         `yaml:"nof_prb" env:"NOF_PRB"`
	NofPorts       uint32         `yaml:"nof_ports" env:"NOF_PORTS"`
	ID             uint32         `yaml:"cell_id" env:"ID"`
	CP             CyclicPrefix   `yaml:"cp" env:"CP"`
	PHICHLength    PHICHLength    `yaml:"phich_length" env:"PHICH_LENGTH"`
	PHICHResources PHICHResources `yaml:"phich_resources" env:"PHICH_RESOURCES"`
	FrameType      FrameType      `yaml:"frame_type" env:"FRAME_TYPE"`
}

// DefaultCell returns the 25 PRB single-port FDD cell the generator starts from.
func DefaultCell() CellConfig {
	return CellConfig{
		NofPRB:         25,
		NofPorts:       1,
		ID:             0,
		CP:             CPNormal,
		PHICHLength:    PHICHNormal,
		PHICHResources: PHICHR1,
		FrameType:      FDD,
	}
}

var validNofPRB = map[uint32]bool{6: true, 15: true, 25: true, 50: true, 75: true, 100: true}

// Validate checks the cell parameters.
func (c CellConfig) Validate() error {
	if !validNofPRB[c.NofPRB] {
		return fmt.Errorf("nof_prb must be one of 6, 15, 25, 50, 75, 100, got %d", c.NofPRB)
	}
	if c.NofPorts != 1 && c.NofPorts != 2 && c.NofPorts != 4 {
		return fmt.Errorf("nof_ports must be 1, 2 or 4, got %d", c.NofPorts)
	}
	if c.ID >= 504 {
		return fmt.Errorf("cell_id must be < 504, got %d", c.ID)
	}
	switch c.CP {
	case CPNormal, CPExtended:
	default:
		return fmt.Errorf("unknown cyclic prefix %q", c.CP)
	}
	switch c.PHICHLength {
	case PHICHNormal, PHICHExtended:
	default:
		return fmt.Errorf("unknown phich_length %q", c.PHICHLength)
	}
	switch c.PHICHResources {
	case PHICHR1_6, PHICHR1_2, PHICHR1, PHICHR2:
	default:
		return fmt.Errorf("unknown phich_resources %q", c.PHICHResources)
	}
	switch c.FrameType {
	case FDD, TDD:
	default:
		return fmt.Errorf("unknown frame_type %q", c.FrameType)
	}
	return nil
}
