package enb

import (
	"fmt"
	"io"
	"os"

	"github.com/segmentio/parquet-go"

	"github.com/pdcch-replay/pdcch-replay/dci"
	"github.com/pdcch-replay/pdcch-replay/dci/bits"
)

// PlacementRow is one PDCCH placement in the parquet output.
type PlacementRow struct {
	TTI         int32  `parquet:"tti"`
	SFN         int32  `parquet:"sfn"`
	Subframe    int32  `parquet:"subframe"`
	CFI         int32  `parquet:"cfi"`
	NofCCE      int32  `parquet:"nof_cce"`
	Sync        bool   `parquet:"sync"`
	Direction   string `parquet:"direction"`
	RNTI        int32  `parquet:"rnti"`
	Format      string `parquet:"format"`
	Aggregation int32  `parquet:"aggregation"`
	NCCE        int32  `parquet:"ncce"`
	NofBits     int32  `parquet:"nof_bits"`
	Payload     string `parquet:"payload"` // hex, payload followed by masked CRC
}

// ParquetSink records every placed DCI as a parquet row. Subframes are
// buffered and flushed once per frame.
type ParquetSink struct {
	file   io.Closer
	writer *parquet.GenericWriter[PlacementRow]
	rows   []PlacementRow
}

// NewParquetSink writes rows to w. The cell parameters go into the file metadata.
func NewParquetSink(w io.Writer, cell dci.CellConfig) *ParquetSink {
	return &ParquetSink{
		writer: parquet.NewGenericWriter[PlacementRow](w,
			parquet.KeyValueMetadata("nof_prb", fmt.Sprint(cell.NofPRB)),
			parquet.KeyValueMetadata("nof_ports", fmt.Sprint(cell.NofPorts)),
			parquet.KeyValueMetadata("cell_id", fmt.Sprint(cell.ID)),
		),
		rows: make([]PlacementRow, 0, 64),
	}
}

// CreateParquetSink creates (or truncates) path.
func CreateParquetSink(path string, cell dci.CellConfig) (*ParquetSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	s := NewParquetSink(f, cell)
	s.file = f
	return s, nil
}

func (s *ParquetSink) WriteSubframe(sf *dci.Subframe) error {
	for _, p := range sf.Placements {
		payload, err := bits.HexString(p.Bits.Payload, p.Bits.NofBits)
		if err != nil {
			return fmt.Errorf("encoding payload of rnti 0x%04x: %w", p.Bits.RNTI, err)
		}
		s.rows = append(s.rows, PlacementRow{
			TTI:         int32(sf.TTI()),
			SFN:         int32(sf.SFN),
			Subframe:    int32(sf.Index),
			CFI:         int32(sf.CFI),
			NofCCE:      int32(sf.NofCCE()),
			Sync:        sf.Sync,
			Direction:   p.Bits.Direction.String(),
			RNTI:        int32(p.Bits.RNTI),
			Format:      p.Bits.Format.String(),
			Aggregation: int32(p.Location.L),
			NCCE:        int32(p.Location.NCCE),
			NofBits:     int32(p.Bits.NofBits),
			Payload:     payload,
		})
	}
	if sf.Index == dci.SubframesPerFrame-1 {
		return s.flush()
	}
	return nil
}

func (s *ParquetSink) flush() error {
	if len(s.rows) == 0 {
		return nil
	}
	if _, err := s.writer.Write(s.rows); err != nil {
		return fmt.Errorf("writing %d placement rows: %w", len(s.rows), err)
	}
	s.rows = s.rows[:0]
	return nil
}

// Close flushes buffered rows and the parquet footer, then closes the file, if any.
func (s *ParquetSink) Close() error {
	err := s.flush()
	if cerr := s.writer.Close(); err == nil {
		err = cerr
	}
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
