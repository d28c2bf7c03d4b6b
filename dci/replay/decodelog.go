package replay

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/segmentio/parquet-go"

	"github.com/pdcch-replay/pdcch-replay/dci"
)

// DecodeRow is one decoded DCI in the parquet decode log.
type DecodeRow struct {
	Interval        int32  `parquet:"interval"`
	Direction       string `parquet:"direction"`
	RNTI            int32  `parquet:"rnti"`
	Format          string `parquet:"format"`
	Aggregation     int32  `parquet:"aggregation"`
	NCCE            int32  `parquet:"ncce"`
	MCS             int32  `parquet:"mcs"`
	NDI             int32  `parquet:"ndi"`
	HARQ            int32  `parquet:"harq"`
	Inconsistencies int32  `parquet:"inconsistencies"`
	Fields          string `parquet:"fields"`
}

// DecodeLog writes every decoded message of a replay as a parquet row.
type DecodeLog struct {
	file   io.Closer
	writer *parquet.GenericWriter[DecodeRow]
	rows   []DecodeRow
}

// NewDecodeLog writes parquet rows to w.
func NewDecodeLog(w io.Writer, cell dci.CellConfig) *DecodeLog {
	return &DecodeLog{
		writer: parquet.NewGenericWriter[DecodeRow](w,
			parquet.KeyValueMetadata("nof_prb", fmt.Sprint(cell.NofPRB)),
			parquet.KeyValueMetadata("cell_id", fmt.Sprint(cell.ID)),
		),
	}
}

// CreateDecodeLog creates (or truncates) path and writes the log there.
func CreateDecodeLog(path string, cell dci.CellConfig) (*DecodeLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating decode log: %w", err)
	}
	l := NewDecodeLog(f, cell)
	l.file = f
	return l, nil
}

// Observe appends the current group of src.
func (l *DecodeLog) Observe(src dci.Source) error {
	l.rows = l.rows[:0]
	for _, msgs := range [][]dci.Message{src.Downlink(), src.Uplink()} {
		for i := range msgs {
			l.rows = append(l.rows, decodeRow(src.Interval(), &msgs[i]))
		}
	}
	if len(l.rows) == 0 {
		return nil
	}
	if _, err := l.writer.Write(l.rows); err != nil {
		return fmt.Errorf("writing decode log rows for tti %d: %w", src.Interval(), err)
	}
	return nil
}

func decodeRow(interval uint32, m *dci.Message) DecodeRow {
	fields := make([]string, len(m.Inconsistencies))
	for i, inc := range m.Inconsistencies {
		fields[i] = inc.Field
	}
	return DecodeRow{
		Interval:        int32(interval),
		Direction:       m.Direction.String(),
		RNTI:            int32(m.RNTI),
		Format:          m.Format.String(),
		Aggregation:     int32(m.Location.L),
		NCCE:            int32(m.Location.NCCE),
		MCS:             int32(m.TB[0].MCS),
		NDI:             int32(m.TB[0].NDI),
		HARQ:            int32(m.HARQ),
		Inconsistencies: int32(len(m.Inconsistencies)),
		Fields:          strings.Join(fields, ","),
	}
}

// Close flushes the parquet footer and closes the file, if any.
func (l *DecodeLog) Close() error {
	err := l.writer.Close()
	if l.file != nil {
		if cerr := l.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
