package replay

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pdcch-replay/pdcch-replay/dci"
)

// Decoder turns parsed records into canonical messages through the codec and
// cross-checks the decoded fields against the record's declared metadata.
type Decoder struct {
	Cell  dci.CellConfig
	Codec dci.Codec
	// Strict names inconsistency fields that reject the record instead of
	// being attached to the message. Empty by default.
	Strict map[string]bool
	Log    logrus.FieldLogger
}

// NewDecoder returns a non-strict decoder logging to the standard logger.
func NewDecoder(cell dci.CellConfig, codec dci.Codec) *Decoder {
	return &Decoder{Cell: cell, Codec: codec, Log: logrus.StandardLogger()}
}

// Decode unpacks rec. Mismatches between declared and decoded fields are
// attached to the returned message and logged; they are only errors for
// fields listed in Strict, in which case nothing is logged here.
func (d *Decoder) Decode(rec Record) (dci.Message, error) {
	format, err := rec.Format()
	if err != nil {
		return dci.Message{}, &dci.ParseError{Field: "format", Err: err}
	}
	raw := dci.Raw{
		Direction: rec.Direction,
		Format:    format,
		Location:  rec.Location(),
		RNTI:      rec.RNTI,
		Payload:   rec.Payload,
		NofBits:   rec.PayloadBits,
	}
	msg, err := d.Codec.Decode(d.Cell, raw)
	if err != nil {
		return dci.Message{}, &dci.DecodeError{Format: format, Err: err}
	}

	msg.Inconsistencies = crossCheck(rec, format, msg)
	if len(msg.Inconsistencies) == 0 {
		return msg, nil
	}

	var strict []dci.Inconsistency
	for _, inc := range msg.Inconsistencies {
		if d.Strict[inc.Field] {
			strict = append(strict, inc)
		}
	}
	// rejected records are logged once by whoever drops them
	if len(strict) > 0 {
		return msg, &dci.InconsistencyError{Inconsistencies: strict}
	}

	log := d.logger().WithFields(logrus.Fields{"tti": rec.Interval(), "rnti": rec.RNTI})
	for _, inc := range msg.Inconsistencies {
		log.Warn(inc.Error())
	}
	log.Warnf("produced inconsistent %s DCI", rec.Direction)
	return msg, nil
}

func (d *Decoder) logger() logrus.FieldLogger {
	if d.Log == nil {
		return logrus.StandardLogger()
	}
	return d.Log
}

func crossCheck(rec Record, format dci.Format, msg dci.Message) []dci.Inconsistency {
	var out []dci.Inconsistency
	check := func(field string, declared, decoded int64) {
		if declared != decoded {
			out = append(out, dci.Inconsistency{Field: field, Declared: declared, Decoded: decoded})
		}
	}
	check(dci.FieldRNTI, int64(rec.RNTI), int64(msg.RNTI))
	check(dci.FieldFormat, int64(format), int64(msg.Format))
	check(dci.FieldAggregation, int64(rec.Aggregation), int64(msg.Location.L))
	check(dci.FieldNCCE, int64(rec.NCCE), int64(msg.Location.NCCE))
	check(dci.FieldMCS, int64(rec.MCS), int64(msg.TB[0].MCS))
	check(dci.FieldNDI, int64(rec.NDI), int64(msg.TB[0].NDI))
	if rec.IsDownlink() && msg.Format.MultiCodeword() && rec.NDI1 >= 0 {
		check(dci.FieldNDI1, int64(rec.NDI1), int64(msg.TB[1].NDI))
	}
	return out
}

// StrictFields builds a Strict set from field names, rejecting unknown names.
func StrictFields(names []string) (map[string]bool, error) {
	known := map[string]bool{
		dci.FieldRNTI: true, dci.FieldFormat: true, dci.FieldAggregation: true,
		dci.FieldNCCE: true, dci.FieldMCS: true, dci.FieldNDI: true, dci.FieldNDI1: true,
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		if !known[n] {
			return nil, fmt.Errorf("unknown strict field %q", n)
		}
		out[n] = true
	}
	return out, nil
}
