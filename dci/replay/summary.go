package replay

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pdcch-replay/pdcch-replay/dci"
)

// Distribution summarises the number of messages per populated interval.
type Distribution struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"stddev" yaml:"stddev"`
	P50    float64 `json:"p50" yaml:"p50"`
	P90    float64 `json:"p90" yaml:"p90"`
	Max    float64 `json:"max" yaml:"max"`
}

// Summary aggregates trace-quality statistics over a full replay.
type Summary struct {
	Groups              int            `json:"groups" yaml:"groups"`
	Downlink            int            `json:"downlink" yaml:"downlink"`
	Uplink              int            `json:"uplink" yaml:"uplink"`
	Rejected            int            `json:"rejected" yaml:"rejected"`
	ParseErrors         int            `json:"parse_errors" yaml:"parse_errors"`
	DecodeErrors        int            `json:"decode_errors" yaml:"decode_errors"`
	Inconsistent        int            `json:"inconsistent" yaml:"inconsistent"`
	FirstInterval       uint32         `json:"first_interval" yaml:"first_interval"`
	LastInterval        uint32         `json:"last_interval" yaml:"last_interval"`
	FieldMismatches     map[string]int `json:"field_mismatches" yaml:"field_mismatches"`
	Formats             map[string]int `json:"formats" yaml:"formats"`
	MessagesPerInterval Distribution   `json:"messages_per_interval" yaml:"messages_per_interval"`
}

// Summarizer accumulates a Summary from successive groups of a Source.
// Safe to use on an empty replay (all fields zero).
type Summarizer struct {
	summary  Summary
	perGroup []float64
}

// NewSummarizer returns an empty Summarizer.
func NewSummarizer() *Summarizer {
	return &Summarizer{summary: Summary{
		FieldMismatches: make(map[string]int),
		Formats:         make(map[string]int),
	}}
}

// Observe records the current group of src. Call it once after every
// successful Advance.
func (z *Summarizer) Observe(src dci.Source) {
	s := &z.summary
	if s.Groups == 0 {
		s.FirstInterval = src.Interval()
	}
	s.LastInterval = src.Interval()
	s.Groups++
	z.ObserveRejected(src.Rejected())

	observe := func(msgs []dci.Message) {
		for i := range msgs {
			m := &msgs[i]
			s.Formats[m.Format.String()]++
			if !m.Consistent() {
				s.Inconsistent++
			}
			for _, inc := range m.Inconsistencies {
				s.FieldMismatches[inc.Field]++
			}
		}
	}
	observe(src.Downlink())
	observe(src.Uplink())
	s.Downlink += len(src.Downlink())
	s.Uplink += len(src.Uplink())
	z.perGroup = append(z.perGroup, float64(len(src.Downlink())+len(src.Uplink())))
}

// ObserveRejected counts dropped lines. Observe calls it for each group; call
// it directly with src.Rejected() after the final Advance returns false.
func (z *Summarizer) ObserveRejected(errs []error) {
	s := &z.summary
	for _, err := range errs {
		s.Rejected++
		var pe *dci.ParseError
		var de *dci.DecodeError
		switch {
		case errors.As(err, &pe):
			s.ParseErrors++
		case errors.As(err, &de):
			s.DecodeErrors++
		}
	}
}

// Summary returns the statistics gathered so far.
func (z *Summarizer) Summary() Summary {
	out := z.summary
	if len(z.perGroup) == 0 {
		return out
	}
	sorted := append([]float64(nil), z.perGroup...)
	sort.Float64s(sorted)
	mean, std := stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		std = 0
	}
	out.MessagesPerInterval = Distribution{
		Mean:   mean,
		StdDev: std,
		P50:    stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Max:    floats.Max(sorted),
	}
	return out
}
