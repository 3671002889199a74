package em3

import "github.com/samber/lo"

// QualitySummary is a basic set of quality-assurance statistics gathered
// over a run of pings, in the spirit of the
// teacher's own qa.go summary pass over a decoded GSF file.
type QualitySummary struct {
	PingCount      int
	BeamCounts     []int
	MinBeams       int
	MaxBeams       int
	DuplicateKeys  []PingKey
	FlaggedBeams   int
	TotalBeams     int
	BytesSkipped   uint64
}

// Summarize walks pings, recording beam-count extremes, duplicate ping
// keys and the fraction of beams that ended up flagged unusable.
func Summarize(pings []*Ping, skipped uint64) QualitySummary {
	var qs QualitySummary
	keys := make([]PingKey, 0, len(pings))

	for _, p := range pings {
		qs.PingCount++
		n := len(p.Beams)
		qs.BeamCounts = append(qs.BeamCounts, n)
		qs.TotalBeams += n
		keys = append(keys, p.Key)
		for _, b := range p.Beams {
			if !b.Flag.Usable() {
				qs.FlaggedBeams++
			}
		}
	}

	if len(qs.BeamCounts) > 0 {
		qs.MinBeams = lo.Min(qs.BeamCounts)
		qs.MaxBeams = lo.Max(qs.BeamCounts)
	}
	qs.DuplicateKeys = lo.FindDuplicates(keys)
	qs.BytesSkipped = skipped
	return qs
}

// FlaggedFraction reports what share of all beams ended up unusable.
func (qs QualitySummary) FlaggedFraction() float64 {
	if qs.TotalBeams == 0 {
		return 0
	}
	return float64(qs.FlaggedBeams) / float64(qs.TotalBeams)
}
