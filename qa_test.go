package em3

import "testing"

func TestSummarizeCountsAndFlags(t *testing.T) {
	pings := []*Ping{
		{
			Key: PingKey{Count: 1, SerialNumber: 1},
			Beams: []MergedBeam{
				{Flag: FlagNone},
				{Flag: FlagSonar},
			},
		},
		{
			Key: PingKey{Count: 1, SerialNumber: 1}, // duplicate key
			Beams: []MergedBeam{
				{Flag: FlagNone},
			},
		},
	}
	qs := Summarize(pings, 42)
	if qs.PingCount != 2 {
		t.Fatalf("expected 2 pings, got %d", qs.PingCount)
	}
	if qs.TotalBeams != 3 {
		t.Fatalf("expected 3 total beams, got %d", qs.TotalBeams)
	}
	if qs.FlaggedBeams != 1 {
		t.Fatalf("expected 1 flagged beam, got %d", qs.FlaggedBeams)
	}
	if qs.MinBeams != 1 || qs.MaxBeams != 2 {
		t.Fatalf("unexpected beam extremes: min=%d max=%d", qs.MinBeams, qs.MaxBeams)
	}
	if len(qs.DuplicateKeys) != 1 {
		t.Fatalf("expected 1 duplicate key, got %v", qs.DuplicateKeys)
	}
	if qs.BytesSkipped != 42 {
		t.Fatalf("expected bytes skipped carried through, got %d", qs.BytesSkipped)
	}
	if frac := qs.FlaggedFraction(); frac < 0.33 || frac > 0.34 {
		t.Fatalf("unexpected flagged fraction: %v", frac)
	}
}

func TestFlaggedFractionZeroBeams(t *testing.T) {
	qs := Summarize(nil, 0)
	if qs.FlaggedFraction() != 0 {
		t.Fatalf("expected zero fraction with no beams")
	}
}
