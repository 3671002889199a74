package em3

import "testing"

func buildStream(t *testing.T, records [][]byte) Stream {
	t.Helper()
	var buf []byte
	for _, r := range records {
		buf = append(buf, r...)
	}
	return MemoryStream(buf)
}

func TestFramerRoundTripMinimalPing(t *testing.T) {
	hdr := encodePingHeader(PingHeader{Date: 20240612, Msec: 1000, Key: PingKey{Count: 7, SerialNumber: 101}})
	bath := EncodeBath2(Bath2{
		Header:     PingHeader{Date: 20240612, Msec: 1000, Key: PingKey{Count: 7, SerialNumber: 101}},
		SoundSpeed: 1500,
		Beams:      []BathBeam{{Depth: 42.5, AcrossTrack: 3.2}},
	})
	_ = hdr

	rec := EncodeRecord(IDBath2, ModelEM2040, bath, PolarityNative)
	stream := buildStream(t, [][]byte{rec})

	fr := NewFramer(stream)
	label, payload, err := fr.NextRecord()
	if err != nil {
		t.Fatalf("NextRecord: %v", err)
	}
	if label.Id != IDBath2 || label.Model != ModelEM2040 {
		t.Fatalf("unexpected label: %+v", label)
	}

	decoded, err := DecodeBath2(payload, label.Model)
	if err != nil {
		t.Fatalf("DecodeBath2: %v", err)
	}
	if decoded.Header.Key.Count != 7 || decoded.Header.Key.SerialNumber != 101 {
		t.Fatalf("unexpected ping key: %+v", decoded.Header.Key)
	}
	if len(decoded.Beams) != 1 || decoded.Beams[0].Depth != 42.5 {
		t.Fatalf("unexpected beams: %+v", decoded.Beams)
	}

	if _, _, err := fr.NextRecord(); err != ErrEndOfStream {
		t.Fatalf("expected ErrEndOfStream, got %v", err)
	}
}

func TestFramerDetectsSwappedEndianness(t *testing.T) {
	bath := EncodeBath2(Bath2{
		Header:     PingHeader{Date: 20240612, Msec: 500, Key: PingKey{Count: 1, SerialNumber: 55}},
		SoundSpeed: 1490,
		Beams:      []BathBeam{{Depth: 10}},
	})
	rec := EncodeRecord(IDBath2, ModelEM710, bath, PolaritySwapped)
	stream := buildStream(t, [][]byte{rec})

	fr := NewFramer(stream)
	label, _, err := fr.NextRecord()
	if err != nil {
		t.Fatalf("NextRecord: %v", err)
	}
	if fr.Polarity() != PolaritySwapped {
		t.Fatalf("expected swapped polarity, got %v", fr.Polarity())
	}
	if label.Model != ModelEM710 {
		t.Fatalf("unexpected model after swap: %v", label.Model)
	}
}

func TestFramerResyncsPastCorruption(t *testing.T) {
	bath := EncodeBath2(Bath2{
		Header:     PingHeader{Date: 20240612, Msec: 0, Key: PingKey{Count: 2, SerialNumber: 9}},
		SoundSpeed: 1500,
		Beams:      []BathBeam{{Depth: 5}},
	})
	rec := EncodeRecord(IDBath2, ModelEM3002, bath, PolarityNative)

	garbage := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE}
	stream := buildStream(t, [][]byte{garbage, rec})

	fr := NewFramer(stream)
	label, _, err := fr.NextRecord()
	if err != nil {
		t.Fatalf("NextRecord after garbage: %v", err)
	}
	if label.Id != IDBath2 {
		t.Fatalf("unexpected label after resync: %+v", label)
	}
	if fr.Skipped() == 0 {
		t.Fatalf("expected nonzero skipped byte count")
	}
}

func TestFramerPolarityStableAcrossRecords(t *testing.T) {
	one := EncodeRecord(IDClock, ModelEM122, EncodeClock(Clock{}), PolarityNative)
	two := EncodeRecord(IDTide, ModelEM122, EncodeTide(Tide{}), PolarityNative)
	stream := buildStream(t, [][]byte{one, two})

	fr := NewFramer(stream)
	if _, _, err := fr.NextRecord(); err != nil {
		t.Fatalf("first record: %v", err)
	}
	first := fr.Polarity()
	if _, _, err := fr.NextRecord(); err != nil {
		t.Fatalf("second record: %v", err)
	}
	if fr.Polarity() != first {
		t.Fatalf("polarity changed across records: %v -> %v", first, fr.Polarity())
	}
}
