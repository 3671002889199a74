package em3

import (
	"strings"
	"testing"
)

func buildMinimalAcquisition(t *testing.T) []byte {
	t.Helper()
	var out []byte

	startPayload := make([]byte, 8)
	binLE(startPayload[0:4], 20240615)
	binLE(startPayload[4:8], 0)
	startPayload = append(startPayload, []byte("S1Z=1.0,S1X=0.0,S1Y=0.0,S1H=0.0,S1R=0.0,S1P=0.0,WLZ=0.0")...)
	out = append(out, EncodeRecord(IDStart, ModelEM2040, startPayload, PolarityNative)...)

	pos := PositionFix{Date: 20240615, Msec: 0, Latitude: -32.05, Longitude: 115.74, Heading: 90, InputText: "$GPGGA"}
	out = append(out, EncodeRecord(IDPosition, ModelEM2040, EncodePosition(pos), PolarityNative)...)

	att := Attitude{
		Date: 20240615, Msec: 0, SensorSystem: 1,
		Samples: []AttitudeSample{{Time: recordEpoch(20240615, 0), Roll: 0, Pitch: 0, Heave: 0, Heading: 90}},
	}
	out = append(out, EncodeRecord(IDAttitude, ModelEM2040, EncodeAttitude(att), PolarityNative)...)

	hdr := PingHeader{Date: 20240615, Msec: 0, Key: PingKey{Count: 1, SerialNumber: 101}}
	bath := Bath2{
		Header: hdr, SoundSpeed: 1500, TxTransducerDepth: 5,
		Beams: []BathBeam{
			{Depth: 40, AcrossTrack: -5, AlongTrack: 0, IncidenceAngle: -10},
			{Depth: 42, AcrossTrack: 5, AlongTrack: 0, IncidenceAngle: 10},
		},
	}
	out = append(out, EncodeRecord(IDBath2, ModelEM2040, EncodeBath2(bath), PolarityNative)...)

	raw := RawBeam4{
		Header: hdr, SoundSpeed: 1500,
		Beams: []RawBeam4Beam{
			{TxSector: 1, Detection: 0x1, Reflectivity: -20},
			{TxSector: 1, Detection: 0x1, Reflectivity: -21},
		},
	}
	out = append(out, EncodeRecord(IDRawBeam4, ModelEM2040, EncodeRawBeam4(raw), PolarityNative)...)

	qual := Quality{Header: hdr, Factor: []float64{0.9, 0.8}}
	out = append(out, EncodeRecord(IDQuality, ModelEM2040, EncodeQuality(qual), PolarityNative)...)

	ss := SS2{
		Header: hdr, MeanAbsorption: 30, PulseLength: 150,
		Beams: []SS2Beam{
			{Samples: []int8{1, 2, 3}},
			{Samples: []int8{4, 5, 6}},
		},
	}
	out = append(out, EncodeRecord(IDSS2, ModelEM2040, EncodeSS2(ss), PolarityNative)...)

	return out
}

func TestHandleReadPingAndExtractEndToEnd(t *testing.T) {
	stream := MemoryStream(buildMinimalAcquisition(t))
	h := Open(stream, Options{})

	p, err := h.ReadPing()
	if err != nil {
		t.Fatalf("ReadPing: %v", err)
	}
	if p.Key != (PingKey{Count: 1, SerialNumber: 101}) {
		t.Fatalf("unexpected ping key: %+v", p.Key)
	}
	if len(p.Beams) != 2 {
		t.Fatalf("expected 2 beams, got %d", len(p.Beams))
	}
	if p.Beams[0].Reflectivity != -20 {
		t.Fatalf("expected RawBeam4 reflectivity merged in, got %v", p.Beams[0].Reflectivity)
	}
	if p.Beams[0].QualityValue != 0.9 {
		t.Fatalf("expected Quality merged in, got %v", p.Beams[0].QualityValue)
	}
	if len(p.Beams[0].Sidescan) != 3 {
		t.Fatalf("expected SS2 samples merged in, got %v", p.Beams[0].Sidescan)
	}

	geo := h.Extract(p)
	if len(geo) != 2 {
		t.Fatalf("expected 2 georeferenced beams, got %d", len(geo))
	}
	if geo[0].Flag.Set(FlagInterpolate) {
		t.Fatalf("expected full fixes available, got interpolate flag set: %v", geo[0].Flag)
	}

	if _, err := h.ReadPing(); err != ErrEndOfStream {
		t.Fatalf("expected ErrEndOfStream after the only ping, got %v", err)
	}

	b, err := MarshalExtractJSON(p, geo)
	if err != nil {
		t.Fatalf("MarshalExtractJSON: %v", err)
	}
	if !strings.Contains(string(b), `"ping_count":1`) {
		t.Fatalf("unexpected JSON output: %s", b)
	}
}

func TestHandleInsertPingRoundTrip(t *testing.T) {
	stream := MemoryStream(buildMinimalAcquisition(t))
	h := Open(stream, Options{})
	p, err := h.ReadPing()
	if err != nil {
		t.Fatalf("ReadPing: %v", err)
	}

	var buf []byte
	writer := &sliceWriter{buf: &buf}
	if err := h.InsertPing(writer, p, PolarityNative); err != nil {
		t.Fatalf("InsertPing: %v", err)
	}

	replayStream := MemoryStream(buf)
	h2 := Open(replayStream, Options{})
	p2, err := h2.ReadPing()
	if err != nil {
		t.Fatalf("ReadPing on replayed stream: %v", err)
	}
	if p2.Key != p.Key || len(p2.Beams) != len(p.Beams) {
		t.Fatalf("replayed ping mismatch: %+v vs %+v", p2, p)
	}
}

type sliceWriter struct{ buf *[]byte }

func (w *sliceWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}
