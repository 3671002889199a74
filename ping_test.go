package em3

import "testing"

func TestBath2RoundTrip(t *testing.T) {
	in := Bath2{
		Header:            PingHeader{Date: 20240101, Msec: 12345, Key: PingKey{Count: 3, SerialNumber: 42}},
		SoundSpeed:        1501.2,
		TxTransducerDepth: 6.13,
		Beams: []BathBeam{
			{Depth: 123.45, AcrossTrack: -12.3, AlongTrack: 0.5, DetectionWindow: 40, QualityFactor: 9, IncidenceAngle: -5.5, SteeringAngle: 1.23, TxSector: 2},
			{Depth: 99.0, AcrossTrack: 12.3, AlongTrack: -0.4, DetectionWindow: 38, QualityFactor: 8, IncidenceAngle: 6.6, SteeringAngle: -1.23, TxSector: 1},
		},
	}
	payload := EncodeBath2(in)
	out, err := DecodeBath2(payload, ModelEM2040)
	if err != nil {
		t.Fatalf("DecodeBath2: %v", err)
	}
	if out.Header.Key != in.Header.Key {
		t.Fatalf("key mismatch: %+v vs %+v", out.Header.Key, in.Header.Key)
	}
	if len(out.Beams) != len(in.Beams) {
		t.Fatalf("beam count mismatch: %d vs %d", len(out.Beams), len(in.Beams))
	}
	for i := range in.Beams {
		if out.Beams[i].TxSector != in.Beams[i].TxSector {
			t.Fatalf("beam %d tx sector mismatch: %v vs %v", i, out.Beams[i].TxSector, in.Beams[i].TxSector)
		}
		if diff := out.Beams[i].SteeringAngle - in.Beams[i].SteeringAngle; diff > 0.02 || diff < -0.02 {
			t.Fatalf("beam %d steering angle mismatch: %v vs %v", i, out.Beams[i].SteeringAngle, in.Beams[i].SteeringAngle)
		}
		if diff := out.Beams[i].IncidenceAngle - in.Beams[i].IncidenceAngle; diff > 0.02 || diff < -0.02 {
			t.Fatalf("beam %d incidence angle mismatch: %v vs %v", i, out.Beams[i].IncidenceAngle, in.Beams[i].IncidenceAngle)
		}
	}
}

func TestRawBeam4RoundTrip(t *testing.T) {
	in := RawBeam4{
		Header:     PingHeader{Date: 20240101, Msec: 1, Key: PingKey{Count: 1, SerialNumber: 1}},
		SoundSpeed: 1500,
		Beams: []RawBeam4Beam{
			{TxSector: 1, Detection: 0x2, Clean: 0, Reflectivity: -20.5, SteeringAngle: 3.5, RangeSamples: 512},
			{TxSector: 2, Detection: 0x9, Clean: 1, Reflectivity: -19.0, SteeringAngle: -3.5, RangeSamples: 480},
		},
	}
	payload := EncodeRawBeam4(in)
	out, err := DecodeRawBeam4(payload, ModelEM710)
	if err != nil {
		t.Fatalf("DecodeRawBeam4: %v", err)
	}
	if len(out.Beams) != 2 {
		t.Fatalf("expected 2 beams, got %d", len(out.Beams))
	}
	if out.Beams[1].Detection != 0x9 || out.Beams[1].Clean != 1 {
		t.Fatalf("unexpected beam 1: %+v", out.Beams[1])
	}
}

func TestSS2RoundTrip(t *testing.T) {
	in := SS2{
		Header:         PingHeader{Date: 20240101, Msec: 2, Key: PingKey{Count: 5, SerialNumber: 9}},
		MeanAbsorption: 35.2,
		PulseLength:    150,
		Beams: []SS2Beam{
			{SortDirection: -1, StartRange: 10, CentreSample: 50, Samples: []int8{-5, -4, -3, 0, 3, 4, 5}},
			{SortDirection: 1, StartRange: 0, CentreSample: 20, Samples: []int8{1, 2}},
		},
	}
	payload := EncodeSS2(in)
	out, err := DecodeSS2(payload, ModelEM302)
	if err != nil {
		t.Fatalf("DecodeSS2: %v", err)
	}
	if len(out.Beams) != 2 || len(out.Beams[0].Samples) != 7 || len(out.Beams[1].Samples) != 2 {
		t.Fatalf("unexpected beams: %+v", out.Beams)
	}
	if out.Beams[0].Samples[0] != -5 {
		t.Fatalf("unexpected first sample: %v", out.Beams[0].Samples[0])
	}
}

func TestQualityRoundTrip(t *testing.T) {
	in := Quality{
		Header: PingHeader{Date: 20240101, Msec: 3, Key: PingKey{Count: 1, SerialNumber: 1}},
		Factor: []float64{0.5, 1.0, 1.5},
	}
	payload := EncodeQuality(in)
	out, err := DecodeQuality(payload, ModelEM122)
	if err != nil {
		t.Fatalf("DecodeQuality: %v", err)
	}
	if len(out.Factor) != 3 || out.Factor[1] != 1.0 {
		t.Fatalf("unexpected factors: %+v", out.Factor)
	}
}

func TestDecodeBath2RejectsShortPayload(t *testing.T) {
	if _, err := DecodeBath2([]byte{1, 2, 3}, ModelEM2040); err != ErrUnintelligible {
		t.Fatalf("expected ErrUnintelligible, got %v", err)
	}
}
