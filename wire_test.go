package em3

import "testing"

func TestClockRoundTrip(t *testing.T) {
	in := Clock{Date: 20240101, Msec: 1, ExternalDate: 20240101, ExternalMsec: 999, PpsInUse: true}
	out, err := DecodeClock(EncodeClock(in))
	if err != nil {
		t.Fatalf("DecodeClock: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestTideRoundTrip(t *testing.T) {
	in := Tide{Date: 20240101, Msec: 2, TideOffset: -1.23}
	out, err := DecodeTide(EncodeTide(in))
	if err != nil {
		t.Fatalf("DecodeTide: %v", err)
	}
	if out.Date != in.Date || out.Msec != in.Msec {
		t.Fatalf("header mismatch: %+v vs %+v", out, in)
	}
	if diff := out.TideOffset - in.TideOffset; diff > 0.01 || diff < -0.01 {
		t.Fatalf("tide offset mismatch: %v vs %v", out.TideOffset, in.TideOffset)
	}
}

func TestHeightRoundTrip(t *testing.T) {
	in := Height{Date: 20240101, Msec: 3, Height: -5.5, HeightType: 2}
	out, err := DecodeHeight(EncodeHeight(in))
	if err != nil {
		t.Fatalf("DecodeHeight: %v", err)
	}
	if out != in {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestSSVRoundTrip(t *testing.T) {
	in := SSV{Date: 20240101, Msec: 4, SoundSpeed: 1502.3}
	out, err := DecodeSSV(EncodeSSV(in))
	if err != nil {
		t.Fatalf("DecodeSSV: %v", err)
	}
	if diff := out.SoundSpeed - in.SoundSpeed; diff > 0.05 || diff < -0.05 {
		t.Fatalf("sound speed mismatch: %v vs %v", out.SoundSpeed, in.SoundSpeed)
	}
}

func TestTiltRoundTrip(t *testing.T) {
	in := Tilt{Date: 20240101, Msec: 5, TiltAngle: -3.21}
	out, err := DecodeTilt(EncodeTilt(in))
	if err != nil {
		t.Fatalf("DecodeTilt: %v", err)
	}
	if diff := out.TiltAngle - in.TiltAngle; diff > 0.01 || diff < -0.01 {
		t.Fatalf("tilt angle mismatch: %v vs %v", out.TiltAngle, in.TiltAngle)
	}
}

func TestSVPRoundTripSVP2DepthScale(t *testing.T) {
	in := SVP{
		Date: 20240101, Msec: 6, ProfileDate: 20240101, ProfileMsec: 6,
		Latitude: -32.1, Longitude: 115.9, IsSVP2: true,
		Samples: []SVPSample{{Depth: 10.55, SoundSpeed: 1500}, {Depth: 50.00, SoundSpeed: 1490}},
	}
	out, err := DecodeSVP(EncodeSVP(in), true)
	if err != nil {
		t.Fatalf("DecodeSVP: %v", err)
	}
	if len(out.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(out.Samples))
	}
	if diff := out.Samples[0].Depth - in.Samples[0].Depth; diff > 0.02 || diff < -0.02 {
		t.Fatalf("depth mismatch: %v vs %v", out.Samples[0].Depth, in.Samples[0].Depth)
	}
}

func TestPuIdAndPuStatusShareId0x30And0x31(t *testing.T) {
	id := PuId{SerialNumber: 101, UdpPort: 4001}
	idPayload := EncodePuId(id)
	if looksLikeASCIIBlock(idPayload) {
		t.Fatalf("PuId payload should not look like an ASCII block")
	}
	out, err := DecodePuId(idPayload)
	if err != nil || out != id {
		t.Fatalf("PuId round trip failed: %+v err=%v", out, err)
	}

	status := PuStatus{Date: 20240101, Msec: 1, PingRate: 1000, UdpStatus: 1, SensorStatus: 2}
	statusPayload := EncodePuStatus(status)
	if looksLikeASCIIBlock(statusPayload) {
		t.Fatalf("PuStatus payload should not look like an ASCII block")
	}
	outStatus, err := DecodePuStatus(statusPayload)
	if err != nil || outStatus != status {
		t.Fatalf("PuStatus round trip failed: %+v err=%v", outStatus, err)
	}
}

func TestWaterColumnCompleteRequiresEveryPage(t *testing.T) {
	pages := []WaterColumnPage{
		{TotalPages: 3, PageNumber: 1},
		{TotalPages: 3, PageNumber: 3},
	}
	if WaterColumnComplete(pages) {
		t.Fatalf("expected incomplete with page 2 missing")
	}
	pages = append(pages, WaterColumnPage{TotalPages: 3, PageNumber: 2})
	if !WaterColumnComplete(pages) {
		t.Fatalf("expected complete with all pages present")
	}
}

func TestRuntimeParametersRoundTrip(t *testing.T) {
	in := RuntimeParameters{
		Date: 20240101, Msec: 7, PingCounter: 12, SerialNumber: 101,
		Mode: 2, MinDepth: 5, MaxDepth: 500, AbsorptionCoeff: 35.2,
		TransmitPulseLength: 150, TransmitBeamwidth: 1.5, TxAlongTilt: -1.0,
	}
	payload := EncodeRuntimeParameters(in)
	out, err := DecodeRuntimeParameters(payload)
	if err != nil {
		t.Fatalf("DecodeRuntimeParameters: %v", err)
	}
	if out.PingCounter != in.PingCounter || out.SerialNumber != in.SerialNumber {
		t.Fatalf("header mismatch: %+v vs %+v", out, in)
	}
	if diff := out.AbsorptionCoeff - in.AbsorptionCoeff; diff > 0.01 || diff < -0.01 {
		t.Fatalf("absorption mismatch: %v vs %v", out.AbsorptionCoeff, in.AbsorptionCoeff)
	}
}
