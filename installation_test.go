package em3

import "testing"

func TestDecodeInstallationCommentVsParameters(t *testing.T) {
	label := Label{Id: IDStart, Model: ModelEM2040}
	payload := make([]byte, 8)
	payload = append(payload, []byte("S1Z=1.00,S1X=0.20,S1Y=-0.10,S1H=0.0,S1R=0.0,S1P=0.0,WLZ=-0.5")...)
	// zero date marks a comment per IsComment's convention
	inst, err := DecodeInstallation(label, payload)
	if err != nil {
		t.Fatalf("DecodeInstallation: %v", err)
	}
	if !inst.IsComment() {
		t.Fatalf("expected zero-date record to be a comment")
	}

	mount := inst.MountOffset(1)
	if mount.Z != 1.00 || mount.X != 0.20 || mount.WaterlineZ != -0.5 {
		t.Fatalf("unexpected mount offsets: %+v", mount)
	}
}

func TestInstallationEncodeDecodeRoundTrip(t *testing.T) {
	label := Label{Id: IDStop, Model: ModelEM710}
	payload := make([]byte, 8)
	binLE(payload[0:4], 20240615)
	binLE(payload[4:8], 500)
	payload = append(payload, []byte("S2Z=2.5,S2X=-0.3")...)

	in, err := DecodeInstallation(label, payload)
	if err != nil {
		t.Fatalf("DecodeInstallation: %v", err)
	}
	if in.IsComment() {
		t.Fatalf("expected nonzero date to not be a comment")
	}

	reEncoded := EncodeInstallation(in)
	out, err := DecodeInstallation(label, reEncoded)
	if err != nil {
		t.Fatalf("DecodeInstallation after re-encode: %v", err)
	}
	if out.Date != in.Date || out.Msec != in.Msec {
		t.Fatalf("round trip header mismatch: %+v vs %+v", out, in)
	}
	mount := out.MountOffset(2)
	if mount.Z != 2.5 || mount.X != -0.3 {
		t.Fatalf("unexpected mount offsets after round trip: %+v", mount)
	}
}

func TestHeadForSerialSelectsHead2WhenMatched(t *testing.T) {
	label := Label{Id: IDStart, Model: ModelEM2040}
	payload := make([]byte, 8)
	payload = append(payload, []byte("S1S=100,S2S=200")...)
	in, err := DecodeInstallation(label, payload)
	if err != nil {
		t.Fatalf("DecodeInstallation: %v", err)
	}
	if in.HeadForSerial(200) != 2 {
		t.Fatalf("expected serial 200 to map to head 2")
	}
	if in.HeadForSerial(100) != 1 {
		t.Fatalf("expected serial 100 to map to head 1 (default)")
	}
}

func binLE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
