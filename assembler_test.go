package em3

import "testing"

func samplePingKey() PingKey { return PingKey{Count: 1, SerialNumber: 200} }

func TestPingAssemblyCompletesOnBathRawSS2(t *testing.T) {
	key := samplePingKey()
	pa := newPingAssembly(key)
	opts := AssemblerOptions{}

	bath := Bath2{Header: PingHeader{Date: 20240101, Msec: 0, Key: key, Model: ModelEM2040}, Beams: []BathBeam{{Depth: 10}}}
	pa.AddBath2(bath, opts)
	if pa.State != StatePartial {
		t.Fatalf("expected Partial after Bath2 alone, got %v", pa.State)
	}

	raw := RawBeam4{Header: bath.Header, Beams: []RawBeam4Beam{{Detection: 0x1}}}
	pa.AddRawBeam4(raw, opts)
	if pa.State != StatePartial {
		t.Fatalf("expected still Partial without SS2, got %v", pa.State)
	}

	ss := SS2{Header: bath.Header, Beams: []SS2Beam{{Samples: []int8{1, 2, 3}}}}
	pa.AddSS2(ss, opts)
	if pa.State != StateComplete {
		t.Fatalf("expected Complete once SS2 arrives, got %v", pa.State)
	}
	if pa.Merged == nil || len(pa.Merged.Beams) != 1 {
		t.Fatalf("expected one merged beam, got %+v", pa.Merged)
	}

	p := pa.Consume()
	if p == nil {
		t.Fatalf("Consume returned nil")
	}
	if pa.State != StateNoData {
		t.Fatalf("expected NoData after Consume, got %v", pa.State)
	}
}

func TestPingAssemblyIgnoreSnippetsSkipsSS2(t *testing.T) {
	key := samplePingKey()
	pa := newPingAssembly(key)
	opts := AssemblerOptions{IgnoreSnippets: true}

	bath := Bath2{Header: PingHeader{Key: key, Model: ModelEM710}, Beams: []BathBeam{{Depth: 5}}}
	pa.AddBath2(bath, opts)
	raw := RawBeam4{Header: bath.Header, Beams: []RawBeam4Beam{{}}}
	pa.AddRawBeam4(raw, opts)

	if pa.State != StateComplete {
		t.Fatalf("expected Complete without SS2 under IgnoreSnippets, got %v", pa.State)
	}
}

func TestPingAssemblyM3NeedsBath2AndRawBeam4(t *testing.T) {
	key := samplePingKey()
	pa := newPingAssembly(key)
	bath := Bath2{Header: PingHeader{Key: key, Model: ModelM3}, Beams: []BathBeam{{Depth: 1}}}
	pa.AddBath2(bath, AssemblerOptions{})
	if pa.State != StatePartial {
		t.Fatalf("expected M3 ping still Partial after Bath2 alone, got %v", pa.State)
	}

	raw := RawBeam4{Header: bath.Header, Beams: []RawBeam4Beam{{Detection: 0x1}}}
	pa.AddRawBeam4(raw, AssemblerOptions{})
	if pa.State != StateComplete {
		t.Fatalf("expected M3 ping complete once RawBeam4 matches Bath2's count, got %v", pa.State)
	}
}

func TestPingRingEvictsNoDataOrSmallestCount(t *testing.T) {
	ring := NewPingRing(NumPingStructures)
	keys := make([]PingKey, NumPingStructures)
	for i := range keys {
		keys[i] = PingKey{Count: uint16(i + 1), SerialNumber: 1}
	}
	for _, k := range keys {
		ring.Acquire(k).AddBath2(Bath2{Header: PingHeader{Key: k}}, AssemblerOptions{})
	}

	// Every slot holds a Partial ping (no NoData slot); the smallest Count loses.
	newKey := PingKey{Count: uint16(NumPingStructures + 1), SerialNumber: 1}
	ring.Acquire(newKey)

	if ring.Lookup(keys[0]) != nil {
		t.Fatalf("expected the smallest-count key to have been evicted")
	}
	if ring.Lookup(newKey) == nil {
		t.Fatalf("expected newly acquired key to be present")
	}
}

func TestPingRingPrefersNoDataSlotOverSmallestCount(t *testing.T) {
	ring := NewPingRing(NumPingStructures)
	keys := make([]PingKey, NumPingStructures-1)
	for i := range keys {
		keys[i] = PingKey{Count: uint16(i + 100), SerialNumber: 1}
	}
	for _, k := range keys {
		ring.Acquire(k).AddBath2(Bath2{Header: PingHeader{Key: k}}, AssemblerOptions{})
	}
	// one slot remains nil; it must be chosen even though every Partial
	// slot's Count is larger than the new key's.
	newKey := PingKey{Count: 1, SerialNumber: 1}
	ring.Acquire(newKey)

	for _, k := range keys {
		if ring.Lookup(k) == nil {
			t.Fatalf("expected existing key %+v to survive when a NoData slot was available", k)
		}
	}
	if ring.Lookup(newKey) == nil {
		t.Fatalf("expected newly acquired key to be present")
	}
}

func TestPingRingDepthClampedToMinimum(t *testing.T) {
	ring := NewPingRing(1)
	if len(ring.slots) != NumPingStructures {
		t.Fatalf("expected ring depth clamped to %d, got %d", NumPingStructures, len(ring.slots))
	}
}
