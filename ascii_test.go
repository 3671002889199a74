package em3

import "testing"

func TestParseASCIIFieldsEscapedComma(t *testing.T) {
	fields := parseASCIIFields("S1Z=1.23,NAM=RV Investigator^ Survey,S1X=0.5")
	if v, ok := fields.Get("NAM"); !ok || v != "RV Investigator, Survey" {
		t.Fatalf("expected escaped comma restored, got %q ok=%v", v, ok)
	}
	if v, _ := fields.Get("S1Z"); v != "1.23" {
		t.Fatalf("unexpected S1Z: %q", v)
	}
	if len(fields.keys) != 3 {
		t.Fatalf("expected 3 keys in order, got %v", fields.keys)
	}
}

func TestEncodeASCIIFieldsRoundTrip(t *testing.T) {
	fields := parseASCIIFields("A=1,B=two^more,C=3")
	out := encodeASCIIFields(fields.keys, fields.values)
	reparsed := parseASCIIFields(out)
	if v, _ := reparsed.Get("B"); v != "two,more" {
		t.Fatalf("round trip lost escaped comma: %q", v)
	}
	if len(reparsed.keys) != 3 {
		t.Fatalf("expected 3 keys after round trip, got %v", reparsed.keys)
	}
}
