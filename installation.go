package em3

import (
	"bytes"
	"encoding/binary"
	"strconv"
)

// Installation holds a decoded Start, Stop or Comment datagram: the vessel
// and transducer mounting parameters exchanged as an ASCII key=value
// block. A Comment is an Installation whose Date is zero — IsComment
// reports that case so callers don't have to inspect the field
// themselves.
type Installation struct {
	Kind  RecordID // IDStart, IDStop, or IDStop2 when it carries the ASCII form
	Date  uint32   // YYYYMMDD, zero for a Comment
	Msec  uint32
	Model SonarModel
	Raw   string // the ASCII block as stored, '^' escapes left in place

	keys   []string
	values map[string]string
}

// IsComment reports whether this record carries commentary rather than
// genuine installation parameters, matching the original driver's
// convention of a zero date field.
func (in Installation) IsComment() bool { return in.Date == 0 }

// Get looks up a single installation parameter (e.g. "S1Z", "WLZ") from the
// decoded ASCII block.
func (in Installation) Get(key string) (string, bool) {
	v, ok := in.values[key]
	return v, ok
}

// looksLikeASCIIBlock distinguishes the ASCII Start/Stop/Comment payload
// shape from the small fixed-size binary PuId/PuStatus payloads that share
// the same datagram id byte.
func looksLikeASCIIBlock(payload []byte) bool {
	return len(payload) >= 8 && bytes.IndexByte(payload, '=') >= 0 && bytes.IndexByte(payload, ',') >= 0
}

// DecodeInstallation decodes a Start (0x49), Stop (0x69), or the ASCII
// variant of the shared 0x30 id into an Installation.
func DecodeInstallation(label Label, payload []byte) (Installation, error) {
	if len(payload) < 8 {
		return Installation{}, ErrUnintelligible
	}
	date := binary.LittleEndian.Uint32(payload[0:4])
	msec := binary.LittleEndian.Uint32(payload[4:8])
	fields := parseASCIIFields(string(payload[8:]))
	return Installation{
		Kind:   label.Id,
		Date:   date,
		Msec:   msec,
		Model:  label.Model,
		Raw:    string(payload[8:]),
		keys:   fields.keys,
		values: fields.values,
	}, nil
}

// EncodeInstallation serialises an Installation back into its datagram
// payload (the caller wraps this with EncodeRecord).
func EncodeInstallation(in Installation) []byte {
	out := make([]byte, 8, 8+len(in.Raw))
	binary.LittleEndian.PutUint32(out[0:4], in.Date)
	binary.LittleEndian.PutUint32(out[4:8], in.Msec)
	body := encodeASCIIFields(in.keys, in.values)
	return append(out, []byte(body)...)
}

// installationMountOffset reads one of the two transducer mount offset
// groups (S1* or S2*) used by the beam geometry stage (geometry.go),
// matching par_s1z/par_s1x/.../par_s2n from the original driver.
type installationMountOffset struct {
	Z, X, Y       float64 // metres
	Heading       float64 // degrees
	Roll, Pitch   float64 // degrees
	WaterlineZ    float64 // metres, from WLZ
	DepthSensorZ  float64 // metres, from par_dsh sensor depth/heave override, if present
}

func parseFloatField(fields map[string]string, key string) float64 {
	v, ok := fields[key]
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// MountOffset returns the S1 (head 1) or S2 (head 2) transducer mount
// offsets recorded in this Installation.
func (in Installation) MountOffset(head int) installationMountOffset {
	prefix := "S1"
	if head == 2 {
		prefix = "S2"
	}
	return installationMountOffset{
		Z:            parseFloatField(in.values, prefix+"Z"),
		X:            parseFloatField(in.values, prefix+"X"),
		Y:            parseFloatField(in.values, prefix+"Y"),
		Heading:      parseFloatField(in.values, prefix+"H"),
		Roll:         parseFloatField(in.values, prefix+"R"),
		Pitch:        parseFloatField(in.values, prefix+"P"),
		WaterlineZ:   parseFloatField(in.values, "WLZ"),
		DepthSensorZ: parseFloatField(in.values, "DSH"),
	}
}
