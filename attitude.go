package em3

import (
	"encoding/binary"
	"time"
)

// AttitudeSample is one motion-sensor reading within an Attitude burst.
// Time is reconstructed by adding the sample's offset to the record's own
// Date/Msec.
type AttitudeSample struct {
	Time    time.Time
	Roll    float64 // degrees, 0.01 deg raw, signed
	Pitch   float64 // degrees, 0.01 deg raw, signed
	Heave   float64 // metres, 0.01 m raw, signed
	Heading float64 // degrees, 0.01 deg raw
}

// Attitude is a decoded Attitude (0x41) or NetworkAttitude (0x6E) datagram:
// a burst of motion samples sharing one record timestamp and sensor
// descriptor.
type Attitude struct {
	Date         uint32
	Msec         uint32
	SensorSystem byte // which of the configured motion sensors this burst came from
	Samples      []AttitudeSample
	IsNetwork    bool // true when decoded from a NetworkAttitude (0x6E) datagram
}

const attitudeSampleWireLen = 12

func recordEpoch(date, msec uint32) time.Time {
	year := int(date / 10000)
	month := int((date / 100) % 100)
	day := int(date % 100)
	base := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(msec) * time.Millisecond)
}

// DecodeAttitude decodes an Attitude payload: an 8 byte header, a run of
// 12 byte samples, and a trailing sensor system byte.
func DecodeAttitude(payload []byte, network bool) (Attitude, error) {
	if len(payload) < 9 {
		return Attitude{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	date := le.Uint32(payload[0:4])
	msec := le.Uint32(payload[4:8])
	epoch := recordEpoch(date, msec)

	body := payload[8 : len(payload)-1]
	if len(body)%attitudeSampleWireLen != 0 {
		return Attitude{}, ErrUnintelligible
	}
	count := len(body) / attitudeSampleWireLen
	samples := make([]AttitudeSample, 0, count)
	for i := 0; i < count; i++ {
		s := body[i*attitudeSampleWireLen : (i+1)*attitudeSampleWireLen]
		offsetMs := le.Uint16(s[0:2])
		samples = append(samples, AttitudeSample{
			Time:    epoch.Add(time.Duration(offsetMs) * time.Millisecond),
			Heave:   float64(int16(le.Uint16(s[4:6]))) / ScaleHeave01,
			Roll:    float64(int16(le.Uint16(s[6:8]))) / ScaleAngle01Deg,
			Pitch:   float64(int16(le.Uint16(s[8:10]))) / ScaleAngle01Deg,
			Heading: float64(le.Uint16(s[10:12])) / ScaleAngle01Deg,
		})
	}
	return Attitude{
		Date:         date,
		Msec:         msec,
		Samples:      samples,
		SensorSystem: payload[len(payload)-1],
		IsNetwork:    network,
	}, nil
}

// EncodeAttitude serialises an Attitude back to its payload form.
func EncodeAttitude(a Attitude) []byte {
	le := binary.LittleEndian
	out := make([]byte, 8+len(a.Samples)*attitudeSampleWireLen+1)
	le.PutUint32(out[0:4], a.Date)
	le.PutUint32(out[4:8], a.Msec)
	epoch := recordEpoch(a.Date, a.Msec)
	for i, s := range a.Samples {
		off := 8 + i*attitudeSampleWireLen
		offsetMs := uint16(s.Time.Sub(epoch) / time.Millisecond)
		le.PutUint16(out[off:off+2], offsetMs)
		le.PutUint16(out[off+4:off+6], uint16(int16(s.Heave*ScaleHeave01)))
		le.PutUint16(out[off+6:off+8], uint16(int16(s.Roll*ScaleAngle01Deg)))
		le.PutUint16(out[off+8:off+10], uint16(int16(s.Pitch*ScaleAngle01Deg)))
		le.PutUint16(out[off+10:off+12], uint16(s.Heading*ScaleAngle01Deg))
	}
	out[len(out)-1] = a.SensorSystem
	return out
}
