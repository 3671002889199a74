package em3

import "encoding/binary"

// SSV is a surface sound speed sample.
type SSV struct {
	Date       uint32
	Msec       uint32
	SoundSpeed float64 // m/s, 0.1 m/s raw
}

const ssvWireLen = 10

func DecodeSSV(payload []byte) (SSV, error) {
	if len(payload) < ssvWireLen {
		return SSV{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	return SSV{
		Date:       le.Uint32(payload[0:4]),
		Msec:       le.Uint32(payload[4:8]),
		SoundSpeed: float64(le.Uint16(payload[8:10])) / ScaleVelocity01,
	}, nil
}

func EncodeSSV(s SSV) []byte {
	out := make([]byte, ssvWireLen)
	le := binary.LittleEndian
	le.PutUint32(out[0:4], s.Date)
	le.PutUint32(out[4:8], s.Msec)
	le.PutUint16(out[8:10], uint16(s.SoundSpeed*ScaleVelocity01))
	return out
}

// Tilt is a transducer tilt angle sample, used by sonars with a
// mechanically or electronically steered head.
type Tilt struct {
	Date       uint32
	Msec       uint32
	TiltAngle  float64 // degrees, 0.01 deg raw, signed
}

const tiltWireLen = 10

func DecodeTilt(payload []byte) (Tilt, error) {
	if len(payload) < tiltWireLen {
		return Tilt{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	return Tilt{
		Date:      le.Uint32(payload[0:4]),
		Msec:      le.Uint32(payload[4:8]),
		TiltAngle: float64(int16(le.Uint16(payload[8:10]))) / ScaleAngle01Deg,
	}, nil
}

func EncodeTilt(t Tilt) []byte {
	out := make([]byte, tiltWireLen)
	le := binary.LittleEndian
	le.PutUint32(out[0:4], t.Date)
	le.PutUint32(out[4:8], t.Msec)
	le.PutUint16(out[8:10], uint16(int16(t.TiltAngle*ScaleAngle01Deg)))
	return out
}
