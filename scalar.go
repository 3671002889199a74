package em3

import "encoding/binary"

// Clock carries the sonar's external time reference sample: the
// datagram's own date/msec plus the external clock's idea of the same
// instant, and whether it is actually in use (1PPS).
type Clock struct {
	Date         uint32
	Msec         uint32
	ExternalDate uint32
	ExternalMsec uint32
	PpsInUse     bool
}

const clockWireLen = 17

func DecodeClock(payload []byte) (Clock, error) {
	if len(payload) < clockWireLen {
		return Clock{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	return Clock{
		Date:         le.Uint32(payload[0:4]),
		Msec:         le.Uint32(payload[4:8]),
		ExternalDate: le.Uint32(payload[8:12]),
		ExternalMsec: le.Uint32(payload[12:16]),
		PpsInUse:     payload[16] != 0,
	}, nil
}

func EncodeClock(c Clock) []byte {
	out := make([]byte, clockWireLen)
	le := binary.LittleEndian
	le.PutUint32(out[0:4], c.Date)
	le.PutUint32(out[4:8], c.Msec)
	le.PutUint32(out[8:12], c.ExternalDate)
	le.PutUint32(out[12:16], c.ExternalMsec)
	if c.PpsInUse {
		out[16] = 1
	}
	return out
}

// Tide is a periodic tide correction sample, in
// metres.
type Tide struct {
	Date       uint32
	Msec       uint32
	TideOffset float64 // metres, 0.01 m raw
}

const tideWireLen = 10

func DecodeTide(payload []byte) (Tide, error) {
	if len(payload) < tideWireLen {
		return Tide{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	return Tide{
		Date:       le.Uint32(payload[0:4]),
		Msec:       le.Uint32(payload[4:8]),
		TideOffset: float64(int16(le.Uint16(payload[8:10]))) / ScaleDepth001,
	}, nil
}

func EncodeTide(t Tide) []byte {
	out := make([]byte, tideWireLen)
	le := binary.LittleEndian
	le.PutUint32(out[0:4], t.Date)
	le.PutUint32(out[4:8], t.Msec)
	le.PutUint16(out[8:10], uint16(int16(t.TideOffset*ScaleDepth001)))
	return out
}

// Height is a depth-sensor derived vertical datum sample, used to carry a
// sensor-provided transducer height independent of tide and attitude,
// when SensorDepthOnly is set.
type Height struct {
	Date       uint32
	Msec       uint32
	Height     float64 // metres, 0.01 m raw, signed
	HeightType byte
}

const heightWireLen = 13

func DecodeHeight(payload []byte) (Height, error) {
	if len(payload) < heightWireLen {
		return Height{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	return Height{
		Date:       le.Uint32(payload[0:4]),
		Msec:       le.Uint32(payload[4:8]),
		Height:     float64(int32(le.Uint32(payload[8:12]))) / ScaleDepth001,
		HeightType: payload[12],
	}, nil
}

func EncodeHeight(h Height) []byte {
	out := make([]byte, heightWireLen)
	le := binary.LittleEndian
	le.PutUint32(out[0:4], h.Date)
	le.PutUint32(out[4:8], h.Msec)
	le.PutUint32(out[8:12], uint32(int32(h.Height*ScaleDepth001)))
	out[12] = h.HeightType
	return out
}
