package em3

import "encoding/binary"

// ExtraParameters (0x33) is an opaque, content-typed side channel the
// sonar uses for calibration and vendor-specific blobs the core engine
// does not interpret.
type ExtraParameters struct {
	Date      uint32
	Msec      uint32
	ContentId uint16
	Data      []byte
}

const extraParametersHeaderLen = 10

func DecodeExtraParameters(payload []byte) (ExtraParameters, error) {
	if len(payload) < extraParametersHeaderLen {
		return ExtraParameters{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	return ExtraParameters{
		Date:      le.Uint32(payload[0:4]),
		Msec:      le.Uint32(payload[4:8]),
		ContentId: le.Uint16(payload[8:10]),
		Data:      append([]byte{}, payload[10:]...),
	}, nil
}

func EncodeExtraParameters(ep ExtraParameters) []byte {
	le := binary.LittleEndian
	out := make([]byte, extraParametersHeaderLen+len(ep.Data))
	le.PutUint32(out[0:4], ep.Date)
	le.PutUint32(out[4:8], ep.Msec)
	le.PutUint16(out[8:10], ep.ContentId)
	copy(out[10:], ep.Data)
	return out
}

// PuId is the processing-unit identity reply sharing the 0x30 id byte with
// Stop2; looksLikeASCIIBlock tells them apart.
type PuId struct {
	SerialNumber uint16
	UdpPort      uint16
}

const puIdWireLen = 4

func DecodePuId(payload []byte) (PuId, error) {
	if len(payload) < puIdWireLen {
		return PuId{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	return PuId{
		SerialNumber: le.Uint16(payload[0:2]),
		UdpPort:      le.Uint16(payload[2:4]),
	}, nil
}

func EncodePuId(id PuId) []byte {
	out := make([]byte, puIdWireLen)
	le := binary.LittleEndian
	le.PutUint16(out[0:2], id.SerialNumber)
	le.PutUint16(out[2:4], id.UdpPort)
	return out
}

// PuStatus is the processing-unit health reply sharing the 0x31 id byte
// with Off.
type PuStatus struct {
	Date         uint32
	Msec         uint32
	PingRate     uint16 // 0.01 Hz raw
	UdpStatus    byte
	SensorStatus byte
}

const puStatusWireLen = 12

func DecodePuStatus(payload []byte) (PuStatus, error) {
	if len(payload) < puStatusWireLen {
		return PuStatus{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	return PuStatus{
		Date:         le.Uint32(payload[0:4]),
		Msec:         le.Uint32(payload[4:8]),
		PingRate:     le.Uint16(payload[8:10]),
		UdpStatus:    payload[10],
		SensorStatus: payload[11],
	}, nil
}

func EncodePuStatus(ps PuStatus) []byte {
	out := make([]byte, puStatusWireLen)
	le := binary.LittleEndian
	le.PutUint32(out[0:4], ps.Date)
	le.PutUint32(out[4:8], ps.Msec)
	le.PutUint16(out[8:10], ps.PingRate)
	out[10] = ps.UdpStatus
	out[11] = ps.SensorStatus
	return out
}
