package em3

import "encoding/binary"

// PositionFix is a decoded Position (0x50) datagram: a navigation fix plus
// the raw input sentence it was derived from. The raw sentence is stored
// behind a one-byte length at payload offset 25; it is not terminated by a
// sentinel byte.
type PositionFix struct {
	Date        uint32
	Msec        uint32
	Latitude    float64 // degrees, signed
	Longitude   float64 // degrees, signed
	Quality     uint16  // 0.01 m measure of fix quality/accuracy
	Speed       float64 // m/s, 0.1 m/s raw
	Course      float64 // degrees, 0.01 deg raw
	Heading     float64 // degrees, 0.01 deg raw
	Descriptor  byte
	InputText   string // the original positioning sentence, verbatim
}

const positionFixedLen = 20

// DecodePosition decodes a Position payload. InvalidPosition32 in either
// coordinate field means no fix was available at this instant.
func DecodePosition(payload []byte) (PositionFix, error) {
	if len(payload) < positionFixedLen {
		return PositionFix{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	lat := int32(le.Uint32(payload[8:12]))
	lon := int32(le.Uint32(payload[12:16]))

	pf := PositionFix{
		Date:       le.Uint32(payload[0:4]),
		Msec:       le.Uint32(payload[4:8]),
		Quality:    le.Uint16(payload[16:18]),
		Speed:      float64(le.Uint16(payload[18:20])) / ScaleVelocity01,
	}
	if lat == InvalidPosition32 || lon == InvalidPosition32 {
		pf.Latitude, pf.Longitude = 0, 0
	} else {
		pf.Latitude = float64(lat) / ScaleLatLon
		pf.Longitude = float64(lon) / ScaleLon
	}
	if len(payload) >= 26 {
		pf.Course = float64(le.Uint16(payload[20:22])) / ScaleAngle01Deg
		pf.Heading = float64(le.Uint16(payload[22:24])) / ScaleAngle01Deg
		pf.Descriptor = payload[24]
		n := int(payload[25])
		if 26+n <= len(payload) {
			pf.InputText = string(payload[26 : 26+n])
		} else if 26 < len(payload) {
			pf.InputText = string(payload[26:])
		}
	}
	return pf, nil
}

// EncodePosition serialises a PositionFix back to its payload form.
func EncodePosition(pf PositionFix) []byte {
	le := binary.LittleEndian
	text := []byte(pf.InputText)
	out := make([]byte, 26+len(text))
	le.PutUint32(out[0:4], pf.Date)
	le.PutUint32(out[4:8], pf.Msec)
	if pf.Latitude == 0 && pf.Longitude == 0 {
		le.PutUint32(out[8:12], uint32(InvalidPosition32))
		le.PutUint32(out[12:16], uint32(InvalidPosition32))
	} else {
		le.PutUint32(out[8:12], uint32(int32(pf.Latitude*ScaleLatLon)))
		le.PutUint32(out[12:16], uint32(int32(pf.Longitude*ScaleLon)))
	}
	le.PutUint16(out[16:18], pf.Quality)
	le.PutUint16(out[18:20], uint16(pf.Speed*ScaleVelocity01))
	le.PutUint16(out[20:22], uint16(pf.Course*ScaleAngle01Deg))
	le.PutUint16(out[22:24], uint16(pf.Heading*ScaleAngle01Deg))
	out[24] = pf.Descriptor
	out[25] = byte(len(text))
	copy(out[26:], text)
	return out
}
