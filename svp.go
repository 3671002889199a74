package em3

import "encoding/binary"

// SVPSample is one depth/sound-speed pair within a profile.
type SVPSample struct {
	Depth      float64 // metres
	SoundSpeed float64 // m/s, 0.1 m/s raw
}

// SVP is a decoded sound velocity profile (0x56 legacy or 0x55 SVP2).
// SVP2 carries finer depth resolution than the legacy SVP datagram;
// DecodeSVP records which one produced a given value via the IsSVP2
// field so the encoder can round-trip it faithfully.
type SVP struct {
	Date        uint32
	Msec        uint32
	ProfileDate uint32
	ProfileMsec uint32
	Latitude    float64
	Longitude   float64
	Samples     []SVPSample
	IsSVP2      bool
}

const svpHeaderLen = 24
const svpSampleLen = 8

func svpDepthScale(isSVP2 bool) float64 {
	if isSVP2 {
		return 100.0 // 0.01 m
	}
	return 10.0 // 0.1 m
}

// DecodeSVP decodes an SVP/SVP2 payload.
func DecodeSVP(payload []byte, isSVP2 bool) (SVP, error) {
	if len(payload) < svpHeaderLen {
		return SVP{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	lat := int32(le.Uint32(payload[16:20]))
	lon := int32(le.Uint32(payload[20:24]))
	sv := SVP{
		Date:        le.Uint32(payload[0:4]),
		Msec:        le.Uint32(payload[4:8]),
		ProfileDate: le.Uint32(payload[8:12]),
		ProfileMsec: le.Uint32(payload[12:16]),
		IsSVP2:      isSVP2,
	}
	if lat != InvalidPosition32 {
		sv.Latitude = float64(lat) / ScaleLatLon
	}
	if lon != InvalidPosition32 {
		sv.Longitude = float64(lon) / ScaleLon
	}
	body := payload[svpHeaderLen:]
	if len(body)%svpSampleLen != 0 {
		return SVP{}, ErrUnintelligible
	}
	depthScale := svpDepthScale(isSVP2)
	count := len(body) / svpSampleLen
	sv.Samples = make([]SVPSample, 0, count)
	for i := 0; i < count; i++ {
		s := body[i*svpSampleLen : (i+1)*svpSampleLen]
		sv.Samples = append(sv.Samples, SVPSample{
			Depth:      float64(le.Uint32(s[0:4])) / depthScale,
			SoundSpeed: float64(le.Uint32(s[4:8])) / ScaleVelocity01,
		})
	}
	return sv, nil
}

// EncodeSVP serialises an SVP back to its payload form.
func EncodeSVP(sv SVP) []byte {
	le := binary.LittleEndian
	out := make([]byte, svpHeaderLen+len(sv.Samples)*svpSampleLen)
	le.PutUint32(out[0:4], sv.Date)
	le.PutUint32(out[4:8], sv.Msec)
	le.PutUint32(out[8:12], sv.ProfileDate)
	le.PutUint32(out[12:16], sv.ProfileMsec)
	le.PutUint32(out[16:20], uint32(int32(sv.Latitude*ScaleLatLon)))
	le.PutUint32(out[20:24], uint32(int32(sv.Longitude*ScaleLon)))
	depthScale := svpDepthScale(sv.IsSVP2)
	for i, s := range sv.Samples {
		off := svpHeaderLen + i*svpSampleLen
		le.PutUint32(out[off:off+4], uint32(s.Depth*depthScale))
		le.PutUint32(out[off+4:off+8], uint32(s.SoundSpeed*ScaleVelocity01))
	}
	return out
}
