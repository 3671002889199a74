package em3

import "encoding/binary"

// WaterColumnPage is one datagram's contribution to a (possibly
// multi-datagram) water column record. Large swaths
// split their per-beam amplitude series across several datagrams sharing
// one Header.Key and TotalPages, each with its own PageNumber.
type WaterColumnPage struct {
	Header      PingHeader
	TotalPages  uint16
	PageNumber  uint16
	SoundSpeed  float64 // m/s, 0.1 m/s raw
	SampleRate  uint32  // Hz
	Beams       []WaterColumnBeam
}

// WaterColumnBeam is one beam's amplitude series within a water column
// page.
type WaterColumnBeam struct {
	BeamNumber    uint16
	SteeringAngle float64 // degrees, signed, 0.01 deg raw
	Samples       []int8  // dB, unscaled per original driver convention
}

const waterColumnFixedLen = 8

func DecodeWaterColumnPage(payload []byte, model SonarModel) (WaterColumnPage, error) {
	hdr, rest, err := decodePingHeader(payload, model)
	if err != nil {
		return WaterColumnPage{}, err
	}
	if len(rest) < waterColumnFixedLen {
		return WaterColumnPage{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	wc := WaterColumnPage{
		Header:     hdr,
		TotalPages: le.Uint16(rest[0:2]),
		PageNumber: le.Uint16(rest[2:4]),
		SoundSpeed: float64(le.Uint16(rest[4:6])) / ScaleVelocity01,
	}
	beamCount := int(rest[6])
	body := rest[waterColumnFixedLen:]
	off := 0
	wc.Beams = make([]WaterColumnBeam, 0, beamCount)
	for i := 0; i < beamCount; i++ {
		if off+5 > len(body) {
			return WaterColumnPage{}, ErrUnintelligible
		}
		beamNumber := le.Uint16(body[off : off+2])
		steer := int16(le.Uint16(body[off+2 : off+4]))
		n := int(body[off+4])
		off += 5
		if off+n > len(body) {
			return WaterColumnPage{}, ErrUnintelligible
		}
		samples := make([]int8, n)
		for j, b := range body[off : off+n] {
			samples[j] = int8(b)
		}
		off += n
		wc.Beams = append(wc.Beams, WaterColumnBeam{
			BeamNumber:    beamNumber,
			SteeringAngle: float64(steer) / ScaleAngle01Deg,
			Samples:       samples,
		})
	}
	return wc, nil
}

// EncodeWaterColumnPage serialises a WaterColumnPage back to its payload
// form.
func EncodeWaterColumnPage(wc WaterColumnPage) []byte {
	le := binary.LittleEndian
	out := append(encodePingHeader(wc.Header), make([]byte, waterColumnFixedLen)...)
	fixed := out[pingHeaderWireLen:]
	le.PutUint16(fixed[0:2], wc.TotalPages)
	le.PutUint16(fixed[2:4], wc.PageNumber)
	le.PutUint16(fixed[4:6], uint16(wc.SoundSpeed*ScaleVelocity01))
	fixed[6] = byte(len(wc.Beams))

	for _, beam := range wc.Beams {
		bh := make([]byte, 5)
		le.PutUint16(bh[0:2], beam.BeamNumber)
		le.PutUint16(bh[2:4], uint16(int16(beam.SteeringAngle*ScaleAngle01Deg)))
		bh[4] = byte(len(beam.Samples))
		out = append(out, bh...)
		for _, s := range beam.Samples {
			out = append(out, byte(s))
		}
	}
	return out
}

// WaterColumnComplete reports whether pages holds every page number
// 1..TotalPages, taking TotalPages from the first page. The pages are
// taken to belong to one record; their Header.Key is not compared.
func WaterColumnComplete(pages []WaterColumnPage) bool {
	if len(pages) == 0 {
		return false
	}
	total := pages[0].TotalPages
	seen := make(map[uint16]bool, len(pages))
	for _, p := range pages {
		seen[p.PageNumber] = true
	}
	for i := uint16(1); i <= total; i++ {
		if !seen[i] {
			return false
		}
	}
	return true
}
