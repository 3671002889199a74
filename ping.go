package em3

import "encoding/binary"

// PingKey identifies the swath a sub-record belongs to: the sonar's own
// ping counter together with the transmitting head's serial number. Two
// sub-records share a Ping only when both match.
type PingKey struct {
	Count        uint16
	SerialNumber uint16
}

// PingHeader is the 12 byte preamble common to every ping sub-record
// (Bath2, RawBeam4, Quality, SS2).
type PingHeader struct {
	Date         uint32
	Msec         uint32
	Key          PingKey
	Model        SonarModel
}

const pingHeaderWireLen = 12

func decodePingHeader(payload []byte, model SonarModel) (PingHeader, []byte, error) {
	if len(payload) < pingHeaderWireLen {
		return PingHeader{}, nil, ErrUnintelligible
	}
	le := binary.LittleEndian
	hdr := PingHeader{
		Date:  le.Uint32(payload[0:4]),
		Msec:  le.Uint32(payload[4:8]),
		Model: model,
		Key: PingKey{
			Count:        le.Uint16(payload[8:10]),
			SerialNumber: le.Uint16(payload[10:12]),
		},
	}
	return hdr, payload[pingHeaderWireLen:], nil
}

func encodePingHeader(hdr PingHeader) []byte {
	out := make([]byte, pingHeaderWireLen)
	le := binary.LittleEndian
	le.PutUint32(out[0:4], hdr.Date)
	le.PutUint32(out[4:8], hdr.Msec)
	le.PutUint16(out[8:10], hdr.Key.Count)
	le.PutUint16(out[10:12], hdr.Key.SerialNumber)
	return out
}

// DetectionInfo is the rx detection-quality nibble used by the beamflag
// derivation table.
type DetectionInfo uint8

// BathBeam is one beam's entry within a Bath2 sub-record.
type BathBeam struct {
	Depth           float64 // metres, positive down
	AcrossTrack     float64 // metres, positive starboard
	AlongTrack      float64 // metres, positive forward
	DetectionWindow uint16  // samples
	QualityFactor   byte
	IncidenceAngle  float64 // degrees
	Reflectivity    float64 // dB, 0.5 dB raw
	SteeringAngle   float64 // degrees, signed, 0.01 deg raw
	TxSector        byte
	Detection       DetectionInfo // filled in from the matching RawBeam4 beam during assembly, not carried on the wire here
	Clean           byte          // non-zero means the sonar's own real-time cleaning rejected this beam; likewise from RawBeam4
}

// Bath2 is a decoded Bath2 (0x58) sub-record: per-beam bathymetry.
type Bath2 struct {
	Header            PingHeader
	SoundSpeed        float64 // m/s, 0.1 m/s raw
	TxTransducerDepth float64 // metres
	SampleRate        float64 // Hz
	Beams             []BathBeam
}

// bath2FixedLen is the fixed region following the common 12-byte
// PingHeader; together they make up the 32-byte Bath2 header.
const bath2FixedLen = 20
const bath2BeamLen = 20

func DecodeBath2(payload []byte, model SonarModel) (Bath2, error) {
	hdr, rest, err := decodePingHeader(payload, model)
	if err != nil {
		return Bath2{}, err
	}
	if len(rest) < bath2FixedLen {
		return Bath2{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	b := Bath2{
		Header:            hdr,
		SoundSpeed:        float64(le.Uint16(rest[0:2])) / ScaleVelocity01,
		TxTransducerDepth: float64(le.Uint32(rest[2:6])) / ScaleDepth001,
		SampleRate:        float64(le.Uint32(rest[8:12])) / ScaleSampleRate01,
	}
	beamCount := int(le.Uint16(rest[6:8]))
	body := rest[bath2FixedLen:]
	if len(body) < beamCount*bath2BeamLen {
		return Bath2{}, ErrUnintelligible
	}
	b.Beams = make([]BathBeam, 0, beamCount)
	for i := 0; i < beamCount; i++ {
		s := body[i*bath2BeamLen : (i+1)*bath2BeamLen]
		b.Beams = append(b.Beams, BathBeam{
			Depth:           float64(int32(le.Uint32(s[0:4]))) / ScaleDepth001,
			AcrossTrack:     float64(int32(le.Uint32(s[4:8]))) / ScaleDepth001,
			AlongTrack:      float64(int32(le.Uint32(s[8:12]))) / ScaleDepth001,
			DetectionWindow: le.Uint16(s[12:14]),
			QualityFactor:   s[14],
			IncidenceAngle:  float64(int16(le.Uint16(s[15:17]))) / ScaleAngle01Deg,
			SteeringAngle:   float64(int16(le.Uint16(s[17:19]))) / ScaleAngle01Deg,
			TxSector:        s[19],
		})
	}
	return b, nil
}

// EncodeBath2 serialises a Bath2 back to its payload form.
func EncodeBath2(b Bath2) []byte {
	le := binary.LittleEndian
	out := append(encodePingHeader(b.Header), make([]byte, bath2FixedLen)...)
	fixed := out[pingHeaderWireLen:]
	le.PutUint16(fixed[0:2], uint16(b.SoundSpeed*ScaleVelocity01))
	le.PutUint32(fixed[2:6], uint32(b.TxTransducerDepth*ScaleDepth001))
	le.PutUint16(fixed[6:8], uint16(len(b.Beams)))
	le.PutUint32(fixed[8:12], uint32(b.SampleRate*ScaleSampleRate01))

	beams := make([]byte, len(b.Beams)*bath2BeamLen)
	for i, beam := range b.Beams {
		s := beams[i*bath2BeamLen : (i+1)*bath2BeamLen]
		le.PutUint32(s[0:4], uint32(int32(beam.Depth*ScaleDepth001)))
		le.PutUint32(s[4:8], uint32(int32(beam.AcrossTrack*ScaleDepth001)))
		le.PutUint32(s[8:12], uint32(int32(beam.AlongTrack*ScaleDepth001)))
		le.PutUint16(s[12:14], beam.DetectionWindow)
		s[14] = beam.QualityFactor
		le.PutUint16(s[15:17], uint16(int16(beam.IncidenceAngle*ScaleAngle01Deg)))
		le.PutUint16(s[17:19], uint16(int16(beam.SteeringAngle*ScaleAngle01Deg)))
		s[19] = beam.TxSector
	}
	return append(out, beams...)
}

// TxSectorEntry is one transmit sector's parameters within a RawBeam4
// sub-record. A ping carries up to MaxTx of these, indexed by a beam's
// TxSector field to recover the sector that produced it.
type TxSectorEntry struct {
	TiltAngle    float64 // degrees, signed, 0.01 deg raw — tx_tiltangle
	FocusRange   float64 // metres, 0.1 m raw — tx_focus
	SignalLength float64 // seconds, microsecond raw — tx_signallength
	TxOffsetSec  float64 // seconds from ping time, signed microsecond raw — tx_offset
	CenterFreqHz float64 // Hz — tx_center
	Absorption   float64 // dB/km, 0.01 raw — tx_absorption
	Waveform     byte    // tx_waveform
	Sector       byte    // tx_sector
	BandwidthHz  float64 // Hz — tx_bandwidth
}

const txSectorEntryLen = 24

func decodeTxSectorEntry(s []byte) TxSectorEntry {
	le := binary.LittleEndian
	return TxSectorEntry{
		TiltAngle:    float64(int16(le.Uint16(s[0:2]))) / ScaleAngle01Deg,
		FocusRange:   float64(le.Uint16(s[2:4])) / ScaleVelocity01,
		SignalLength: float64(le.Uint32(s[4:8])) / ScaleMicroseconds,
		TxOffsetSec:  float64(int32(le.Uint32(s[8:12]))) / ScaleMicroseconds,
		CenterFreqHz: float64(le.Uint32(s[12:16])) / ScaleFreqHz,
		Absorption:   float64(le.Uint16(s[16:18])) / 100.0,
		Waveform:     s[18],
		Sector:       s[19],
		BandwidthHz:  float64(le.Uint16(s[20:22])) / ScaleFreqHz,
	}
}

func encodeTxSectorEntry(s []byte, e TxSectorEntry) {
	le := binary.LittleEndian
	le.PutUint16(s[0:2], uint16(int16(e.TiltAngle*ScaleAngle01Deg)))
	le.PutUint16(s[2:4], uint16(e.FocusRange*ScaleVelocity01))
	le.PutUint32(s[4:8], uint32(e.SignalLength*ScaleMicroseconds))
	le.PutUint32(s[8:12], uint32(int32(e.TxOffsetSec*ScaleMicroseconds)))
	le.PutUint32(s[12:16], uint32(e.CenterFreqHz*ScaleFreqHz))
	le.PutUint16(s[16:18], uint16(e.Absorption*100.0))
	s[18] = e.Waveform
	s[19] = e.Sector
	le.PutUint16(s[20:22], uint16(e.BandwidthHz*ScaleFreqHz))
}

// RawBeam4 is a decoded RawBeam4 (0x4E) sub-record: the transmit-sector
// table plus per-beam raw detection and reflectivity data, independent of
// the processed Bath2 geometry.
type RawBeam4 struct {
	Header     PingHeader
	SoundSpeed float64
	TxSectors  []TxSectorEntry
	Beams      []RawBeam4Beam
}

// RawBeam4Beam is one beam's raw entry.
type RawBeam4Beam struct {
	TxSector      byte          // rx_sector: index into RawBeam4.TxSectors
	Detection     DetectionInfo // rx_detection
	Clean         byte          // rx_cleaning
	Quality       byte          // rx_quality
	Reflectivity  float64       // dB, 0.5 dB raw — rx_amp
	SteeringAngle float64       // degrees, signed, 0.01 deg raw — rx_pointangle
	RangeSamples  uint16        // rx_window, detection window samples
	RxRangeSec    float64       // seconds, two-way travel time — rx_range
}

// rawBeam4FixedLen is the fixed region following the common 12-byte
// PingHeader; together they make up the 28-byte RawBeam4 header.
const rawBeam4FixedLen = 16
const rawBeam4BeamLen = 16

func DecodeRawBeam4(payload []byte, model SonarModel) (RawBeam4, error) {
	hdr, rest, err := decodePingHeader(payload, model)
	if err != nil {
		return RawBeam4{}, err
	}
	if len(rest) < rawBeam4FixedLen {
		return RawBeam4{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	rb := RawBeam4{
		Header:     hdr,
		SoundSpeed: float64(le.Uint16(rest[0:2])) / ScaleVelocity01,
	}
	txCount := int(le.Uint16(rest[2:4]))
	beamCount := int(le.Uint16(rest[4:6]))
	if txCount > MaxTx {
		return RawBeam4{}, ErrUnintelligible
	}
	body := rest[rawBeam4FixedLen:]
	if len(body) < txCount*txSectorEntryLen {
		return RawBeam4{}, ErrUnintelligible
	}
	rb.TxSectors = make([]TxSectorEntry, txCount)
	for i := 0; i < txCount; i++ {
		s := body[i*txSectorEntryLen : (i+1)*txSectorEntryLen]
		rb.TxSectors[i] = decodeTxSectorEntry(s)
	}
	body = body[txCount*txSectorEntryLen:]
	if len(body) < beamCount*rawBeam4BeamLen {
		return RawBeam4{}, ErrUnintelligible
	}
	rb.Beams = make([]RawBeam4Beam, 0, beamCount)
	for i := 0; i < beamCount; i++ {
		s := body[i*rawBeam4BeamLen : (i+1)*rawBeam4BeamLen]
		rb.Beams = append(rb.Beams, RawBeam4Beam{
			TxSector:      s[0],
			Detection:     DetectionInfo(s[1]),
			Clean:         s[2],
			Quality:       s[3],
			Reflectivity:  float64(int16(le.Uint16(s[4:6]))) / ScaleAmplitude05dB,
			SteeringAngle: float64(int16(le.Uint16(s[6:8]))) / ScaleAngle01Deg,
			RangeSamples:  le.Uint16(s[8:10]),
			RxRangeSec:    float64(le.Uint32(s[10:14])) / ScaleMicroseconds,
		})
	}
	return rb, nil
}

// EncodeRawBeam4 serialises a RawBeam4 back to its payload form.
func EncodeRawBeam4(rb RawBeam4) []byte {
	le := binary.LittleEndian
	out := append(encodePingHeader(rb.Header), make([]byte, rawBeam4FixedLen)...)
	fixed := out[pingHeaderWireLen:]
	le.PutUint16(fixed[0:2], uint16(rb.SoundSpeed*ScaleVelocity01))
	le.PutUint16(fixed[2:4], uint16(len(rb.TxSectors)))
	le.PutUint16(fixed[4:6], uint16(len(rb.Beams)))

	txs := make([]byte, len(rb.TxSectors)*txSectorEntryLen)
	for i, e := range rb.TxSectors {
		encodeTxSectorEntry(txs[i*txSectorEntryLen:(i+1)*txSectorEntryLen], e)
	}
	out = append(out, txs...)

	beams := make([]byte, len(rb.Beams)*rawBeam4BeamLen)
	for i, beam := range rb.Beams {
		s := beams[i*rawBeam4BeamLen : (i+1)*rawBeam4BeamLen]
		s[0] = beam.TxSector
		s[1] = byte(beam.Detection)
		s[2] = beam.Clean
		s[3] = beam.Quality
		le.PutUint16(s[4:6], uint16(int16(beam.Reflectivity*ScaleAmplitude05dB)))
		le.PutUint16(s[6:8], uint16(int16(beam.SteeringAngle*ScaleAngle01Deg)))
		le.PutUint16(s[8:10], beam.RangeSamples)
		le.PutUint32(s[10:14], uint32(beam.RxRangeSec*ScaleMicroseconds))
	}
	return append(out, beams...)
}

// Quality is a decoded Quality (0x4F) sub-record: a per-beam quality
// factor array parallel to a Bath2's beams.
type Quality struct {
	Header PingHeader
	Factor []float64 // dimensionless, 0.01 raw
}

func DecodeQuality(payload []byte, model SonarModel) (Quality, error) {
	hdr, rest, err := decodePingHeader(payload, model)
	if err != nil {
		return Quality{}, err
	}
	le := binary.LittleEndian
	q := Quality{Header: hdr}
	// An odd trailing byte is EncodeRecord's even-length pad, not a factor.
	rest = rest[:len(rest)-len(rest)%2]
	q.Factor = make([]float64, 0, len(rest)/2)
	for i := 0; i+2 <= len(rest); i += 2 {
		q.Factor = append(q.Factor, float64(le.Uint16(rest[i:i+2]))/100.0)
	}
	return q, nil
}

// EncodeQuality serialises a Quality back to its payload form.
func EncodeQuality(q Quality) []byte {
	le := binary.LittleEndian
	out := append(encodePingHeader(q.Header), make([]byte, len(q.Factor)*2)...)
	body := out[pingHeaderWireLen:]
	for i, f := range q.Factor {
		le.PutUint16(body[i*2:i*2+2], uint16(f*100.0))
	}
	return out
}

// SS2Beam is one beam's sidescan sample series within an SS2 sub-record.
type SS2Beam struct {
	SortDirection int8 // -1 port-first, +1 starboard-first
	StartRange    uint16
	CentreSample  uint16
	Samples       []int8 // amplitude series, 0.5 dB raw
}

// SS2 is a decoded SS2 (0x59) sub-record: per-beam sidescan imagery
// sharing a ping with the corresponding Bath2.
type SS2 struct {
	Header       PingHeader
	MeanAbsorption float64 // dB/km, 0.01 raw
	PulseLength  uint16    // microseconds
	Beams        []SS2Beam
}

const ss2FixedLen = 6
const ss2BeamFixedLen = 8

func DecodeSS2(payload []byte, model SonarModel) (SS2, error) {
	hdr, rest, err := decodePingHeader(payload, model)
	if err != nil {
		return SS2{}, err
	}
	if len(rest) < ss2FixedLen {
		return SS2{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	ss := SS2{
		Header:         hdr,
		MeanAbsorption: float64(le.Uint16(rest[0:2])) / 100.0,
		PulseLength:    le.Uint16(rest[2:4]),
	}
	beamCount := int(le.Uint16(rest[4:6]))
	body := rest[ss2FixedLen:]
	ss.Beams = make([]SS2Beam, 0, beamCount)
	off := 0
	for i := 0; i < beamCount; i++ {
		if off+ss2BeamFixedLen > len(body) {
			return SS2{}, ErrUnintelligible
		}
		s := body[off : off+ss2BeamFixedLen]
		n := int(le.Uint16(s[6:8]))
		off += ss2BeamFixedLen
		if off+n > len(body) {
			return SS2{}, ErrUnintelligible
		}
		samples := make([]int8, n)
		for j, b := range body[off : off+n] {
			samples[j] = int8(b)
		}
		off += n
		ss.Beams = append(ss.Beams, SS2Beam{
			SortDirection: int8(s[0]),
			StartRange:    le.Uint16(s[1:3]),
			CentreSample:  le.Uint16(s[3:5]),
			Samples:       samples,
		})
	}
	return ss, nil
}

// EncodeSS2 serialises an SS2 back to its payload form.
func EncodeSS2(ss SS2) []byte {
	le := binary.LittleEndian
	head := encodePingHeader(ss.Header)
	fixed := make([]byte, ss2FixedLen)
	le.PutUint16(fixed[0:2], uint16(ss.MeanAbsorption*100.0))
	le.PutUint16(fixed[2:4], ss.PulseLength)
	le.PutUint16(fixed[4:6], uint16(len(ss.Beams)))

	out := append(head, fixed...)
	for _, beam := range ss.Beams {
		bh := make([]byte, ss2BeamFixedLen)
		bh[0] = byte(beam.SortDirection)
		le.PutUint16(bh[1:3], beam.StartRange)
		le.PutUint16(bh[3:5], beam.CentreSample)
		le.PutUint16(bh[6:8], uint16(len(beam.Samples)))
		out = append(out, bh...)
		for _, samp := range beam.Samples {
			out = append(out, byte(samp))
		}
	}
	return out
}
