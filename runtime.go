package em3

import "encoding/binary"

// RuntimeParameters mirrors the sonar's live operator/processing settings,
// broadcast periodically so a reader can reconstruct acquisition context
// without a separate configuration channel.
type RuntimeParameters struct {
	Date                  uint32
	Msec                  uint32
	PingCounter           uint16
	SerialNumber          uint16
	OperatorStationStatus byte
	ProcessingUnitStatus  byte
	BspStatus             byte
	SonarHeadStatus       byte
	Mode                  byte
	FilterId              byte
	MinDepth              float64 // metres
	MaxDepth              float64 // metres
	AbsorptionCoeff       float64 // dB/km, 0.01 dB/km raw
	TransmitPulseLength   uint16  // microseconds
	TransmitBeamwidth     float64 // degrees, 0.1 deg raw
	ReceiveBeamwidth      float64 // degrees, 0.1 deg raw
	TxPowerReductionDb    byte
	ReceiverBandwidth     uint16 // Hz, 50 Hz raw steps
	RxGain                byte
	TvgLawCrossoverAngle  byte
	SourceOfSoundSpeed    byte
	MaxPortSwathWidth     uint16 // metres
	BeamSpacing           byte
	MaxPortCoverage       byte // degrees
	YawStabilization      byte
	MaxStbdCoverage       byte // degrees
	MaxStbdSwathWidth     uint16
	DurotongSpeed         float64 // m/s, 0.1 raw
	HiLoFreqAbsorption    byte
	TxAlongTilt           float64 // degrees, 0.01 raw, signed
	FilterId2             byte
}

const runtimeParametersWireLen = 48

// DecodeRuntimeParameters decodes a RunParameter (0x52) payload.
func DecodeRuntimeParameters(payload []byte) (RuntimeParameters, error) {
	if len(payload) < runtimeParametersWireLen {
		return RuntimeParameters{}, ErrUnintelligible
	}
	le := binary.LittleEndian
	rp := RuntimeParameters{
		Date:                  le.Uint32(payload[0:4]),
		Msec:                  le.Uint32(payload[4:8]),
		PingCounter:           le.Uint16(payload[8:10]),
		SerialNumber:          le.Uint16(payload[10:12]),
		OperatorStationStatus: payload[12],
		ProcessingUnitStatus:  payload[13],
		BspStatus:             payload[14],
		SonarHeadStatus:       payload[15],
		Mode:                  payload[16],
		FilterId:              payload[17],
		MinDepth:              float64(le.Uint16(payload[18:20])),
		MaxDepth:              float64(le.Uint16(payload[20:22])),
		AbsorptionCoeff:       float64(le.Uint16(payload[22:24])) / 100.0,
		TransmitPulseLength:   le.Uint16(payload[24:26]),
		TransmitBeamwidth:     float64(le.Uint16(payload[26:28])) / 10.0,
		ReceiveBeamwidth:      float64(payload[28]) / 10.0,
		TxPowerReductionDb:    payload[29],
		ReceiverBandwidth:     uint16(payload[30]) * 50,
		RxGain:                payload[31],
		TvgLawCrossoverAngle:  payload[32],
		SourceOfSoundSpeed:    payload[33],
		MaxPortSwathWidth:     le.Uint16(payload[34:36]),
		BeamSpacing:           payload[36],
		MaxPortCoverage:       payload[37],
		YawStabilization:      payload[38],
		MaxStbdCoverage:       payload[39],
		MaxStbdSwathWidth:     le.Uint16(payload[40:42]),
		DurotongSpeed:         float64(le.Uint16(payload[42:44])) / 10.0,
		HiLoFreqAbsorption:    payload[44],
		TxAlongTilt:           float64(int16(le.Uint16(payload[45:47]))) / 100.0,
		FilterId2:             payload[47],
	}
	return rp, nil
}

// EncodeRuntimeParameters serialises RuntimeParameters back to its wire
// representation.
func EncodeRuntimeParameters(rp RuntimeParameters) []byte {
	out := make([]byte, runtimeParametersWireLen)
	le := binary.LittleEndian
	le.PutUint32(out[0:4], rp.Date)
	le.PutUint32(out[4:8], rp.Msec)
	le.PutUint16(out[8:10], rp.PingCounter)
	le.PutUint16(out[10:12], rp.SerialNumber)
	out[12] = rp.OperatorStationStatus
	out[13] = rp.ProcessingUnitStatus
	out[14] = rp.BspStatus
	out[15] = rp.SonarHeadStatus
	out[16] = rp.Mode
	out[17] = rp.FilterId
	le.PutUint16(out[18:20], uint16(rp.MinDepth))
	le.PutUint16(out[20:22], uint16(rp.MaxDepth))
	le.PutUint16(out[22:24], uint16(rp.AbsorptionCoeff*100.0))
	le.PutUint16(out[24:26], rp.TransmitPulseLength)
	le.PutUint16(out[26:28], uint16(rp.TransmitBeamwidth*10.0))
	out[28] = byte(rp.ReceiveBeamwidth * 10.0)
	out[29] = rp.TxPowerReductionDb
	out[30] = byte(rp.ReceiverBandwidth / 50)
	out[31] = rp.RxGain
	out[32] = rp.TvgLawCrossoverAngle
	out[33] = rp.SourceOfSoundSpeed
	le.PutUint16(out[34:36], rp.MaxPortSwathWidth)
	out[36] = rp.BeamSpacing
	out[37] = rp.MaxPortCoverage
	out[38] = rp.YawStabilization
	out[39] = rp.MaxStbdCoverage
	le.PutUint16(out[40:42], rp.MaxStbdSwathWidth)
	le.PutUint16(out[42:44], uint16(rp.DurotongSpeed*10.0))
	out[44] = rp.HiLoFreqAbsorption
	le.PutUint16(out[45:47], uint16(int16(rp.TxAlongTilt*100.0)))
	out[47] = rp.FilterId2
	return out
}
