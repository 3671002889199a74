package em3

import "github.com/samber/lo"

// RecordID identifies a top level datagram as it appears on the wire
// (the byte following the 0x02 start code).
type RecordID uint8

// SonarModel is the two byte model field carried in every datagram label.
// Its value also participates in endian detection (frame.go).
type SonarModel uint16

// Datagram ids recognised by the core. An id not listed here fails label
// validation, and the framer resyncs past it byte by byte.
const (
	IDStop2        RecordID = 0x30 // shares byte with IDPuId; disambiguated by payload shape (handle.go)
	IDPuId         RecordID = 0x30
	IDOff          RecordID = 0x31
	IDPuStatus     RecordID = 0x31 // shares byte with IDOff; disambiguated by payload shape (handle.go)
	IDOn           RecordID = 0x32
	IDExtraParams  RecordID = 0x33
	IDAttitude     RecordID = 0x41
	IDClock        RecordID = 0x43
	IDBath         RecordID = 0x44 // legacy, length-skipped
	IDRawBeam      RecordID = 0x46 // legacy, length-skipped
	IDSSV          RecordID = 0x47
	IDHeading      RecordID = 0x48
	IDStart        RecordID = 0x49
	IDTilt         RecordID = 0x4A
	IDRawBeam4     RecordID = 0x4E
	IDPosition     RecordID = 0x50
	IDRunParameter RecordID = 0x52
	IDTide         RecordID = 0x54
	IDSVP2         RecordID = 0x55
	IDSVP          RecordID = 0x56
	IDBath2        RecordID = 0x58
	IDSS2          RecordID = 0x59
	IDHeight       RecordID = 0x68
	IDStop         RecordID = 0x69
	IDWaterColumn  RecordID = 0x6B
	IDNetAttitude  RecordID = 0x6E
	IDBath3MBA     RecordID = 0xE5
	IDSS2MBA       RecordID = 0xE4
	IDQuality      RecordID = 0x4F // vendor quality-factor sub-record id used inside Bath2/RawBeam4 pings
)

// RecordNames labels every recognised datagram id for logging/QA.
var RecordNames = map[RecordID]string{
	IDStop2:        "STOP2_OR_PU_ID",
	IDOff:          "OFF_OR_PU_STATUS",
	IDOn:           "ON",
	IDExtraParams:  "EXTRA_PARAMETERS",
	IDAttitude:     "ATTITUDE",
	IDClock:        "CLOCK",
	IDBath:         "BATH_LEGACY",
	IDRawBeam:      "RAWBEAM_LEGACY",
	IDSSV:          "SSV",
	IDHeading:      "HEADING",
	IDStart:        "START",
	IDTilt:         "TILT",
	IDRawBeam4:     "RAWBEAM4",
	IDPosition:     "POSITION",
	IDRunParameter: "RUNTIME_PARAMETERS",
	IDTide:         "TIDE",
	IDSVP2:         "SVP2",
	IDSVP:          "SVP",
	IDBath2:        "BATH2",
	IDSS2:          "SS2",
	IDHeight:       "HEIGHT",
	IDStop:         "STOP",
	IDWaterColumn:  "WATER_COLUMN",
	IDNetAttitude:  "NETWORK_ATTITUDE",
	IDBath3MBA:     "BATH3_MBA",
	IDSS2MBA:       "SS2_MBA",
	IDQuality:      "QUALITY",
}

// InvRecordNames supports name->id lookups (e.g. schema reporting, CLI flags).
var InvRecordNames = lo.Invert(RecordNames)

// Recognised sonar models (subset of the EM3-series/Kongsberg-Simrad
// family this engine targets).
const (
	ModelEM122  SonarModel = 122
	ModelEM302  SonarModel = 302
	ModelEM710  SonarModel = 710
	ModelEM712  SonarModel = 712
	ModelEM2040 SonarModel = 2040
	ModelEM3002 SonarModel = 3002
	ModelM3     SonarModel = 3000 // handheld M3; treated distinctly by the ping assembler (section 4.5)
)

var knownModels = map[SonarModel]bool{
	ModelEM122: true, ModelEM302: true, ModelEM710: true, ModelEM712: true,
	ModelEM2040: true, ModelEM3002: true, ModelM3: true,
}

// Envelope constants.
const (
	StartCode byte = 0x02
	StopCode  byte = 0x03
)

// Physical limits.
const (
	MaxBeams int = 512
	MaxTx    int = 19
)

// Scale factors used throughout the decoders/encoders. Named rather than
// inlined so they read the same way at every call site.
const (
	ScaleAngle01Deg    float64 = 100.0     // 0.01 deg
	ScaleVelocity01    float64 = 10.0      // 0.1 m/s
	ScaleAmplitude05dB float64 = 2.0       // 0.5 dB -> raw units are *2
	ScaleLatLon        float64 = 2.0e7     // lat
	ScaleLon           float64 = 1.0e7     // lon
	ScaleHeave01       float64 = 100.0     // 0.01 m (signed)
	ScaleDepth001      float64 = 100.0     // 0.01 m
	ScaleSampleRate01  float64 = 1.0       // Hz, whole-Hz raw
	ScaleMicroseconds  float64 = 1.0e6     // seconds -> microseconds raw
	ScaleFreqHz        float64 = 1.0       // Hz, whole-Hz raw
)

// InvalidPosition32 is the sentinel written in place of a lat/lon field
// when the sonar has no fix.
const InvalidPosition32 int32 = 0x7FFFFFFF

// BeamFlag is the derived per-beam usability classification.
type BeamFlag uint8

const (
	FlagNone        BeamFlag = 0
	FlagFlag        BeamFlag = 1 << 0
	FlagNull        BeamFlag = 1 << 1
	FlagSonar       BeamFlag = 1 << 2
	FlagInterpolate BeamFlag = 1 << 3
)

// AssemblyState is the lifecycle of a ping ring slot.
type AssemblyState uint8

const (
	StateNoData AssemblyState = iota
	StatePartial
	StateComplete
)

func (s AssemblyState) String() string {
	switch s {
	case StateNoData:
		return "NoData"
	case StatePartial:
		return "Partial"
	case StateComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// NumPingStructures is the minimum number of concurrently assembling
// pings the ring must hold.
const NumPingStructures = 4
