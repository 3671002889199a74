package em3

import "math"

// Set reports whether every bit in mask is set.
func (f BeamFlag) Set(mask BeamFlag) bool { return f&mask == mask }

// WithSet returns f with mask's bits set.
func (f BeamFlag) WithSet(mask BeamFlag) BeamFlag { return f | mask }

// Usable reports whether a beam carrying this flag should participate in
// downstream processing (no rejection bit set at all).
func (f BeamFlag) Usable() bool { return f == FlagNone }

// rxDetectionNibble maps the low nibble of an rx_detection byte, once its
// top bit has marked it meaningful, to the flag it produces. A nibble not
// present here contributes no flag.
var rxDetectionNibble = map[DetectionInfo]BeamFlag{
	0x0: FlagFlag | FlagSonar,
	0x1: FlagFlag | FlagInterpolate,
	0x2: FlagFlag | FlagInterpolate,
	0x3: FlagFlag | FlagSonar,
	0x4: FlagNull,
}

// deriveBeamFlag classifies a single beam in strict precedence order: the
// M3 sensor's own high-bit special case first, then the general
// rx_detection nibble table, then the sonar's real-time "clean"
// rejection, then the default of no flag at all, and finally a NaN
// position override that always wins regardless of what came before. It
// also returns detection with bit 7 forced set when the M3 case fires, as
// the M3 special case requires for output.
func deriveBeamFlag(model SonarModel, depth, acrossTrack, alongTrack float64, detection DetectionInfo, clean byte) (BeamFlag, DetectionInfo) {
	var flag BeamFlag

	switch {
	case model == ModelM3 && detection&0x80 != 0:
		flag = FlagNull
		detection |= 0x80
	case detection&0x80 != 0:
		flag = rxDetectionNibble[detection&0x0F]
	case clean != 0:
		flag = FlagFlag | FlagSonar
	default:
		flag = FlagNone
	}

	if math.IsNaN(depth) || math.IsNaN(acrossTrack) || math.IsNaN(alongTrack) {
		// A NaN position always means the beam is unusable, regardless of
		// how the sonar itself classified the detection.
		flag = FlagNull
	}

	return flag, detection
}
