package em3

// MergedBeam is one beam after the assembler folds together its Bath2,
// RawBeam4, Quality and SS2 contributions.
type MergedBeam struct {
	BathBeam
	Reflectivity  float64
	QualityValue  float64
	RxQuality     byte    // rx_quality, RawBeam4's own per-beam quality byte
	TxOffsetSec   float64 // seconds from ping time, via the beam's tx sector — tx_offset[rx_sector[i]]
	RxRangeSec    float64 // seconds, two-way travel time — rx_range[i]
	Sidescan      []int8
	SidescanStart uint16 // rx sample offset the snippet begins at
	SidescanCentre uint16 // sample index corresponding to the bottom detection
	Flag          BeamFlag
}

// Ping is the product of assembling one swath's worth of sub-records: a
// single PingKey's Bath2/RawBeam4/Quality/SS2 merged beam-by-beam. It is
// still sonar-relative; the merge and geometry stages (merge.go,
// geometry.go) turn it into georeferenced output.
type Ping struct {
	Key               PingKey
	Model             SonarModel
	Date              uint32
	Msec              uint32
	SoundSpeed        float64
	TxTransducerDepth float64
	Beams             []MergedBeam
}

// AssemblerOptions controls which completeness predicate a PingAssembly
// uses.
type AssemblerOptions struct {
	IgnoreSnippets bool
}

// PingAssembly is one ring slot's state machine: NoData -> Partial ->
// Complete -> NoData.
type PingAssembly struct {
	Key   PingKey
	State AssemblyState
	Model SonarModel

	bath *Bath2
	raw  *RawBeam4
	qual *Quality
	ss   *SS2

	Merged *Ping // set once State == StateComplete
}

func newPingAssembly(key PingKey) *PingAssembly {
	return &PingAssembly{Key: key, State: StateNoData}
}

// AddBath2 folds a Bath2 sub-record into this assembly.
func (pa *PingAssembly) AddBath2(b Bath2, opts AssemblerOptions) {
	pa.bath = &b
	pa.Model = b.Header.Model
	pa.advance(opts)
}

// AddRawBeam4 folds a RawBeam4 sub-record into this assembly.
func (pa *PingAssembly) AddRawBeam4(rb RawBeam4, opts AssemblerOptions) {
	pa.raw = &rb
	pa.advance(opts)
}

// AddQuality folds a Quality sub-record into this assembly.
func (pa *PingAssembly) AddQuality(q Quality, opts AssemblerOptions) {
	pa.qual = &q
	pa.advance(opts)
}

// AddSS2 folds an SS2 sub-record into this assembly.
func (pa *PingAssembly) AddSS2(ss SS2, opts AssemblerOptions) {
	pa.ss = &ss
	pa.advance(opts)
}

func (pa *PingAssembly) advance(opts AssemblerOptions) {
	if pa.State == StateNoData {
		pa.State = StatePartial
	}
	if !pa.isComplete(opts) {
		return
	}
	pa.Merged = pa.merge()
	pa.State = StateComplete
}

// isComplete applies the three completeness predicates: the M3 sensor and
// the IgnoreSnippets option both need Bath2 and RawBeam4 at matching
// counts, while the default case needs Bath2 and SS2 at matching counts.
// Quality is always optional and never part of the predicate.
func (pa *PingAssembly) isComplete(opts AssemblerOptions) bool {
	switch {
	case pa.Model == ModelM3, opts.IgnoreSnippets:
		return pa.bath != nil && pa.raw != nil && pa.bath.Header.Key.Count == pa.raw.Header.Key.Count
	default:
		return pa.bath != nil && pa.ss != nil && pa.bath.Header.Key.Count == pa.ss.Header.Key.Count
	}
}

func (pa *PingAssembly) merge() *Ping {
	n := len(pa.bath.Beams)
	beams := make([]MergedBeam, n)
	for i := 0; i < n; i++ {
		mb := MergedBeam{BathBeam: pa.bath.Beams[i]}
		if pa.raw != nil && i < len(pa.raw.Beams) {
			rbeam := pa.raw.Beams[i]
			mb.BathBeam.Detection = rbeam.Detection
			mb.BathBeam.Clean = rbeam.Clean
			mb.Reflectivity = rbeam.Reflectivity
			mb.RxQuality = rbeam.Quality
			mb.RxRangeSec = rbeam.RxRangeSec
			if int(rbeam.TxSector) < len(pa.raw.TxSectors) {
				mb.TxOffsetSec = pa.raw.TxSectors[rbeam.TxSector].TxOffsetSec
			}
		}
		if pa.qual != nil && i < len(pa.qual.Factor) {
			mb.QualityValue = pa.qual.Factor[i]
		}
		if pa.ss != nil && i < len(pa.ss.Beams) {
			sb := pa.ss.Beams[i]
			mb.Sidescan = sb.Samples
			mb.SidescanStart = sb.StartRange
			mb.SidescanCentre = sb.CentreSample
		}
		mb.Flag, mb.BathBeam.Detection = deriveBeamFlag(pa.Model, mb.BathBeam.Depth, mb.BathBeam.AcrossTrack, mb.BathBeam.AlongTrack, mb.BathBeam.Detection, mb.BathBeam.Clean)
		beams[i] = mb
	}
	return &Ping{
		Key:               pa.Key,
		Model:             pa.Model,
		Date:              pa.bath.Header.Date,
		Msec:              pa.bath.Header.Msec,
		SoundSpeed:        pa.bath.SoundSpeed,
		TxTransducerDepth: pa.bath.TxTransducerDepth,
		Beams:             beams,
	}
}

// Consume returns the completed Ping and resets the slot to NoData so the
// ring can reuse it, matching the Complete -> NoData leg of the state
// machine.
func (pa *PingAssembly) Consume() *Ping {
	p := pa.Merged
	pa.bath, pa.raw, pa.qual, pa.ss = nil, nil, nil, nil
	pa.Merged = nil
	pa.State = StateNoData
	return p
}
