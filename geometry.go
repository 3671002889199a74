package em3

import (
	"math"
	"strconv"
)

const earthRadiusMeters = 6371000.0

// InstallationGeometry selects which transducer mount offsets apply to a
// given ping, following the original driver's par_stc transducer
// configuration table: a sonar head can be mounted alone, as a fixed
// pair, or as a pair whose individual offsets still matter per-head.
type InstallationGeometry int

const (
	GeometrySingleHead InstallationGeometry = iota
	GeometryDualHeadFixed
	GeometryDualHeadVariable
)

// SelectGeometry resolves the configuration recorded in an Installation's
// "STC" field (transducer configuration), defaulting to a single head when
// absent or unrecognised.
func (in Installation) SelectGeometry() InstallationGeometry {
	v, ok := in.Get("STC")
	if !ok {
		return GeometrySingleHead
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return GeometrySingleHead
	}
	switch n {
	case 1, 2:
		return GeometryDualHeadFixed
	case 3, 4:
		return GeometryDualHeadVariable
	default:
		return GeometrySingleHead
	}
}

// HeadForSerial reports which transducer head (1 or 2) owns a given ping:
// 2 when the ping's serial number equals the "S2S" field recorded at
// installation time, 1 otherwise.
func (in Installation) HeadForSerial(serial uint16) int {
	if v, ok := in.Get("S2S"); ok {
		if n, err := strconv.Atoi(v); err == nil && uint16(n) == serial {
			return 2
		}
	}
	return 1
}

// vec3 is a transducer-frame offset: X forward (along-track), Y
// starboard (across-track), Z down.
type vec3 struct{ X, Y, Z float64 }

// rotateRollPitch composes pitch (about the across-track axis) then roll
// (about the along-track axis), the order the original driver applies
// vessel motion compensation in.
func rotateRollPitch(v vec3, rollDeg, pitchDeg float64) vec3 {
	pitch := pitchDeg * math.Pi / 180
	cx, sx := math.Cos(pitch), math.Sin(pitch)
	x1 := v.X*cx + v.Z*sx
	z1 := -v.X*sx + v.Z*cx
	y1 := v.Y

	roll := rollDeg * math.Pi / 180
	cr, sr := math.Cos(roll), math.Sin(roll)
	y2 := y1*cr - z1*sr
	z2 := y1*sr + z1*cr
	return vec3{X: x1, Y: y2, Z: z2}
}

// reverseMountAdjust applies the original driver's reverse-mount
// correction: when the vessel heading puts the sonar effectively mounted
// backwards (heading strictly between 90 and 270 degrees), the mount's
// own heading offset is rotated 180 degrees and
// its roll/pitch offsets and any per-beam steering angle are negated.
func reverseMountAdjust(vesselHeading float64, mount installationMountOffset) (installationMountOffset, bool) {
	reversed := vesselHeading > 90 && vesselHeading < 270
	if !reversed {
		return mount, false
	}
	mount.Heading -= 180
	mount.Roll = -mount.Roll
	mount.Pitch = -mount.Pitch
	return mount, true
}

// GeoBeam is one beam after beam geometry is computed: a georeferenced
// position, its ray-geometry depression/azimuth and beam-time heave
// correction, plus its final usability flag.
type GeoBeam struct {
	Latitude  float64
	Longitude float64
	Depth     float64 // metres, positive down, datum-referenced

	DepressionDeg float64 // degrees, 90 at nadir, 0 at the horizon
	AzimuthDeg    float64 // degrees, [0,360), relative to vessel heading at ping time
	BeamHeaveM    float64 // metres, mean(tx_heave, rx_heave) - ping_heave

	Flag BeamFlag
}

// rayGeometry composes the steered beam direction with vessel roll and
// pitch, equivalent to the Beaudoin et al. 2004 ray-geometry composition,
// and reports the combined depression and azimuth of the resulting ray
// relative to the ship's own forward/across-track frame.
func rayGeometry(local vec3, rollDeg, pitchDeg float64) (depressionDeg, azimuthDeg float64) {
	norm := math.Sqrt(local.X*local.X + local.Y*local.Y + local.Z*local.Z)
	if norm == 0 {
		return 90, 90
	}
	dir := rotateRollPitch(local, rollDeg, pitchDeg)
	beamDepressionOut := math.Acos(dir.Z/norm) * 180 / math.Pi
	beamAzimuthOut := math.Atan2(dir.Y, dir.X) * 180 / math.Pi

	depressionDeg = 90 - beamDepressionOut
	azimuthDeg = math.Mod(90+beamAzimuthOut, 360)
	if azimuthDeg < 0 {
		azimuthDeg += 360
	}
	return depressionDeg, azimuthDeg
}

// ComputeBeamGeometry turns a merged Ping into georeferenced beams, by
// composing the transducer mount offset with vessel attitude and
// position interpolated at the ping's own time, and per beam at its own
// tx/rx instants.
func ComputeBeamGeometry(ping *Ping, mount installationMountOffset, merge *MergeContext) []GeoBeam {
	pingEpoch := recordEpoch(ping.Date, ping.Msec)
	vesselLat, vesselLon, haveFix := merge.Position(pingEpoch)
	vesselRoll, vesselPitch, vesselHeave, haveAttitude := merge.Attitude(pingEpoch)
	vesselHeading, haveHeading := merge.Heading.At(pingEpoch)

	out := make([]GeoBeam, len(ping.Beams))
	mnt, reversed := reverseMountAdjust(vesselHeading, mount)

	for i, b := range ping.Beams {
		steer := b.SteeringAngle
		if reversed {
			steer = -steer
		}
		_ = steer // retained on the beam record; geometry itself uses across/along track directly

		txTime, rxTime := beamTime(pingEpoch, b.TxOffsetSec, b.RxRangeSec)
		txRoll, txPitch, txHeave, txOk := merge.Attitude(txTime)
		rxRoll, rxPitch, rxHeave, rxOk := merge.Attitude(rxTime)
		roll, pitch := vesselRoll, vesselPitch
		if txOk && rxOk {
			roll = (txRoll + rxRoll) / 2
			pitch = (txPitch + rxPitch) / 2
		}

		local := vec3{X: b.AlongTrack, Y: b.AcrossTrack, Z: b.Depth}
		rotated := rotateRollPitch(local, roll+mnt.Roll, pitch+mnt.Pitch)
		rotated.X += mnt.X
		rotated.Y += mnt.Y
		rotated.Z += mnt.Z - mnt.WaterlineZ + vesselHeave

		heading := vesselHeading + mnt.Heading
		hr := heading * math.Pi / 180
		east := rotated.X*math.Sin(hr) + rotated.Y*math.Cos(hr)
		north := rotated.X*math.Cos(hr) - rotated.Y*math.Sin(hr)

		depressionDeg, azimuthDeg := rayGeometry(local, roll+mnt.Roll, pitch+mnt.Pitch)
		var beamHeave float64
		if txOk && rxOk {
			beamHeave = (txHeave+rxHeave)/2 - vesselHeave
		}

		flag := b.Flag
		if !haveFix || !haveAttitude || !haveHeading {
			flag = flag.WithSet(FlagInterpolate)
		}

		lat := vesselLat + (north/earthRadiusMeters)*180/math.Pi
		lon := vesselLon + (east/(earthRadiusMeters*math.Cos(vesselLat*math.Pi/180)))*180/math.Pi

		out[i] = GeoBeam{
			Latitude:      lat,
			Longitude:     lon,
			Depth:         rotated.Z,
			DepressionDeg: depressionDeg,
			AzimuthDeg:    azimuthDeg,
			BeamHeaveM:    beamHeave,
			Flag:          flag,
		}
	}
	return out
}
