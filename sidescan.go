package em3

import (
	"math"
	"sort"

	"github.com/samber/lo"
)

// SidescanPixels is the fixed across-track bin count every ping's
// sidescan samples are regridded into.
const SidescanPixels = 1024

// sidescanSmoothingWeight is how much a new ping's computed pixel_size_m
// contributes to the running value versus the accumulated history.
const sidescanSmoothingWeight = 0.05

// defaultBeamwidthDeg is the sonar-specific fallback (matching the
// EM1000 default) used when no runtime tx_beamwidth is available.
const defaultBeamwidthDeg = 2.5

// defaultMaxInterpolationGap bounds pixel_int interpolation: runs of up to
// defaultMaxInterpolationGap+1 consecutive empty pixels are bridged.
const defaultMaxInterpolationGap = 10

// swathMarginDeg is added to the outermost beam depression when deriving
// swath_width_deg from the beam fan itself.
const swathMarginDeg = 2.5

// defaultSampleRateHz is the fallback receiver sample rate (matching the
// EM1000 default) used when no runtime sample rate is available.
const defaultSampleRateHz = 14000.0

// SidescanOptions carries the regridder's inputs beyond the ping and its
// geometry: the sonar's sample rate, its beamwidth, and the operator's
// swath-width overrides.
type SidescanOptions struct {
	SampleRateHz  float64 // Hz; ss_spacing = 750/SampleRateHz
	BeamwidthDeg  float64 // tx_beamwidth; falls back to defaultBeamwidthDeg when <= 0
	SwathWidthDeg float64 // runtime override; <= 0 derives it from the beam fan
	MaxSwathDeg   float64 // runtime clamp; <= 0 means unclamped
}

// SidescanRow is one ping's regridded, across-track binned sidescan
// imagery: amplitude and along-track offset per pixel, plus the pixel
// size this row was gridded at (so AcrossTrack can report coordinates and
// the next ping can smooth against it).
type SidescanRow struct {
	Pixels     [SidescanPixels]float64
	AlongTrack [SidescanPixels]float64
	Valid      [SidescanPixels]bool
	PixelSizeM float64
}

// AcrossTrack reports pixel i's across-track coordinate, centered on
// nadir at pixel 512.
func (row SidescanRow) AcrossTrack(i int) float64 {
	return float64(i-512) * row.PixelSizeM
}

func median(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// RegridSidescan bins a merged ping's per-beam sidescan samples into
// SidescanPixels across-track bins of a pixel_size_m derived from swath
// width and median depth, correcting each sample's across-track placement
// for incidence angle, and smooths pixel_size_m 5% per ping to reduce
// jitter. prev may be nil for the first ping of an acquisition.
func RegridSidescan(ping *Ping, geo []GeoBeam, opts SidescanOptions, prev *SidescanRow) SidescanRow {
	var row SidescanRow

	beamwidthDeg := opts.BeamwidthDeg
	if beamwidthDeg <= 0 {
		beamwidthDeg = defaultBeamwidthDeg
	}
	beamwidthRad := beamwidthDeg * math.Pi / 180

	var depths []float64
	outerDepression := 90.0
	for i, b := range ping.Beams {
		if len(b.Sidescan) == 0 || i >= len(geo) || !geo[i].Flag.Usable() {
			continue
		}
		depths = append(depths, b.Depth)
		dev := math.Abs(90 - geo[i].DepressionDeg)
		if dev > math.Abs(90-outerDepression) {
			outerDepression = geo[i].DepressionDeg
		}
	}
	if len(depths) == 0 {
		if prev != nil {
			return *prev
		}
		return row
	}
	medianDepth := median(depths)
	if medianDepth <= 0 {
		medianDepth = 1
	}

	swathWidthDeg := opts.SwathWidthDeg
	if swathWidthDeg <= 0 {
		swathWidthDeg = math.Abs(90-outerDepression)*2 + swathMarginDeg
	}
	if opts.MaxSwathDeg > 0 && swathWidthDeg > opts.MaxSwathDeg {
		swathWidthDeg = opts.MaxSwathDeg
	}
	swathWidthRad := swathWidthDeg * math.Pi / 180

	pixelSize := 2 * math.Tan(swathWidthRad) * medianDepth / SidescanPixels
	minPixel := medianDepth * math.Sin(0.1*math.Pi/180)
	if pixelSize < minPixel {
		pixelSize = minPixel
	}
	if prev != nil && prev.PixelSizeM > 0 {
		pixelSize = prev.PixelSizeM*(1-sidescanSmoothingWeight) + pixelSize*sidescanSmoothingWeight
	}
	row.PixelSizeM = pixelSize

	sampleRateHz := opts.SampleRateHz
	if sampleRateHz <= 0 {
		sampleRateHz = defaultSampleRateHz
	}
	ssSpacing := 750.0 / sampleRateHz

	ampBins := make([][]float64, SidescanPixels)
	alongBins := make([][]float64, SidescanPixels)

	for i, b := range ping.Beams {
		if len(b.Sidescan) == 0 || i >= len(geo) || !geo[i].Flag.Usable() {
			continue
		}
		n := len(b.Sidescan)
		slantRange := math.Sqrt(b.Depth*b.Depth + b.AcrossTrack*b.AcrossTrack + b.AlongTrack*b.AlongTrack)
		angle := (90 - geo[i].DepressionDeg) * math.Pi / 180
		cosAngle := math.Cos(angle)
		if math.Abs(cosAngle) < 1e-6 {
			cosAngle = 1e-6
		}
		foot := slantRange * math.Sin(beamwidthRad) / cosAngle
		footPerSample := foot / float64(n)
		center := int(b.SidescanCentre)

		for k, s := range b.Sidescan {
			sint := k + 1
			var spacingUse float64
			if float64(sint) < float64(n)*ssSpacing/foot {
				spacingUse = footPerSample
			} else {
				spacingUse = ssSpacing / float64(sint)
			}
			xtrack := b.AcrossTrack + spacingUse*float64(k-center)

			px := int(xtrack/pixelSize) + SidescanPixels/2
			if px < 0 || px >= SidescanPixels {
				continue
			}
			ampBins[px] = append(ampBins[px], float64(s)/ScaleAmplitude05dB)
			alongBins[px] = append(alongBins[px], b.AlongTrack)
		}
	}

	for i := 0; i < SidescanPixels; i++ {
		if len(ampBins[i]) == 0 {
			continue
		}
		row.Pixels[i] = lo.Mean(ampBins[i])
		row.AlongTrack[i] = lo.Mean(alongBins[i])
		row.Valid[i] = true
	}

	interpolateGaps(&row, defaultMaxInterpolationGap)
	return row
}

// interpolateGaps linearly fills empty pixel runs bounded by two valid
// pixels, as long as the run is no longer than maxGap+1 pixels.
func interpolateGaps(row *SidescanRow, maxGap int) {
	i := 0
	for i < SidescanPixels {
		if row.Valid[i] {
			i++
			continue
		}
		start := i
		for i < SidescanPixels && !row.Valid[i] {
			i++
		}
		gapLen := i - start
		if start == 0 || i == SidescanPixels || gapLen > maxGap+1 {
			continue
		}
		left, right := start-1, i
		span := float64(right - left)
		for j := start; j < right; j++ {
			frac := float64(j-left) / span
			row.Pixels[j] = row.Pixels[left] + frac*(row.Pixels[right]-row.Pixels[left])
			row.AlongTrack[j] = row.AlongTrack[left] + frac*(row.AlongTrack[right]-row.AlongTrack[left])
			row.Valid[j] = true
		}
	}
}
