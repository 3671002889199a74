package em3

import "time"

// scalarHistory is a bounded, time-ordered ring of scalar samples with
// linear interpolation between the two samples bracketing a query time
//. Capacity bounds memory use across a long
// acquisition; the oldest sample is dropped once it is exceeded.
type scalarHistory struct {
	capacity int
	times    []time.Time
	values   []float64
}

func newScalarHistory(capacity int) *scalarHistory {
	return &scalarHistory{capacity: capacity}
}

func (h *scalarHistory) Add(t time.Time, v float64) {
	h.times = append(h.times, t)
	h.values = append(h.values, v)
	if len(h.times) > h.capacity {
		h.times = h.times[1:]
		h.values = h.values[1:]
	}
}

// At interpolates the series at time t. Queries before the first sample or
// after the last are clamped to the nearest boundary value rather than
// extrapolated, matching the original driver's behaviour of holding the
// last known reading outside the logged window.
func (h *scalarHistory) At(t time.Time) (float64, bool) {
	n := len(h.times)
	if n == 0 {
		return 0, false
	}
	if n == 1 || !t.After(h.times[0]) {
		return h.values[0], true
	}
	if !t.Before(h.times[n-1]) {
		return h.values[n-1], true
	}
	// find the bracketing pair
	lo := 0
	for lo < n-1 && !h.times[lo+1].After(t) {
		lo++
	}
	for lo < n-2 && h.times[lo+1].Before(t) {
		lo++
	}
	hi := lo + 1
	span := h.times[hi].Sub(h.times[lo])
	if span <= 0 {
		return h.values[lo], true
	}
	frac := float64(t.Sub(h.times[lo])) / float64(span)
	return h.values[lo] + frac*(h.values[hi]-h.values[lo]), true
}

// defaultHistoryCapacity bounds every series tracked by MergeContext.
const defaultHistoryCapacity = 4096

// MergeContext holds the bounded interpolation histories used to merge
// navigation and motion into each ping: one navigation fix series, one
// heading series, one attitude series (roll, pitch, heave) and one
// height series, plus which motion sensor is currently selected as
// authoritative when more than one reports.
type MergeContext struct {
	Latitude  *scalarHistory
	Longitude *scalarHistory
	Heading   *scalarHistory
	Roll      *scalarHistory
	Pitch     *scalarHistory
	Heave     *scalarHistory
	Height    *scalarHistory

	activeAttitudeSensor byte
	sawActiveSensor      bool
}

// NewMergeContext allocates a MergeContext with the default bounded
// capacity on every series.
func NewMergeContext() *MergeContext {
	return &MergeContext{
		Latitude:  newScalarHistory(defaultHistoryCapacity),
		Longitude: newScalarHistory(defaultHistoryCapacity),
		Heading:   newScalarHistory(defaultHistoryCapacity),
		Roll:      newScalarHistory(defaultHistoryCapacity),
		Pitch:     newScalarHistory(defaultHistoryCapacity),
		Heave:     newScalarHistory(defaultHistoryCapacity),
		Height:    newScalarHistory(defaultHistoryCapacity),
	}
}

// FeedPosition folds a navigation fix into the position history.
func (m *MergeContext) FeedPosition(pf PositionFix) {
	t := recordEpoch(pf.Date, pf.Msec)
	m.Latitude.Add(t, pf.Latitude)
	m.Longitude.Add(t, pf.Longitude)
}

// FeedHeading folds a Heading burst's samples into the heading history.
func (m *MergeContext) FeedHeading(h Heading) {
	epoch := recordEpoch(h.Date, h.Msec)
	for _, s := range h.Samples {
		m.Heading.Add(epoch.Add(time.Duration(s.TimeOffsetMs)*time.Millisecond), s.Heading)
	}
}

// FeedHeight folds a Height sample into the height history.
func (m *MergeContext) FeedHeight(h Height) {
	m.Height.Add(recordEpoch(h.Date, h.Msec), h.Height)
}

// FeedAttitude folds an Attitude burst's samples into the attitude
// history, subject to active-sensor selection: once one sensor system has
// been selected active, samples from any other are ignored until the
// active selection changes.
func (m *MergeContext) FeedAttitude(a Attitude) {
	if m.sawActiveSensor && a.SensorSystem != m.activeAttitudeSensor {
		return
	}
	m.activeAttitudeSensor = a.SensorSystem
	m.sawActiveSensor = true
	for _, s := range a.Samples {
		m.Roll.Add(s.Time, s.Roll)
		m.Pitch.Add(s.Time, s.Pitch)
		m.Heave.Add(s.Time, s.Heave)
		// Attitude records also carry their own heading; feed it too so a
		// system without a separate Heading datagram still interpolates.
		m.Heading.Add(s.Time, s.Heading)
	}
}

// SetActiveAttitudeSensor forces which SensorSystem id is authoritative,
// discarding the "first seen wins" default (used when a PuStatus or
// ExtraParameters record reports an operator-driven sensor switch).
func (m *MergeContext) SetActiveAttitudeSensor(id byte) {
	m.activeAttitudeSensor = id
	m.sawActiveSensor = true
}

// Attitude interpolates roll, pitch and heave at t.
func (m *MergeContext) Attitude(t time.Time) (roll, pitch, heave float64, ok bool) {
	r, ok1 := m.Roll.At(t)
	p, ok2 := m.Pitch.At(t)
	hv, ok3 := m.Heave.At(t)
	return r, p, hv, ok1 && ok2 && ok3
}

// Position interpolates latitude/longitude at t.
func (m *MergeContext) Position(t time.Time) (lat, lon float64, ok bool) {
	la, ok1 := m.Latitude.At(t)
	lo, ok2 := m.Longitude.At(t)
	return la, lo, ok1 && ok2
}

// beamTime computes the absolute tx and rx instants for one beam:
// t_tx = t_ping + tx_offset[rx_sector[i]], t_rx = t_tx + rx_range[i].
func beamTime(pingEpoch time.Time, txOffsetSec, rxRangeSec float64) (tx, rx time.Time) {
	tx = pingEpoch.Add(time.Duration(txOffsetSec * float64(time.Second)))
	rx = tx.Add(time.Duration(rxRangeSec * float64(time.Second)))
	return tx, rx
}
