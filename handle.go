package em3

import "io"

// Options is the closed set of behavioural switches the engine exposes to
// callers.
type Options struct {
	// IgnoreSnippets drops the SS2 requirement from ping completeness, so
	// a ping assembles as soon as Bath2 and RawBeam4 (and Quality, if
	// present) have arrived.
	IgnoreSnippets bool
	// SensorDepthOnly prefers a dedicated depth sensor's Height reading
	// over the geometry stage's own roll/pitch/heave-derived depth.
	SensorDepthOnly bool
	// TimestampChanged is stored on the Options; no stage of the engine
	// reads it, so it has no effect on reading, extraction or InsertPing.
	TimestampChanged bool
}

// Handle is the engine's programmatic surface over one acquisition: open
// a stream, pull completed pings, and extract georeferenced beams from
// them.
type Handle struct {
	stream  Stream
	framer  *Framer
	store   *Store
	merge   *MergeContext
	opts    Options

	installation *Installation
	waterColumn  map[PingKey][]WaterColumnPage
}

// Open constructs a Handle over stream with the given Options.
func Open(stream Stream, opts Options) *Handle {
	return &Handle{
		stream:      stream,
		framer:      NewFramer(stream),
		store:       NewStore(),
		merge:       NewMergeContext(),
		opts:        opts,
		waterColumn: make(map[PingKey][]WaterColumnPage),
	}
}

// Store exposes the accumulated non-ping record history.
func (h *Handle) Store() *Store { return h.store }

// Framer exposes the underlying framer, mainly so callers can report how
// many bytes were skipped resynchronising past bad datagrams.
func (h *Handle) Framer() *Framer { return h.framer }

// assemblerOptions projects Handle's Options onto the narrower set the
// ping assembler needs.
func (h *Handle) assemblerOptions() AssemblerOptions {
	return AssemblerOptions{IgnoreSnippets: h.opts.IgnoreSnippets}
}

// dispatch decodes one datagram's payload and folds it into Store/merge,
// returning the ring slot touched if this was a ping sub-record.
func (h *Handle) dispatch(label Label, payload []byte) (*PingAssembly, error) {
	aopts := h.assemblerOptions()
	switch label.Id {
	case IDStart, IDStop:
		inst, err := DecodeInstallation(label, payload)
		if err != nil {
			return nil, err
		}
		if !inst.IsComment() {
			cp := inst
			h.installation = &cp
		}
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: inst})
		return nil, nil

	case IDStop2: // shares a byte with IDPuId
		if looksLikeASCIIBlock(payload) {
			inst, err := DecodeInstallation(label, payload)
			if err != nil {
				return nil, err
			}
			h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: inst})
			return nil, nil
		}
		id, err := DecodePuId(payload)
		if err != nil {
			return nil, err
		}
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: id})
		return nil, nil

	case IDOff: // shares a byte with IDPuStatus
		if looksLikeASCIIBlock(payload) {
			return nil, ErrCommentOrOther
		}
		status, err := DecodePuStatus(payload)
		if err != nil {
			return nil, err
		}
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: status})
		return nil, nil

	case IDRunParameter:
		rp, err := DecodeRuntimeParameters(payload)
		if err != nil {
			return nil, err
		}
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: rp})
		return nil, nil

	case IDClock:
		c, err := DecodeClock(payload)
		if err != nil {
			return nil, err
		}
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: c})
		return nil, nil

	case IDTide:
		t, err := DecodeTide(payload)
		if err != nil {
			return nil, err
		}
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: t})
		return nil, nil

	case IDHeight:
		hgt, err := DecodeHeight(payload)
		if err != nil {
			return nil, err
		}
		h.merge.FeedHeight(hgt)
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: hgt})
		return nil, nil

	case IDHeading:
		hd, err := DecodeHeading(payload)
		if err != nil {
			return nil, err
		}
		h.merge.FeedHeading(hd)
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: hd})
		return nil, nil

	case IDAttitude, IDNetAttitude:
		a, err := DecodeAttitude(payload, label.Id == IDNetAttitude)
		if err != nil {
			return nil, err
		}
		h.merge.FeedAttitude(a)
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: a})
		return nil, nil

	case IDSSV:
		s, err := DecodeSSV(payload)
		if err != nil {
			return nil, err
		}
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: s})
		return nil, nil

	case IDTilt:
		t, err := DecodeTilt(payload)
		if err != nil {
			return nil, err
		}
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: t})
		return nil, nil

	case IDPosition:
		pf, err := DecodePosition(payload)
		if err != nil {
			return nil, err
		}
		h.merge.FeedPosition(pf)
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: pf})
		return nil, nil

	case IDSVP, IDSVP2:
		sv, err := DecodeSVP(payload, label.Id == IDSVP2)
		if err != nil {
			return nil, err
		}
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: sv})
		return nil, nil

	case IDExtraParams:
		ep, err := DecodeExtraParameters(payload)
		if err != nil {
			return nil, err
		}
		h.store.AppendHistory(Record{Kind: label.Id, Model: label.Model, Value: ep})
		return nil, nil

	case IDBath2:
		b, err := DecodeBath2(payload, label.Model)
		if err != nil {
			return nil, err
		}
		slot := h.store.Ring.Acquire(b.Header.Key)
		slot.AddBath2(b, aopts)
		return slot, nil

	case IDRawBeam4:
		rb, err := DecodeRawBeam4(payload, label.Model)
		if err != nil {
			return nil, err
		}
		slot := h.store.Ring.Acquire(rb.Header.Key)
		slot.AddRawBeam4(rb, aopts)
		return slot, nil

	case IDQuality:
		q, err := DecodeQuality(payload, label.Model)
		if err != nil {
			return nil, err
		}
		slot := h.store.Ring.Acquire(q.Header.Key)
		slot.AddQuality(q, aopts)
		return slot, nil

	case IDSS2:
		ss, err := DecodeSS2(payload, label.Model)
		if err != nil {
			return nil, err
		}
		slot := h.store.Ring.Acquire(ss.Header.Key)
		slot.AddSS2(ss, aopts)
		return slot, nil

	case IDWaterColumn:
		wc, err := DecodeWaterColumnPage(payload, label.Model)
		if err != nil {
			return nil, err
		}
		h.waterColumn[wc.Header.Key] = append(h.waterColumn[wc.Header.Key], wc)
		return nil, nil

	case IDBath, IDRawBeam:
		return nil, ErrUnsupported

	default:
		return nil, ErrUnsupported
	}
}

// ReadPing advances the stream until one ping completes assembly,
// returning it. At the end of the stream it returns the framer's error
// (ErrEndOfStream); a ping still in progress then is not returned.
func (h *Handle) ReadPing() (*Ping, error) {
	for {
		label, payload, err := h.framer.NextRecord()
		if err != nil {
			return nil, err
		}
		slot, derr := h.dispatch(label, payload)
		if derr != nil {
			continue // non-fatal per-record decode failure; keep scanning
		}
		if slot != nil && slot.State == StateComplete {
			return slot.Consume(), nil
		}
	}
}

// Preprocess applies the Options-driven adjustments to a ping before
// extraction: SensorDepthOnly
// substitutes a dedicated depth sensor's Height reading for the
// geometry-derived waterline depth.
func (h *Handle) Preprocess(p *Ping) *Ping {
	if !h.opts.SensorDepthOnly {
		return p
	}
	t := recordEpoch(p.Date, p.Msec)
	if height, ok := h.merge.Height.At(t); ok {
		for i := range p.Beams {
			p.Beams[i].Depth = height + (p.Beams[i].Depth - p.TxTransducerDepth)
		}
	}
	return p
}

// Extract runs the time-series merge and beam geometry stages over a
// completed ping, producing georeferenced beams.
func (h *Handle) Extract(p *Ping) []GeoBeam {
	p = h.Preprocess(p)
	var mount installationMountOffset
	if h.installation != nil {
		head := h.installation.HeadForSerial(p.Key.SerialNumber)
		mount = h.installation.MountOffset(head)
	}
	return ComputeBeamGeometry(p, mount, h.merge)
}

// InsertPing is the encode counterpart to ReadPing: it serialises a Ping
// back into its constituent Bath2/RawBeam4/Quality/SS2 datagrams and
// writes them to w.
func (h *Handle) InsertPing(w io.Writer, p *Ping, polarity Polarity) error {
	bath := Bath2{
		Header: PingHeader{
			Date: p.Date, Msec: p.Msec, Key: p.Key, Model: p.Model,
		},
		SoundSpeed:        p.SoundSpeed,
		TxTransducerDepth: p.TxTransducerDepth,
		Beams:             make([]BathBeam, len(p.Beams)),
	}
	raw := RawBeam4{
		Header:     bath.Header,
		SoundSpeed: p.SoundSpeed,
		Beams:      make([]RawBeam4Beam, len(p.Beams)),
	}
	qual := Quality{Header: bath.Header, Factor: make([]float64, len(p.Beams))}
	ss := SS2{Header: bath.Header, Beams: make([]SS2Beam, len(p.Beams))}

	// Recover one tx-sector table entry per distinct sector number seen
	// across the beams, since MergedBeam only carries the sector's own
	// resolved TxOffsetSec rather than the whole table.
	sectorIndex := make(map[byte]int)
	for _, b := range p.Beams {
		if _, ok := sectorIndex[b.TxSector]; !ok {
			sectorIndex[b.TxSector] = len(raw.TxSectors)
			raw.TxSectors = append(raw.TxSectors, TxSectorEntry{
				Sector:      b.TxSector,
				TxOffsetSec: b.TxOffsetSec,
			})
		}
	}

	for i, b := range p.Beams {
		bath.Beams[i] = b.BathBeam
		raw.Beams[i] = RawBeam4Beam{
			TxSector:      b.TxSector,
			Detection:     b.Detection,
			Clean:         b.Clean,
			Quality:       b.RxQuality,
			Reflectivity:  b.Reflectivity,
			SteeringAngle: b.SteeringAngle,
			RxRangeSec:    b.RxRangeSec,
		}
		qual.Factor[i] = b.QualityValue
		ss.Beams[i] = SS2Beam{
			Samples:      b.Sidescan,
			StartRange:   b.SidescanStart,
			CentreSample: b.SidescanCentre,
		}
	}

	for _, rec := range []struct {
		id      RecordID
		payload []byte
	}{
		{IDBath2, EncodeBath2(bath)},
		{IDRawBeam4, EncodeRawBeam4(raw)},
		{IDQuality, EncodeQuality(qual)},
		{IDSS2, EncodeSS2(ss)},
	} {
		if _, err := w.Write(EncodeRecord(rec.id, p.Model, rec.payload, polarity)); err != nil {
			return err
		}
	}
	return nil
}
