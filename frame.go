package em3

import (
	"encoding/binary"
	"errors"
	"io"
	"log"
)

// Polarity is the endianness of a stream's integer fields, resolved once
// and frozen for the stream's lifetime.
type Polarity uint8

const (
	PolarityUnknown Polarity = iota
	PolarityNative            // on-wire little-endian, as documented (section 6.4)
	PolaritySwapped
)

// Label is the validated 4-byte id/model pair preceding every datagram's
// payload, plus the byte offset the payload starts at.
type Label struct {
	Id        RecordID
	Model     SonarModel
	ByteIndex int64
}

// Framer scans a Stream for self-delimited datagrams, resolving byte order
// on the fly and resyncing past corruption.
type Framer struct {
	stream       Stream
	polarity     Polarity
	skipped      uint64
	warnedSkip   bool
	warnedBroken bool
}

// NewFramer constructs a Framer with unresolved endianness over stream.
func NewFramer(stream Stream) *Framer {
	return &Framer{stream: stream, polarity: PolarityUnknown}
}

// Skipped reports the total bytes discarded by resync across the stream's
// lifetime.
func (fr *Framer) Skipped() uint64 { return fr.skipped }

// Polarity reports the resolved byte order, or PolarityUnknown if no label
// has been validated yet.
func (fr *Framer) Polarity() Polarity { return fr.polarity }

func decodeU32(b []byte, p Polarity) uint32 {
	if p == PolaritySwapped {
		return binary.BigEndian.Uint32(b)
	}
	return binary.LittleEndian.Uint32(b)
}

func decodeU16(b []byte, p Polarity) uint16 {
	if p == PolaritySwapped {
		return binary.BigEndian.Uint16(b)
	}
	return binary.LittleEndian.Uint16(b)
}

func encodeU32(v uint32, p Polarity) []byte {
	b := make([]byte, 4)
	if p == PolaritySwapped {
		binary.BigEndian.PutUint32(b, v)
	} else {
		binary.LittleEndian.PutUint32(b, v)
	}
	return b
}

func encodeU16(v uint16, p Polarity) []byte {
	b := make([]byte, 2)
	if p == PolaritySwapped {
		binary.BigEndian.PutUint16(b, v)
	} else {
		binary.LittleEndian.PutUint16(b, v)
	}
	return b
}

// validateLabel inspects an 8 byte window (4 length bytes + start/id/model)
// and reports whether it looks like a genuine datagram label. When the
// stream's polarity is still unresolved it also reports whether the model
// field is unambiguous evidence of one particular polarity.
func validateLabel(window []byte, known Polarity) (valid bool, polarity Polarity, ambiguous bool) {
	if len(window) != 8 {
		return false, known, false
	}
	if window[4] != StartCode {
		return false, known, false
	}
	id := RecordID(window[5])
	if _, ok := RecordNames[id]; !ok {
		return false, known, false
	}

	if known != PolarityUnknown {
		model := SonarModel(decodeU16(window[6:8], known))
		return knownModels[model], known, false
	}

	modelNative := SonarModel(binary.LittleEndian.Uint16(window[6:8]))
	modelSwapped := SonarModel(binary.BigEndian.Uint16(window[6:8]))
	nativeOk := knownModels[modelNative]
	swappedOk := knownModels[modelSwapped]

	switch {
	case nativeOk && !swappedOk:
		return true, PolarityNative, false
	case swappedOk && !nativeOk:
		return true, PolaritySwapped, false
	case nativeOk && swappedOk:
		// Both interpretations happen to name a known model; the label is
		// structurally plausible but doesn't pin down polarity yet.
		return true, PolarityNative, true
	default:
		return false, known, false
	}
}

// NextRecord locates the next datagram boundary, resolving endianness if
// not already frozen, and returns its label plus payload bytes (the bytes
// between the model field and the stop/checksum trailer).
func (fr *Framer) NextRecord() (Label, []byte, error) {
	window := make([]byte, 8)
	n, err := io.ReadFull(fr.stream, window)
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return Label{}, nil, ErrEndOfStream
		}
		return Label{}, nil, errors.Join(ErrIo, err)
	}

	var (
		valid     bool
		polarity  Polarity
		ambiguous bool
		skipped   uint64
	)
	for {
		valid, polarity, ambiguous = validateLabel(window, fr.polarity)
		if valid {
			break
		}
		next := make([]byte, 1)
		if _, err := io.ReadFull(fr.stream, next); err != nil {
			return Label{}, nil, errors.Join(ErrIo, ErrBadDatagram, err)
		}
		copy(window[0:7], window[1:8])
		window[7] = next[0]
		skipped++
	}

	if skipped > 0 {
		fr.skipped += skipped
		if !fr.warnedSkip {
			log.Printf("em3: %d bytes skipped between records", skipped)
			fr.warnedSkip = true
		}
	}

	if fr.polarity == PolarityUnknown && !ambiguous {
		fr.polarity = polarity
	}
	usePolarity := fr.polarity
	if usePolarity == PolarityUnknown {
		usePolarity = polarity // ambiguous first label: use provisional choice, stay unresolved
	}

	length := decodeU32(window[0:4], usePolarity)
	if length < 7 {
		return Label{}, nil, ErrBadDatagram
	}
	id := RecordID(window[5])
	model := SonarModel(decodeU16(window[6:8], usePolarity))

	byteIndex, _ := Tell(fr.stream)

	payloadLen := int(length) - 7
	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(fr.stream, payload); err != nil {
			return Label{}, nil, errors.Join(ErrIo, err)
		}
	}

	trailer := make([]byte, 3)
	if _, err := io.ReadFull(fr.stream, trailer); err != nil {
		return Label{}, nil, errors.Join(ErrIo, err)
	}

	if trailer[0] != StopCode {
		// No stop byte where the declared length puts it. Scan forward,
		// budgeted by the announced length, to find the real terminator;
		// the bytes passed over are appended to the payload.
		found := false
		var extra []byte
		budget := int(length)
		for i := 0; i < budget; i++ {
			b := make([]byte, 1)
			if _, err := io.ReadFull(fr.stream, b); err != nil {
				break
			}
			extra = append(extra, b[0])
			if b[0] == StopCode {
				found = true
				break
			}
		}
		if !found {
			return Label{}, nil, ErrBadDatagram
		}
		if !fr.warnedBroken {
			log.Printf("em3: broken datagram trailer, resynced within declared length")
			fr.warnedBroken = true
		}
		payload = append(payload, trailer[0])
		payload = append(payload, extra[:len(extra)-1]...)
		checksum := make([]byte, 2)
		if _, err := io.ReadFull(fr.stream, checksum); err != nil {
			return Label{}, nil, errors.Join(ErrIo, err)
		}
		trailer[1], trailer[2] = checksum[0], checksum[1]
	}

	return Label{Id: id, Model: model, ByteIndex: byteIndex}, payload, nil
}

// Checksum computes the 16 bit unsigned sum of bytes from the id byte
// through the stop byte inclusive. EncodeRecord computes its own sum over
// the bytes it writes, which also covers any pad byte.
func Checksum(id RecordID, model SonarModel, payload []byte, polarity Polarity) uint16 {
	var sum uint32
	sum += uint32(byte(id))
	for _, b := range encodeU16(uint16(model), polarity) {
		sum += uint32(b)
	}
	for _, b := range payload {
		sum += uint32(b)
	}
	sum += uint32(StopCode)
	return uint16(sum & 0xFFFF)
}

// EncodeRecord serialises id/model/payload into a complete on-wire
// datagram: length prefix, label, payload, stop byte and checksum
//. Pads to an even total length.
func EncodeRecord(id RecordID, model SonarModel, payload []byte, polarity Polarity) []byte {
	body := make([]byte, 0, len(payload)+8)
	body = append(body, StartCode, byte(id))
	body = append(body, encodeU16(uint16(model), polarity)...)
	body = append(body, payload...)

	// length counts everything after the length field itself: label (4) +
	// payload + stop (1) + checksum (2).
	total := len(body) + 3
	if (total+4)%2 != 0 {
		body = append(body, 0x00) // padding, included in the checksum
		total++
	}
	body = append(body, StopCode)

	// body[0] is the start byte; the checksum covers id..stop inclusive.
	checksum := checksumOverBytes(body[1:])

	out := make([]byte, 0, 4+len(body)+2)
	out = append(out, encodeU32(uint32(total), polarity)...)
	out = append(out, body...)
	out = append(out, encodeU16(checksum, polarity)...)
	return out
}

func checksumOverBytes(b []byte) uint16 {
	var sum uint32
	for _, v := range b {
		sum += uint32(v)
	}
	return uint16(sum & 0xFFFF)
}
