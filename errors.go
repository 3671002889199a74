package em3

import "errors"

// Sentinel errors compared with errors.Is by callers.
var (
	// ErrEndOfStream means the stream has no further bytes and no partial
	// label was in progress. Not itself a failure.
	ErrEndOfStream = errors.New("em3: end of stream")

	// ErrBadDatagram means a label or trailer could not be resolved even
	// after resync, or a length field described an impossible record.
	ErrBadDatagram = errors.New("em3: bad datagram framing")

	// ErrUnintelligible means a label was framed correctly but its payload
	// failed a decoder's own internal consistency checks.
	ErrUnintelligible = errors.New("em3: unintelligible payload")

	// ErrIo wraps failures from the underlying Stream itself.
	ErrIo = errors.New("em3: stream io error")

	// ErrUnsupported means a recognised datagram id has no decoder (legacy
	// Bath/RawBeam, and On, Bath3MBA and SS2MBA, which dispatch has no
	// case for).
	ErrUnsupported = errors.New("em3: unsupported datagram")

	// ErrCommentOrOther flags a record that decoded fine but carries no
	// ping-relevant content (comments, vendor-specific passthrough).
	ErrCommentOrOther = errors.New("em3: comment or other non-ping record")
)
