// Package stream implements TBS1 (TinyBuf Stream v1) framing.
//
// TinyBuf's wire format is deliberately headerless: a serialized value
// carries no length, so callers placing several values on one byte
// stream must delimit them. TBS1 is that envelope, providing:
//   - Message boundaries and cheap resync (fixed magic per frame)
//   - Integrity via optional CRC-32
//   - Optional payload compression (s2)
//
// Frame headers are not part of the TinyBuf encoding itself; the payload
// is a standard TinyBuf value passed to the codec unchanged.
//
// # Layout
//
//	'T' 'B'            magic
//	version            1 byte, currently 1
//	flags              1 byte
//	length             varint, stored payload size in bytes
//	payload            length bytes (s2-compressed if FlagCompressed)
//	crc                4 bytes CRC-32 LE of stored payload, if FlagCRC
package stream

import "fmt"

// Version is the TBS1 protocol version.
const Version uint8 = 1

// Frame magic bytes.
const (
	Magic0 = 'T'
	Magic1 = 'B'
)

// Flags for TBS1 frames.
type Flags uint8

const (
	FlagCRC        Flags = 0x01 // CRC-32 trailer is present
	FlagCompressed Flags = 0x02 // Payload is s2-compressed
	FlagFinal      Flags = 0x04 // End-of-stream marker
)

// Frame represents a single TBS1 frame. Payload always holds the
// uncompressed TinyBuf bytes; compression is applied on the wire only.
type Frame struct {
	Payload []byte
	Final   bool // End-of-stream marker

	// CRC is the CRC-32 read from the wire, nil if the frame carried
	// none. Set by Reader; ignored by Writer, which computes its own.
	CRC *uint32
}

// MaxPayloadSize is the default maximum payload size (64 MiB).
const MaxPayloadSize = 64 * 1024 * 1024

// FrameError reports a malformed frame.
type FrameError struct {
	Reason string
	Offset int64 // Byte offset into the stream, -1 if unknown
}

func (e *FrameError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("stream: bad frame at offset %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("stream: bad frame: %s", e.Reason)
}

// CRCMismatchError reports a CRC verification failure.
type CRCMismatchError struct {
	Expected uint32
	Got      uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("stream: CRC mismatch: header says %08x, payload is %08x", e.Expected, e.Got)
}
