package stream

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/s2"

	"github.com/Neumenon/tinybuf/tinybuf"
)

// Reader reads TBS1 frames from an io.Reader.
type Reader struct {
	r          *bufio.Reader
	maxPayload int
	verifyCRC  bool
	offset     int64
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxPayload sets the maximum payload size (default: 64 MiB). The
// limit applies to both the stored and the decompressed payload.
func WithMaxPayload(max int) ReaderOption {
	return func(r *Reader) {
		r.maxPayload = max
	}
}

// WithoutCRCVerification disables CRC verification.
func WithoutCRCVerification() ReaderOption {
	return func(r *Reader) {
		r.verifyCRC = false
	}
}

// NewReader creates a new TBS1 frame reader.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		r:          bufio.NewReader(r),
		maxPayload: MaxPayloadSize,
		verifyCRC:  true, // verify by default
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Next reads and returns the next frame, with the payload decompressed.
// Returns io.EOF when no more frames are available.
func (r *Reader) Next() (*Frame, error) {
	start := r.offset

	// Magic. A clean EOF before any byte means end of stream; anything
	// else mid-header is a truncated frame.
	b0, err := r.r.ReadByte()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, fmt.Errorf("stream: read frame: %w", err)
	}
	r.offset++
	b1, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if b0 != Magic0 || b1 != Magic1 {
		return nil, &FrameError{Reason: "bad magic", Offset: start}
	}

	version, err := r.readByte()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, &FrameError{Reason: fmt.Sprintf("unsupported version %d", version), Offset: start}
	}

	flagsByte, err := r.readByte()
	if err != nil {
		return nil, err
	}
	flags := Flags(flagsByte)

	storedLen, err := r.readUvarint(start)
	if err != nil {
		return nil, err
	}
	if storedLen > uint64(r.maxPayload) {
		return nil, &FrameError{Reason: fmt.Sprintf("payload too large: %d > %d", storedLen, r.maxPayload), Offset: start}
	}

	stored := make([]byte, int(storedLen))
	if _, err := io.ReadFull(r.r, stored); err != nil {
		return nil, &FrameError{Reason: "truncated payload", Offset: start}
	}
	r.offset += int64(len(stored))

	frame := &Frame{Final: flags&FlagFinal != 0}

	if flags&FlagCRC != 0 {
		var trailer [4]byte
		if _, err := io.ReadFull(r.r, trailer[:]); err != nil {
			return nil, &FrameError{Reason: "truncated crc", Offset: start}
		}
		r.offset += 4
		crc := binary.LittleEndian.Uint32(trailer[:])
		frame.CRC = &crc
		if r.verifyCRC {
			if computed := ComputeCRC(stored); computed != crc {
				return nil, &CRCMismatchError{Expected: crc, Got: computed}
			}
		}
	}

	if flags&FlagCompressed != 0 {
		decodedLen, err := s2.DecodedLen(stored)
		if err != nil {
			return nil, &FrameError{Reason: "bad compressed payload", Offset: start}
		}
		if decodedLen > r.maxPayload {
			return nil, &FrameError{Reason: fmt.Sprintf("decompressed payload too large: %d > %d", decodedLen, r.maxPayload), Offset: start}
		}
		frame.Payload, err = s2.Decode(nil, stored)
		if err != nil {
			return nil, &FrameError{Reason: "bad compressed payload", Offset: start}
		}
	} else {
		frame.Payload = stored
	}

	return frame, nil
}

// NextValue reads the next frame and decodes its payload as the named
// type. A final end-of-stream frame returns io.EOF.
func (r *Reader) NextValue(g *tinybuf.TypeGraph, typeName string) (*tinybuf.Value, error) {
	f, err := r.Next()
	if err != nil {
		return nil, err
	}
	if f.Final && len(f.Payload) == 0 {
		return nil, io.EOF
	}
	return tinybuf.Decode(g, typeName, f.Payload)
}

// readByte reads one header byte, treating EOF as truncation.
func (r *Reader) readByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, &FrameError{Reason: "truncated header", Offset: r.offset}
	}
	r.offset++
	return b, nil
}

// readUvarint reads the stored-length varint byte by byte.
func (r *Reader) readUvarint(start int64) (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= tinybuf.MaxVarintLen {
			return 0, &FrameError{Reason: "length varint too long", Offset: start}
		}
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, nil
		}
		shift += 7
	}
}
