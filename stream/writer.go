package stream

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/s2"

	"github.com/Neumenon/tinybuf/tinybuf"
)

// Writer writes TBS1 frames to an io.Writer.
type Writer struct {
	w        io.Writer
	withCRC  bool
	compress bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCRC enables a CRC-32 trailer on every frame.
func WithCRC() WriterOption {
	return func(w *Writer) {
		w.withCRC = true
	}
}

// WithCompression enables s2 compression of frame payloads.
func WithCompression() WriterOption {
	return func(w *Writer) {
		w.compress = true
	}
}

// NewWriter creates a new TBS1 frame writer.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	writer := &Writer{w: w}
	for _, opt := range opts {
		opt(writer)
	}
	return writer
}

// WriteFrame writes a single frame. The stored payload is compressed and
// checksummed according to the writer's options; f.CRC is ignored.
func (w *Writer) WriteFrame(f *Frame) error {
	stored := f.Payload
	var flags Flags
	if w.compress {
		stored = s2.Encode(nil, f.Payload)
		flags |= FlagCompressed
	}
	if w.withCRC {
		flags |= FlagCRC
	}
	if f.Final {
		flags |= FlagFinal
	}

	header := make([]byte, 0, 4+tinybuf.MaxVarintLen)
	header = append(header, Magic0, Magic1, Version, byte(flags))
	header = tinybuf.AppendUvarint(header, uint64(len(stored)))

	if _, err := w.w.Write(header); err != nil {
		return fmt.Errorf("stream: write header: %w", err)
	}
	if len(stored) > 0 {
		if _, err := w.w.Write(stored); err != nil {
			return fmt.Errorf("stream: write payload: %w", err)
		}
	}
	if w.withCRC {
		var trailer [4]byte
		binary.LittleEndian.PutUint32(trailer[:], ComputeCRC(stored))
		if _, err := w.w.Write(trailer[:]); err != nil {
			return fmt.Errorf("stream: write crc: %w", err)
		}
	}
	return nil
}

// WriteValue encodes a value of the named type and writes it as one frame.
func (w *Writer) WriteValue(g *tinybuf.TypeGraph, typeName string, v *tinybuf.Value) error {
	payload, err := tinybuf.Encode(g, typeName, v)
	if err != nil {
		return err
	}
	return w.WriteFrame(&Frame{Payload: payload})
}

// Close writes an empty final frame marking end-of-stream. It does not
// close the underlying writer.
func (w *Writer) Close() error {
	return w.WriteFrame(&Frame{Final: true})
}
