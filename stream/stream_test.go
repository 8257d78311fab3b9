package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/Neumenon/tinybuf/tinybuf"
)

func TestStream_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	payloads := [][]byte{
		[]byte("first"),
		{},
		[]byte("third"),
	}
	for _, p := range payloads {
		if err := w.WriteFrame(&Frame{Payload: p}); err != nil {
			t.Fatalf("WriteFrame failed: %v", err)
		}
	}

	r := NewReader(&buf)
	for i, want := range payloads {
		f, err := r.Next()
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if !bytes.Equal(f.Payload, want) {
			t.Errorf("frame %d payload = %q, want %q", i, f.Payload, want)
		}
		if f.CRC != nil {
			t.Errorf("frame %d should carry no CRC", i)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("after last frame: err = %v, want EOF", err)
	}
}

func TestStream_CRC(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithCRC())
	if err := w.WriteFrame(&Frame{Payload: []byte("checked")}); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	f, err := NewReader(bytes.NewReader(buf.Bytes())).Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if f.CRC == nil {
		t.Fatal("frame should carry a CRC")
	}
	if !VerifyCRC(f.Payload, *f.CRC) {
		t.Error("CRC should verify")
	}
}

func TestStream_CRCCorruption(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, WithCRC())
	if err := w.WriteFrame(&Frame{Payload: []byte("checked")}); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	raw := buf.Bytes()
	raw[len(raw)-6] ^= 0xff // flip a payload byte

	_, err := NewReader(bytes.NewReader(raw)).Next()
	var ce *CRCMismatchError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want CRCMismatchError", err)
	}

	// Verification can be turned off.
	f, err := NewReader(bytes.NewReader(raw), WithoutCRCVerification()).Next()
	if err != nil {
		t.Fatalf("unverified Next failed: %v", err)
	}
	if VerifyCRC(f.Payload, *f.CRC) {
		t.Error("corrupted payload should not verify")
	}
}

func TestStream_Compression(t *testing.T) {
	payload := bytes.Repeat([]byte("tinybuf "), 1000)

	var plain, compressed bytes.Buffer
	if err := NewWriter(&plain).WriteFrame(&Frame{Payload: payload}); err != nil {
		t.Fatal(err)
	}
	if err := NewWriter(&compressed, WithCompression(), WithCRC()).WriteFrame(&Frame{Payload: payload}); err != nil {
		t.Fatal(err)
	}
	if compressed.Len() >= plain.Len() {
		t.Errorf("compressed frame (%d) not smaller than plain (%d)", compressed.Len(), plain.Len())
	}

	f, err := NewReader(&compressed).Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Error("decompressed payload mismatch")
	}
}

func TestStream_BadMagic(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte{'X', 'Y', 1, 0, 0})).Next()
	var fe *FrameError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want FrameError", err)
	}
}

func TestStream_BadVersion(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte{Magic0, Magic1, 99, 0, 0})).Next()
	var fe *FrameError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want FrameError", err)
	}
}

func TestStream_Truncated(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf, WithCRC()).WriteFrame(&Frame{Payload: []byte("hello")}); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()

	// Any strict prefix beyond zero bytes is a broken frame.
	for cut := 1; cut < len(raw); cut++ {
		_, err := NewReader(bytes.NewReader(raw[:cut])).Next()
		var fe *FrameError
		if !errors.As(err, &fe) {
			t.Fatalf("prefix of %d bytes: error = %v, want FrameError", cut, err)
		}
	}

	// Zero bytes is a clean end of stream.
	if _, err := NewReader(bytes.NewReader(nil)).Next(); err != io.EOF {
		t.Errorf("empty stream: err = %v, want EOF", err)
	}
}

func TestStream_MaxPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteFrame(&Frame{Payload: bytes.Repeat([]byte{'x'}, 100)}); err != nil {
		t.Fatal(err)
	}
	_, err := NewReader(bytes.NewReader(buf.Bytes()), WithMaxPayload(50)).Next()
	var fe *FrameError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %v, want FrameError", err)
	}
}

func TestStream_Values(t *testing.T) {
	decls, err := tinybuf.ParseDecls(`
		type Point
		  x int32
		  y int32
	`)
	if err != nil {
		t.Fatal(err)
	}
	graph, err := tinybuf.Resolve(decls)
	if err != nil {
		t.Fatal(err)
	}

	points := []*tinybuf.Value{
		tinybuf.Struct("Point", tinybuf.FieldVal("x", tinybuf.Int(-5)), tinybuf.FieldVal("y", tinybuf.Int(1000000))),
		tinybuf.Struct("Point", tinybuf.FieldVal("x", tinybuf.Int(0)), tinybuf.FieldVal("y", tinybuf.Int(1))),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, WithCRC())
	for _, p := range points {
		if err := w.WriteValue(graph, "Point", p); err != nil {
			t.Fatalf("WriteValue failed: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r := NewReader(&buf)
	for i, want := range points {
		got, err := r.NextValue(graph, "Point")
		if err != nil {
			t.Fatalf("value %d: %v", i, err)
		}
		if !got.Equal(want) {
			t.Errorf("value %d = %s, want %s", i, got, want)
		}
	}
	if _, err := r.NextValue(graph, "Point"); err != io.EOF {
		t.Errorf("after final frame: err = %v, want EOF", err)
	}
}

func TestStream_FinalFlag(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).WriteFrame(&Frame{Payload: []byte("bye"), Final: true}); err != nil {
		t.Fatal(err)
	}
	f, err := NewReader(&buf).Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if !f.Final {
		t.Error("final flag should round-trip")
	}
}
