package crc

import (
	"errors"
	"testing"

	"github.com/sparques/framelink/internal/status"
)

// CRC-16/CCITT-FALSE, the parameter set used throughout the worked examples below.
func ccittFalse() *Engine {
	return New(Params{Width: Width16, Poly: 0x1021, Init: 0xFFFF, FinalXOR: 0x0000})
}

func TestCRC16CCITTFalseKnownVector(t *testing.T) {
	e := ccittFalse()
	// "123456789" -> 0x29B1 is the standard CRC-16/CCITT-FALSE check value.
	got, err := e.CRC([]byte("123456789"), 0, 9)
	if err != nil {
		t.Fatalf("CRC: %v", err)
	}
	if got != 0x29B1 {
		t.Fatalf("CRC = 0x%04X, want 0x29B1", got)
	}
}

func TestSignatureProperty(t *testing.T) {
	widths := []struct {
		w    Width
		poly uint32
		init uint32
	}{
		{Width8, 0x07, 0x00},
		{Width16, 0x1021, 0xFFFF},
		{Width32, 0x04C11DB7, 0xFFFFFFFF},
	}

	for _, tc := range widths {
		e := New(Params{Width: tc.w, Poly: tc.poly, Init: tc.init, FinalXOR: 0})

		s := []byte("the quick brown fox jumps over the lazy dog")
		buf := make([]byte, len(s)+e.WidthBytes())
		copy(buf, s)

		c, err := e.CRC(buf, 0, len(s))
		if err != nil {
			t.Fatalf("width=%d: CRC: %v", tc.w, err)
		}
		if _, err := e.Append(buf, len(s), c); err != nil {
			t.Fatalf("width=%d: Append: %v", tc.w, err)
		}

		residue, err := e.CRC(buf, 0, len(buf))
		if err != nil {
			t.Fatalf("width=%d: residue CRC: %v", tc.w, err)
		}
		if residue != 0 {
			t.Fatalf("width=%d: crc(S||crc(S)) = 0x%X, want 0", tc.w, residue)
		}
	}
}

func TestAppendAndReadRoundTrip(t *testing.T) {
	e := ccittFalse()
	buf := make([]byte, 10)
	if _, err := e.Append(buf, 4, 0xBEEF); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if buf[4] != 0xBE || buf[5] != 0xEF {
		t.Fatalf("Append wrote %v, want big-endian 0xBE 0xEF", buf[4:6])
	}
	got, err := e.Read(buf, 4)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != 0xBEEF {
		t.Fatalf("Read = 0x%X, want 0xBEEF", got)
	}
}

func TestBufferTooSmall(t *testing.T) {
	e := ccittFalse()
	buf := make([]byte, 4)

	if _, err := e.CRC(buf, 3, 5); !hasStatus(err, status.CRCBufferTooSmall) {
		t.Fatalf("CRC range error = %v, want CRCBufferTooSmall", err)
	}
	if _, err := e.Append(buf, 3, 0); !hasStatus(err, status.AppendBufferTooSmall) {
		t.Fatalf("Append range error = %v, want AppendBufferTooSmall", err)
	}
	if _, err := e.Read(buf, 3); !hasStatus(err, status.ReadBufferTooSmall) {
		t.Fatalf("Read range error = %v, want ReadBufferTooSmall", err)
	}
}

func hasStatus(err error, want status.Status) bool {
	var se *status.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == want
}
