// Package stage implements the staging buffer and the typed payload view:
// a fixed-capacity byte buffer holding one frame's worth of data, with a
// high-water-mark payload length that never shrinks except on explicit
// reset.
package stage

import (
	"encoding/binary"

	"github.com/sparques/framelink/internal/layout"
	"github.com/sparques/framelink/internal/status"
)

// Buffer is one TX or RX staging buffer.
//
//	[START][PAYLOAD_SIZE][OVERHEAD][PAYLOAD ... up to MaxPayload][DELIM][CRC ... up to W]
type Buffer struct {
	buf        []byte
	maxPayload int
}

// New allocates a zero-initialized staging buffer sized for maxPayload and
// a CRC width of crcWidthBytes, and writes the START sentinel once.
func New(startByte byte, maxPayload, crcWidthBytes int) *Buffer {
	b := &Buffer{
		buf:        make([]byte, layout.Capacity(maxPayload, crcWidthBytes)),
		maxPayload: maxPayload,
	}
	b.buf[layout.IdxStart] = startByte
	return b
}

// Bytes exposes the raw buffer for the codec/CRC engine to mutate in place.
// Callers outside this package's collaborators (the transport engine) must
// not retain or mutate the returned slice beyond the current operation.
func (b *Buffer) Bytes() []byte { return b.buf }

// Overhead returns the OVERHEAD byte.
func (b *Buffer) Overhead() byte { return b.buf[layout.IdxOverhead] }

// SetOverhead sets the OVERHEAD byte directly. The transport engine does not
// call it (reception writes OVERHEAD through Bytes); tests use it to force
// the encoded/decoded state.
func (b *Buffer) SetOverhead(v byte) { b.buf[layout.IdxOverhead] = v }

// PayloadSize returns the current high-water-mark payload length.
func (b *Buffer) PayloadSize() int { return int(b.buf[layout.IdxPayloadSize]) }

// SetPayloadSize sets the declared payload length directly; used by the
// transport engine's READ_SIZE state and by Write's high-water-mark update.
func (b *Buffer) SetPayloadSize(n int) { b.buf[layout.IdxPayloadSize] = byte(n) }

// MaxPayload returns the buffer's payload capacity.
func (b *Buffer) MaxPayload() int { return b.maxPayload }

// PayloadStart is the buffer-relative index of the first payload byte.
func (b *Buffer) PayloadStart() int { return layout.IdxPayloadStart }

// Reset clears OVERHEAD and PAYLOAD_SIZE back to zero. START is never
// touched. Applying Reset twice is idempotent.
func (b *Buffer) Reset() {
	b.buf[layout.IdxOverhead] = 0
	b.buf[layout.IdxPayloadSize] = 0
}

// Write copies n bytes from p into the payload region at payload-relative
// offset start, and advances the high-water mark to max(current, start+n).
// Fails with status.WriteOutOfRange if start+n exceeds MaxPayload.
func (b *Buffer) Write(p []byte, start, n int) (next int, err error) {
	if start < 0 || n < 0 || start+n > b.maxPayload {
		return 0, status.New(status.WriteOutOfRange)
	}
	base := layout.IdxPayloadStart + start
	copy(b.buf[base:base+n], p[:n])

	if hw := start + n; hw > b.PayloadSize() {
		b.SetPayloadSize(hw)
	}
	return start + n, nil
}

// Read copies n bytes from the payload region at payload-relative offset
// start into p. Fails with status.ReadOutOfRange if start+n exceeds the
// current declared payload size (not the capacity), so stale bytes left
// over from a prior reception are never visible.
func (b *Buffer) Read(p []byte, start, n int) (next int, err error) {
	if start < 0 || n < 0 || start+n > b.PayloadSize() {
		return 0, status.New(status.ReadOutOfRange)
	}
	base := layout.IdxPayloadStart + start
	copy(p[:n], b.buf[base:base+n])
	return start + n, nil
}

// WriteUint8 writes a single byte at payload-relative offset start.
func (b *Buffer) WriteUint8(v uint8, start int) (next int, err error) {
	return b.Write([]byte{v}, start, 1)
}

// ReadUint8 reads a single byte from payload-relative offset start.
func (b *Buffer) ReadUint8(start int) (v uint8, next int, err error) {
	var tmp [1]byte
	next, err = b.Read(tmp[:], start, 1)
	return tmp[0], next, err
}

// WriteUint16 writes v using the given byte order at payload-relative offset start.
func (b *Buffer) WriteUint16(order binary.ByteOrder, v uint16, start int) (next int, err error) {
	var tmp [2]byte
	order.PutUint16(tmp[:], v)
	return b.Write(tmp[:], start, 2)
}

// ReadUint16 reads a uint16 using the given byte order from payload-relative offset start.
func (b *Buffer) ReadUint16(order binary.ByteOrder, start int) (v uint16, next int, err error) {
	var tmp [2]byte
	next, err = b.Read(tmp[:], start, 2)
	if err != nil {
		return 0, next, err
	}
	return order.Uint16(tmp[:]), next, nil
}

// WriteUint32 writes v using the given byte order at payload-relative offset start.
func (b *Buffer) WriteUint32(order binary.ByteOrder, v uint32, start int) (next int, err error) {
	var tmp [4]byte
	order.PutUint32(tmp[:], v)
	return b.Write(tmp[:], start, 4)
}

// ReadUint32 reads a uint32 using the given byte order from payload-relative offset start.
func (b *Buffer) ReadUint32(order binary.ByteOrder, start int) (v uint32, next int, err error) {
	var tmp [4]byte
	next, err = b.Read(tmp[:], start, 4)
	if err != nil {
		return 0, next, err
	}
	return order.Uint32(tmp[:]), next, nil
}
