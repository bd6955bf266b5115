// Package cobs implements Consistent Overhead Byte Stuffing over a
// caller-owned staging buffer laid out per internal/layout: the payload
// region runs from layout.IdxPayloadStart for PAYLOAD_SIZE bytes, preceded
// by the OVERHEAD byte and followed by one DELIM byte.
//
// Both Encode and Decode mutate the buffer in place and never allocate.
package cobs

import (
	"github.com/sparques/framelink/internal/layout"
	"github.com/sparques/framelink/internal/status"
)

// Encode COBS-encodes the payload region of buf in place.
//
// Requires buf[layout.IdxOverhead] == 0 and
// buf[layout.IdxPayloadSize] in [1, 254], and enough trailing capacity to
// hold the DELIM byte immediately after the encoded payload.
//
// On success the payload region contains no occurrence of delim, OVERHEAD
// chains to the first encoded jump (or to DELIM if there is none), the byte
// immediately after the payload is set to delim, and the returned
// encodedSize is payloadSize + 2 (OVERHEAD + encoded payload + DELIM).
func Encode(buf []byte, delim byte) (encodedSize int, err error) {
	payloadSize := int(buf[layout.IdxPayloadSize])
	if payloadSize < layout.MinPayload {
		return 0, status.New(status.PayloadTooSmall)
	}
	if payloadSize > layout.MaxPayload {
		return 0, status.New(status.PayloadTooLarge)
	}
	if buf[layout.IdxOverhead] != 0 {
		return 0, status.New(status.PayloadAlreadyEncoded)
	}

	delimIdx := layout.IdxPayloadStart + payloadSize
	if delimIdx >= len(buf) {
		return 0, status.New(status.EncodeBufferTooSmall)
	}

	// Reverse pass: the appended DELIM position is the initial "next
	// delimiter" anchor. Each occurrence of delim inside the payload is
	// overwritten with the distance to the previously recorded anchor,
	// XORed with delim (a no-op for the default delim 0), and its own
	// position becomes the new anchor. The distance is never 0, so the XOR
	// keeps every jump byte distinct from delim. Running in reverse lets
	// every jump value be computed with a single write.
	buf[delimIdx] = delim
	anchor := delimIdx
	for i := delimIdx - 1; i >= layout.IdxPayloadStart; i-- {
		if buf[i] == delim {
			buf[i] = byte(anchor-i) ^ delim
			anchor = i
		}
	}
	buf[layout.IdxOverhead] = byte(anchor - layout.IdxOverhead)

	return payloadSize + 2, nil
}

// Decode COBS-decodes the packet currently staged in buf, in place.
//
// Requires buf[layout.IdxOverhead] != 0 and a valid declared
// buf[layout.IdxPayloadSize]. On success every encoded jump byte in the
// payload region is restored to delim, OVERHEAD is reset to 0, and the
// returned payloadSize equals the declared size.
func Decode(buf []byte, delim byte) (payloadSize int, err error) {
	declared := int(buf[layout.IdxPayloadSize])
	if declared < layout.MinPayload {
		return 0, status.New(status.PacketTooSmall)
	}
	if declared > layout.MaxPayload {
		return 0, status.New(status.PacketTooLarge)
	}
	if buf[layout.IdxOverhead] == 0 {
		return 0, status.New(status.PacketAlreadyDecoded)
	}

	delimIdx := layout.IdxPayloadStart + declared
	if delimIdx >= len(buf) {
		return 0, status.New(status.DecodeBufferTooSmall)
	}

	// Forward traversal, two-phase like the reference decoder: the first
	// jump is read out of OVERHEAD and that byte is zeroed outright (OVERHEAD
	// == 0 is the "decoded" sentinel, distinct from the delimiter value
	// restored at every later jump position). Every position the cursor then
	// lands on is checked against delim *before* being treated as another
	// jump: landing on delim exactly at delimIdx is success, landing on it
	// anywhere earlier means a delimiter surfaced too early in the chain,
	// and a jump that carries the cursor past delimIdx without ever landing
	// on a checked position means the chain never reached delimIdx at all.
	// OVERHEAD holds the raw distance; every later jump byte holds the
	// distance XORed with delim, as Encode writes it.
	cursor := layout.IdxOverhead
	jump := int(buf[cursor])
	buf[cursor] = 0 // always 0 here, never delim, even when delim != 0
	cursor += jump

	for cursor <= delimIdx {
		if buf[cursor] == delim {
			if cursor == delimIdx {
				return declared, nil
			}
			return 0, status.New(status.CodecDelimTooEarly)
		}
		jump = int(buf[cursor] ^ delim)
		buf[cursor] = delim
		cursor += jump
	}

	return 0, status.New(status.CodecDelimNotFound)
}
