// Package crc implements a table-driven CRC engine parameterized by width
// (8, 16, or 32 bits) and by polynomial/init/final-XOR. Reflected/reversed
// polynomials are not supported.
package crc

import (
	"github.com/sparques/framelink/internal/status"
)

// Width is the CRC register width in bits.
type Width int

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
)

// Params are the forward-polynomial CRC parameters.
type Params struct {
	Width    Width
	Poly     uint32
	Init     uint32
	FinalXOR uint32
}

// Engine computes, appends, and reads a table-driven CRC of a fixed width.
// The lookup table is generated once at construction and is immutable for
// the engine's lifetime.
type Engine struct {
	params Params
	mask   uint32
	shift  uint
	table  [256]uint32
}

// New builds an Engine and generates its 256-entry lookup table.
func New(p Params) *Engine {
	e := &Engine{params: p}
	w := uint(p.Width)
	if w == 32 {
		e.mask = 0xFFFFFFFF
	} else {
		e.mask = (uint32(1) << w) - 1
	}
	e.shift = w - 8

	top := uint32(1) << (w - 1)
	for b := 0; b < 256; b++ {
		reg := uint32(b) << e.shift
		for i := 0; i < 8; i++ {
			if reg&top != 0 {
				reg = (reg << 1) ^ p.Poly
			} else {
				reg <<= 1
			}
		}
		e.table[b] = reg & e.mask
	}
	return e
}

// WidthBytes returns the CRC width in bytes (1, 2, or 4).
func (e *Engine) WidthBytes() int {
	return int(e.params.Width) / 8
}

// CRC computes the MSB-first table-driven CRC over buf[start : start+n],
// initialized to Init and finalized by XOR with FinalXOR.
func (e *Engine) CRC(buf []byte, start, n int) (uint32, error) {
	if start < 0 || n < 0 || start+n > len(buf) {
		return 0, status.New(status.CRCBufferTooSmall)
	}

	reg := e.params.Init & e.mask
	for _, c := range buf[start : start+n] {
		idx := byte((reg>>e.shift)&0xFF) ^ c
		reg = ((reg << 8) ^ e.table[idx]) & e.mask
	}
	return reg ^ (e.params.FinalXOR & e.mask), nil
}

// Append writes the W-byte big-endian CRC value at buf[index:] and returns
// the index immediately after it.
func (e *Engine) Append(buf []byte, index int, value uint32) (next int, err error) {
	w := e.WidthBytes()
	if index < 0 || index+w > len(buf) {
		return 0, status.New(status.AppendBufferTooSmall)
	}
	for i := 0; i < w; i++ {
		shift := uint(w-1-i) * 8
		buf[index+i] = byte(value >> shift)
	}
	return index + w, nil
}

// Read reads a W-byte big-endian CRC value from buf[index:].
func (e *Engine) Read(buf []byte, index int) (uint32, error) {
	w := e.WidthBytes()
	if index < 0 || index+w > len(buf) {
		return 0, status.New(status.ReadBufferTooSmall)
	}
	var v uint32
	for i := 0; i < w; i++ {
		v = (v << 8) | uint32(buf[index+i])
	}
	return v, nil
}
