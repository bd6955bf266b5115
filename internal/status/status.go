// Package status defines the single byte-wide status taxonomy shared by the
// COBS codec, the CRC engine, the payload view, and the transport engine.
// Code ranges are partitioned so that any observed code uniquely identifies
// its origin: COBS 11-23, CRC 51-57, transport/payload-view 101-121.
package status

import "fmt"

// Status is a single byte-wide status code, as spec'd in "status taxonomy".
type Status uint8

// OK is the zero value: no error.
const OK Status = 0

// COBS codec statuses (11-23).
const (
	PayloadTooSmall       Status = 11 // encode: payload length < 1
	PayloadTooLarge       Status = 12 // encode: payload length > 254
	EncodeBufferTooSmall  Status = 13 // encode: buffer has no room for DELIM
	PayloadAlreadyEncoded Status = 14 // encode: OVERHEAD != 0 on entry
	PacketTooSmall        Status = 15 // decode: declared size < 1
	PacketTooLarge        Status = 16 // decode: declared size > 254
	DecodeBufferTooSmall  Status = 17 // decode: buffer has no room for DELIM after the declared payload
	PacketAlreadyDecoded  Status = 18 // decode: OVERHEAD == 0 on entry
	CodecDelimTooEarly    Status = 19 // decode: delimiter reached before terminal index
	CodecDelimNotFound    Status = 20 // decode: traversal exhausted buffer
)

// CRC engine statuses (51-57).
const (
	CRCBufferTooSmall    Status = 51 // crc(): requested range exceeds buffer
	AppendBufferTooSmall Status = 52 // append(): no room for W bytes
	ReadBufferTooSmall   Status = 53 // read(): not enough bytes to read W
)

// Transport engine / payload view statuses (101-121).
const (
	WriteOutOfRange             Status = 101 // payload view write: start+n > max payload
	ReadOutOfRange              Status = 102 // payload view read: start+n > declared payload size
	NoBytesToParseFromBuffer    Status = 103 // SEEK_START exhausted, AllowStartByteErrors == false
	PacketStartByteNotFound     Status = 104 // SEEK_START exhausted, AllowStartByteErrors == true
	PayloadSizeByteNotFound     Status = 105 // READ_SIZE timed out
	InvalidPayloadSize          Status = 106 // READ_SIZE byte outside [min,max]
	DelimiterFoundTooEarlyError Status = 107 // READ_BODY saw DELIM before N+2 bytes
	DelimiterNotFoundError      Status = 108 // READ_BODY collected N+2 bytes, last != DELIM
	PacketTimeoutError          Status = 109 // READ_BODY inter-byte timeout
	PostambleTimeoutError       Status = 110 // READ_POSTAMBLE inter-byte timeout
	CRCCheckFailed              Status = 111 // VALIDATE: CRC residue != 0
	SendFailed                  Status = 112 // send(): CRC compute/append failed, or the transport write failed
	CopyPayloadTooLarge         Status = 113 // CopyTXPayloadToRX: TX payload exceeds RX capacity
)

var names = map[Status]string{
	OK:                           "ok",
	PayloadTooSmall:              "payload too small",
	PayloadTooLarge:              "payload too large",
	EncodeBufferTooSmall:         "buffer too small",
	PayloadAlreadyEncoded:        "payload already encoded",
	PacketTooSmall:               "packet too small",
	PacketTooLarge:               "packet too large",
	DecodeBufferTooSmall:         "buffer too small",
	PacketAlreadyDecoded:         "packet already decoded",
	CodecDelimTooEarly:           "delimiter found too early",
	CodecDelimNotFound:           "delimiter not found",
	CRCBufferTooSmall:            "buffer too small",
	AppendBufferTooSmall:         "buffer too small",
	ReadBufferTooSmall:           "buffer too small",
	WriteOutOfRange:              "write out of range",
	ReadOutOfRange:               "read out of range",
	NoBytesToParseFromBuffer:     "no bytes to parse from buffer",
	PacketStartByteNotFound:      "packet start byte not found",
	PayloadSizeByteNotFound:      "payload size byte not found",
	InvalidPayloadSize:           "invalid payload size",
	DelimiterFoundTooEarlyError:  "delimiter found too early",
	DelimiterNotFoundError:       "delimiter not found",
	PacketTimeoutError:           "packet timeout",
	PostambleTimeoutError:        "postamble timeout",
	CRCCheckFailed:               "crc check failed",
	SendFailed:                   "send failed",
	CopyPayloadTooLarge:          "copy payload too large",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if n, ok := names[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Error is a Status wrapped as an error value, so every exported operation
// can return a plain `error` while still letting callers recover the
// taxonomy code via errors.As/errors.Is.
type Error struct {
	Code Status
}

func (e *Error) Error() string {
	return e.Code.String()
}

// Is lets errors.Is(err, status.New(Code)) work directly.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// New wraps a Status as an error.
func New(code Status) error {
	if code == OK {
		return nil
	}
	return &Error{Code: code}
}
