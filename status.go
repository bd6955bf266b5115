package framelink

import "github.com/sparques/framelink/internal/status"

// Status is the single byte-wide status code exposed after every operation.
// Code ranges are partitioned so any observed code uniquely identifies its
// origin: COBS 11-23, CRC 51-57, transport 101-121.
type Status = status.Status

// StatusOK indicates success.
const StatusOK = status.OK

// COBS-range statuses, surfaced when Send's COBS encode or the transport
// engine's VALIDATE-state COBS decode is rejected by the codec itself.
const (
	StatusPayloadTooSmall       = status.PayloadTooSmall
	StatusPayloadTooLarge       = status.PayloadTooLarge
	StatusPayloadAlreadyEncoded = status.PayloadAlreadyEncoded
	StatusPacketAlreadyDecoded  = status.PacketAlreadyDecoded
	StatusCodecDelimTooEarly    = status.CodecDelimTooEarly
	StatusCodecDelimNotFound    = status.CodecDelimNotFound
)

// Transport-range statuses.
const (
	StatusWriteOutOfRange          = status.WriteOutOfRange
	StatusReadOutOfRange           = status.ReadOutOfRange
	StatusNoBytesToParseFromBuffer = status.NoBytesToParseFromBuffer
	StatusPacketStartByteNotFound  = status.PacketStartByteNotFound
	StatusPayloadSizeByteNotFound  = status.PayloadSizeByteNotFound
	StatusInvalidPayloadSize       = status.InvalidPayloadSize
	StatusDelimiterFoundTooEarly   = status.DelimiterFoundTooEarlyError
	StatusDelimiterNotFound        = status.DelimiterNotFoundError
	StatusPacketTimeout            = status.PacketTimeoutError
	StatusPostambleTimeout         = status.PostambleTimeoutError
	StatusCRCCheckFailed           = status.CRCCheckFailed
	StatusSendFailed               = status.SendFailed
	StatusCopyPayloadTooLarge      = status.CopyPayloadTooLarge
)

// Sentinel errors for errors.Is comparisons against the common failure
// modes; every one of these wraps a Status and is comparable directly.
var (
	ErrCRCCheckFailed           = status.New(status.CRCCheckFailed)
	ErrPacketTimeout            = status.New(status.PacketTimeoutError)
	ErrPostambleTimeout         = status.New(status.PostambleTimeoutError)
	ErrDelimiterFoundTooEarly   = status.New(status.DelimiterFoundTooEarlyError)
	ErrDelimiterNotFound        = status.New(status.DelimiterNotFoundError)
	ErrInvalidPayloadSize       = status.New(status.InvalidPayloadSize)
	ErrNoBytesToParseFromBuffer = status.New(status.NoBytesToParseFromBuffer)
	ErrPacketStartByteNotFound  = status.New(status.PacketStartByteNotFound)
	ErrCopyPayloadTooLarge      = status.New(status.CopyPayloadTooLarge)
)
