package framelink

import "github.com/sparques/framelink/internal/crc"

// Default configuration values.
const (
	DefaultStartByte     byte   = 129
	DefaultDelimiterByte byte   = 0
	DefaultTimeoutMicros uint64 = 20000
)

// CRCWidth is the CRC register width in bits, fixing the postamble size.
type CRCWidth int

const (
	CRCWidth8  CRCWidth = 8
	CRCWidth16 CRCWidth = 16
	CRCWidth32 CRCWidth = 32
)

// CRCParams are the forward-polynomial CRC parameters for the engine's
// integrity check. There is no safe default polynomial, so these must
// always be supplied explicitly via WithCRC.
type CRCParams struct {
	Width    CRCWidth
	Poly     uint32
	Init     uint32
	FinalXOR uint32
}

func (p CRCParams) toInternal() crc.Params {
	return crc.Params{
		Width:    crc.Width(p.Width),
		Poly:     p.Poly,
		Init:     p.Init,
		FinalXOR: p.FinalXOR,
	}
}

// config holds the fully-resolved configuration for a new Engine.
type config struct {
	startByte            byte
	delimiterByte        byte
	maxTXPayload         int
	maxRXPayload         int
	minPayload           int
	crc                  CRCParams
	timeoutMicros        uint64
	allowStartByteErrors bool
	logger               Logger
	stats                StatsSink
}

// Option configures a new Engine, following the same functional-options
// shape as other Option/With... constructors in this codebase.
type Option func(*config)

// WithStartByte sets the frame sentinel byte. Default 129.
func WithStartByte(b byte) Option {
	return func(c *config) { c.startByte = b }
}

// WithDelimiterByte sets the COBS delimiter and frame terminator. Default 0;
// strongly recommended to remain 0.
func WithDelimiterByte(b byte) Option {
	return func(c *config) { c.delimiterByte = b }
}

// WithMaxTXPayload sets the capacity of the TX payload region, 1-254.
func WithMaxTXPayload(n int) Option {
	return func(c *config) { c.maxTXPayload = n }
}

// WithMaxRXPayload sets the capacity of the RX payload region, 1-254.
func WithMaxRXPayload(n int) Option {
	return func(c *config) { c.maxRXPayload = n }
}

// WithMinPayload sets the lower bound accepted in PAYLOAD_SIZE, 1-254.
func WithMinPayload(n int) Option {
	return func(c *config) { c.minPayload = n }
}

// WithCRC sets the CRC width and forward-polynomial parameters. Required:
// there is no default polynomial.
func WithCRC(p CRCParams) Option {
	return func(c *config) { c.crc = p }
}

// WithTimeout sets the inter-byte reception timeout. Default 20000us.
func WithTimeout(micros uint64) Option {
	return func(c *config) { c.timeoutMicros = micros }
}

// WithAllowStartByteErrors controls which status SEEK_START exhaustion
// without a start byte yields: the distinguished PacketStartByteNotFound
// (true) or the "nothing to do" NoBytesToParseFromBuffer (false, default).
// Receive returns a non-nil error in both cases.
func WithAllowStartByteErrors(allow bool) Option {
	return func(c *config) { c.allowStartByteErrors = allow }
}

// WithLogger wires an optional debug logger. Defaults to a no-op logger.
func WithLogger(l Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithStatsSink wires an optional metrics hook. Defaults to a no-op sink.
func WithStatsSink(s StatsSink) Option {
	return func(c *config) { c.stats = s }
}

func defaultConfig() config {
	return config{
		startByte:            DefaultStartByte,
		delimiterByte:        DefaultDelimiterByte,
		maxTXPayload:         254,
		maxRXPayload:         254,
		minPayload:           1,
		timeoutMicros:        DefaultTimeoutMicros,
		allowStartByteErrors: false,
		logger:               nullLogger{},
		stats:                nullStats{},
	}
}
