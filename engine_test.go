package framelink

import (
	"errors"
	"testing"

	"github.com/sparques/framelink/internal/status"
	"github.com/sparques/framelink/transport/looptransport"
)

func ccittFalse16() CRCParams {
	return CRCParams{Width: CRCWidth16, Poly: 0x1021, Init: 0xFFFF, FinalXOR: 0x0000}
}

// newPipedPair returns an Engine pair wired over a cross-connected loopback
// link, for tests that only care about end-to-end round-tripping.
func newPipedPair(opts ...Option) (tx *Engine, rx *Engine) {
	a, b := looptransport.Pipe()
	base := append([]Option{WithCRC(ccittFalse16())}, opts...)
	return NewEngine(a, base...), NewEngine(b, base...)
}

// newUnpipedPair returns an Engine pair backed by two independent,
// un-cross-wired Transports, so a test can drain exactly what tx emitted,
// mutate it, and Feed it to rx by hand.
func newUnpipedPair(opts ...Option) (tx *Engine, txT *looptransport.Transport, rx *Engine, rxT *looptransport.Transport) {
	txT, rxT = looptransport.New(), looptransport.New()
	base := append([]Option{WithCRC(ccittFalse16())}, opts...)
	tx = NewEngine(txT, base...)
	rx = NewEngine(rxT, base...)
	return
}

func TestFrameRoundTrip(t *testing.T) {
	for _, n := range []int{1, 10, 254} {
		tx, rx := newPipedPair()

		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i * 7)
		}
		if _, err := tx.WriteTX(payload, 0, n); err != nil {
			t.Fatalf("len=%d: WriteTX: %v", n, err)
		}
		if err := tx.Send(); err != nil {
			t.Fatalf("len=%d: Send: %v", n, err)
		}
		if tx.TXPayloadSize() != 0 {
			t.Fatalf("len=%d: TX not reset after Send", n)
		}

		if err := rx.Receive(); err != nil {
			t.Fatalf("len=%d: Receive: %v", n, err)
		}
		if rx.RXPayloadSize() != n {
			t.Fatalf("len=%d: RXPayloadSize = %d", n, rx.RXPayloadSize())
		}
		got := make([]byte, n)
		if _, err := rx.ReadRX(got, 0, n); err != nil {
			t.Fatalf("len=%d: ReadRX: %v", n, err)
		}
		if string(got) != string(payload) {
			t.Fatalf("len=%d: payload mismatch:\n got  %v\n want %v", n, got, payload)
		}
	}
}

func TestSpecConcreteFramedSend(t *testing.T) {
	// §8 scenario 3: framed send of 1,2,3,0,0,6,0,8,0,0 (10 bytes).
	payload := []byte{1, 2, 3, 0, 0, 6, 0, 8, 0, 0}
	tx, txT, rx, rxT := newUnpipedPair()

	if _, err := tx.WriteTX(payload, 0, len(payload)); err != nil {
		t.Fatalf("WriteTX: %v", err)
	}
	if err := tx.Send(); err != nil {
		t.Fatalf("Send: %v", err)
	}

	emitted := txT.Drain()
	if emitted[0] != DefaultStartByte {
		t.Fatalf("emitted[0] = %d, want START=%d", emitted[0], DefaultStartByte)
	}
	if emitted[1] != byte(len(payload)) {
		t.Fatalf("emitted[1] = %d, want PAYLOAD_SIZE=%d", emitted[1], len(payload))
	}
	// full frame: START, PAYLOAD_SIZE, OVERHEAD, N encoded bytes, DELIM, 2 CRC bytes
	wantLen := 2 + 1 + len(payload) + 1 + 2
	if len(emitted) != wantLen {
		t.Fatalf("emitted length = %d, want %d", len(emitted), wantLen)
	}

	rxT.Feed(emitted)
	if err := rx.Receive(); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	got := make([]byte, len(payload))
	if _, err := rx.ReadRX(got, 0, len(payload)); err != nil {
		t.Fatalf("ReadRX: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch: got %v want %v", got, payload)
	}
}

func TestCorruptCRCFails(t *testing.T) {
	// §8 scenario 4.
	payload := []byte{1, 2, 3, 0, 0, 6, 0, 8, 0, 0}
	tx, txT, rx, rxT := newUnpipedPair()
	if _, err := tx.WriteTX(payload, 0, len(payload)); err != nil {
		t.Fatalf("WriteTX: %v", err)
	}
	if err := tx.Send(); err != nil {
		t.Fatalf("Send: %v", err)
	}
	frame := txT.Drain()
	frame[len(frame)-1] ^= 0xFF // flip last CRC byte

	rxT.Feed(frame)
	err := rx.Receive()
	if !errors.Is(err, ErrCRCCheckFailed) {
		t.Fatalf("Receive error = %v, want ErrCRCCheckFailed", err)
	}
}

func TestEarlyDelimiterFails(t *testing.T) {
	// §8 scenario 5: inject a 0 byte into the middle of the encoded body.
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tx, txT, rx, rxT := newUnpipedPair()
	if _, err := tx.WriteTX(payload, 0, len(payload)); err != nil {
		t.Fatalf("WriteTX: %v", err)
	}
	if err := tx.Send(); err != nil {
		t.Fatalf("Send: %v", err)
	}
	frame := txT.Drain()
	// frame = START, SIZE, OVERHEAD, <10 encoded bytes>, DELIM, CRC(2)
	frame[5] = 0 // somewhere in the encoded body

	rxT.Feed(frame)
	err := rx.Receive()
	if !errors.Is(err, ErrDelimiterFoundTooEarly) {
		t.Fatalf("Receive error = %v, want ErrDelimiterFoundTooEarly", err)
	}
}

func TestPostambleTimeout(t *testing.T) {
	// §8 scenario 6: complete frame up to and including DELIM, no CRC bytes.
	payload := []byte{1, 2, 3}
	tx, txT, rx, rxT := newUnpipedPair()
	if _, err := tx.WriteTX(payload, 0, len(payload)); err != nil {
		t.Fatalf("WriteTX: %v", err)
	}
	if err := tx.Send(); err != nil {
		t.Fatalf("Send: %v", err)
	}
	frame := txT.Drain()
	truncated := frame[:len(frame)-2] // drop the 2 CRC bytes

	rxT.Feed(truncated)
	rxT.SetAutoTick(1000)
	err := rx.Receive()
	if !errors.Is(err, ErrPostambleTimeout) {
		t.Fatalf("Receive error = %v, want ErrPostambleTimeout", err)
	}
}

func TestPacketTimeoutDuringBody(t *testing.T) {
	tx, txT, rx, rxT := newUnpipedPair()
	payload := []byte{1, 2, 3, 4, 5}
	if _, err := tx.WriteTX(payload, 0, len(payload)); err != nil {
		t.Fatalf("WriteTX: %v", err)
	}
	if err := tx.Send(); err != nil {
		t.Fatalf("Send: %v", err)
	}
	frame := txT.Drain()
	truncated := frame[:4] // START, SIZE, OVERHEAD, 1 encoded byte; no DELIM

	rxT.Feed(truncated)
	rxT.SetAutoTick(1000)
	err := rx.Receive()
	if !errors.Is(err, ErrPacketTimeout) {
		t.Fatalf("Receive error = %v, want ErrPacketTimeout", err)
	}
}

func TestNoiseBeforeValidFrameIsConsumedSilently(t *testing.T) {
	tx, txT, rx, rxT := newUnpipedPair()
	payload := []byte{9, 9, 9}
	if _, err := tx.WriteTX(payload, 0, len(payload)); err != nil {
		t.Fatalf("WriteTX: %v", err)
	}
	if err := tx.Send(); err != nil {
		t.Fatalf("Send: %v", err)
	}
	frame := txT.Drain()

	noisy := append([]byte{0x00, 0x42, 0x00, 0xFF, 0x13}, frame...)
	rxT.Feed(noisy)

	if err := rx.Receive(); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	got := make([]byte, len(payload))
	if _, err := rx.ReadRX(got, 0, len(payload)); err != nil {
		t.Fatalf("ReadRX: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch: got %v want %v", got, payload)
	}
}

func TestNoBytesYieldsNoBytesToParseByDefault(t *testing.T) {
	_, _, rx, _ := newUnpipedPair()

	err := rx.Receive()
	if !errors.Is(err, ErrNoBytesToParseFromBuffer) {
		t.Fatalf("Receive error = %v, want ErrNoBytesToParseFromBuffer", err)
	}
}

func TestAllowStartByteErrorsPromotesToDistinguishedError(t *testing.T) {
	rxT := looptransport.New()
	rx := NewEngine(rxT, WithCRC(ccittFalse16()), WithAllowStartByteErrors(true))

	err := rx.Receive()
	if !errors.Is(err, ErrPacketStartByteNotFound) {
		t.Fatalf("Receive error = %v, want ErrPacketStartByteNotFound", err)
	}
}

func TestInvalidPayloadSizeBoundaries(t *testing.T) {
	for _, size := range []byte{1, 6} { // min-1, max+1
		rxT := looptransport.New()
		rx := NewEngine(rxT, WithCRC(ccittFalse16()), WithMinPayload(2), WithMaxRXPayload(5))

		rxT.Feed([]byte{DefaultStartByte, size})
		err := rx.Receive()
		if !errors.Is(err, ErrInvalidPayloadSize) {
			t.Fatalf("size=%d: Receive error = %v, want ErrInvalidPayloadSize", size, err)
		}
	}
}

func TestStaleEncodedStateIsRejected(t *testing.T) {
	// Engine.Send resets TX on success, so forcing OVERHEAD nonzero before a
	// second Send exercises the codec's own already-encoded guard the way a
	// caller mutating the buffer out-of-band would trip it.
	tx, _ := newPipedPair()
	if _, err := tx.WriteTX([]byte{1, 2, 3}, 0, 3); err != nil {
		t.Fatalf("WriteTX: %v", err)
	}
	if err := tx.Send(); err != nil {
		t.Fatalf("first Send: %v", err)
	}
	tx.tx.SetPayloadSize(3)
	tx.tx.SetOverhead(5)
	err := tx.Send()
	want := status.New(status.PayloadAlreadyEncoded)
	if !errors.Is(err, want) {
		t.Fatalf("second Send error = %v, want %v", err, want)
	}
}

func TestSetAllowStartByteErrorsTogglesAtRuntime(t *testing.T) {
	rxT := looptransport.New()
	rx := NewEngine(rxT, WithCRC(ccittFalse16()))

	err := rx.Receive()
	if !errors.Is(err, ErrNoBytesToParseFromBuffer) {
		t.Fatalf("before SetAllowStartByteErrors: Receive error = %v, want ErrNoBytesToParseFromBuffer", err)
	}

	rx.SetAllowStartByteErrors(true)
	err = rx.Receive()
	if !errors.Is(err, ErrPacketStartByteNotFound) {
		t.Fatalf("after SetAllowStartByteErrors(true): Receive error = %v, want ErrPacketStartByteNotFound", err)
	}

	rx.SetAllowStartByteErrors(false)
	err = rx.Receive()
	if !errors.Is(err, ErrNoBytesToParseFromBuffer) {
		t.Fatalf("after SetAllowStartByteErrors(false): Receive error = %v, want ErrNoBytesToParseFromBuffer", err)
	}
}

func TestCopyTXPayloadToRX(t *testing.T) {
	tx, _ := newPipedPair()
	payload := []byte{10, 20, 30, 40, 50}
	if _, err := tx.WriteTX(payload, 0, len(payload)); err != nil {
		t.Fatalf("WriteTX: %v", err)
	}

	if err := tx.CopyTXPayloadToRX(); err != nil {
		t.Fatalf("CopyTXPayloadToRX: %v", err)
	}
	if tx.TXPayloadSize() != len(payload) {
		t.Fatalf("TX buffer modified by CopyTXPayloadToRX: TXPayloadSize = %d", tx.TXPayloadSize())
	}
	if tx.RXPayloadSize() != len(payload) {
		t.Fatalf("RXPayloadSize = %d, want %d", tx.RXPayloadSize(), len(payload))
	}
	got := make([]byte, len(payload))
	if _, err := tx.ReadRX(got, 0, len(payload)); err != nil {
		t.Fatalf("ReadRX: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("payload mismatch: got %v want %v", got, payload)
	}
}

func TestCopyTXPayloadToRXTooLargeForRXCapacity(t *testing.T) {
	tx := NewEngine(looptransport.New(), WithCRC(ccittFalse16()), WithMaxTXPayload(10), WithMaxRXPayload(5))
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if _, err := tx.WriteTX(payload, 0, len(payload)); err != nil {
		t.Fatalf("WriteTX: %v", err)
	}

	err := tx.CopyTXPayloadToRX()
	if !errors.Is(err, ErrCopyPayloadTooLarge) {
		t.Fatalf("CopyTXPayloadToRX error = %v, want ErrCopyPayloadTooLarge", err)
	}
}

func TestBitHammerDetectsCorruption(t *testing.T) {
	// Flip every bit of every byte in a valid frame, one at a time, and
	// confirm Receive never silently accepts a corrupted frame as valid.
	payload := []byte{5, 10, 15, 20, 25}
	tx, txT, _, _ := newUnpipedPair()
	if _, err := tx.WriteTX(payload, 0, len(payload)); err != nil {
		t.Fatalf("WriteTX: %v", err)
	}
	if err := tx.Send(); err != nil {
		t.Fatalf("Send: %v", err)
	}
	good := txT.Drain()

	for byteIdx := 2; byteIdx < len(good); byteIdx++ { // skip START/SIZE, both checked independently
		for bit := 0; bit < 8; bit++ {
			corrupt := append([]byte(nil), good...)
			corrupt[byteIdx] ^= 1 << bit
			if string(corrupt) == string(good) {
				continue
			}

			rxT := looptransport.New()
			rx := NewEngine(rxT, WithCRC(ccittFalse16()))
			rxT.Feed(corrupt)
			err := rx.Receive()
			if err == nil {
				t.Fatalf("byte %d bit %d: corrupted frame accepted as valid", byteIdx, bit)
			}
		}
	}
}
