// Package usbtransport implements a framelink.Transport over a USB-HID
// serial adapter, for running the link against real hardware. Devices are
// found through HID enumeration only; an adapter that exposes no HID
// interface (such as a plain USB-CDC device) is not found.
package usbtransport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/usb"
)

// ErrUSBNotSupported is returned when the platform was built without the
// karalabe/usb backend (no CGO, or an unsupported OS).
var ErrUSBNotSupported = errors.New("usbtransport: usb support is missing")

// Config selects which USB device to open.
type Config struct {
	VendorID  uint16
	ProductID uint16

	// ReadPollInterval is stored in the Transport's configuration but no
	// read path uses it: each refill issues a plain usb.Device.Read with no
	// time bound applied by this package.
	ReadPollInterval time.Duration
}

// DefaultReadPollInterval is the ReadPollInterval that Open stores when the
// Config leaves it unset.
const DefaultReadPollInterval = 2 * time.Millisecond

// Transport adapts a karalabe/usb device handle to framelink.Transport.
// Reads are buffered internally since USB HID reads come back in
// report-sized chunks, not one byte at a time.
type Transport struct {
	mu   sync.Mutex
	dev  usb.Device
	cfg  Config
	pend []byte
}

// Open enumerates USB HID devices matching cfg's vendor/product ID and opens
// the first one found.
func Open(cfg Config) (*Transport, error) {
	if !usb.Supported() {
		return nil, ErrUSBNotSupported
	}
	if cfg.ReadPollInterval <= 0 {
		cfg.ReadPollInterval = DefaultReadPollInterval
	}

	infos, err := usb.EnumerateHid(cfg.VendorID, cfg.ProductID)
	if err != nil {
		return nil, fmt.Errorf("usbtransport: enumerate: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("usbtransport: no device matching vid=0x%04x pid=0x%04x", cfg.VendorID, cfg.ProductID)
	}

	dev, err := infos[0].Open()
	if err != nil {
		return nil, fmt.Errorf("usbtransport: open: %w", err)
	}
	return &Transport{dev: dev, cfg: cfg}, nil
}

// Close releases the underlying USB device handle.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dev.Close()
}

// Available reports how many bytes are ready to be consumed. It issues one
// usb.Device.Read to top up the internal buffer first, so it returns only
// after that read does.
func (t *Transport) Available() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fill()
	return len(t.pend)
}

// ReadByte implements framelink.Transport.
func (t *Transport) ReadByte() (byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pend) == 0 {
		t.fill()
	}
	if len(t.pend) == 0 {
		return 0, false
	}
	b := t.pend[0]
	t.pend = t.pend[1:]
	return b, true
}

// fill issues one read against the USB device and appends whatever came
// back to the pending buffer. Must be called with t.mu held.
func (t *Transport) fill() {
	buf := make([]byte, 64) // HID report size on every adapter this pack targets
	n, err := t.dev.Read(buf)
	if err != nil || n <= 0 {
		return
	}
	t.pend = append(t.pend, buf[:n]...)
}

// WriteAll implements framelink.Transport: blocks until every byte of p has
// been handed to the device.
func (t *Transport) WriteAll(p []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for len(p) > 0 {
		n, err := t.dev.Write(p)
		if err != nil {
			return fmt.Errorf("usbtransport: write: %w", err)
		}
		if n == 0 {
			return errors.New("usbtransport: write: device accepted 0 bytes")
		}
		p = p[n:]
	}
	return nil
}

// NowMicros implements framelink.Transport using the host's monotonic clock.
func (t *Transport) NowMicros() uint64 {
	return uint64(time.Now().UnixMicro())
}
