package usbtransport

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ResetLine drives an optional hardware reset/boot-select pin some
// USB-CDC/HID adapters wire up, toggled before the host opens the device —
// a host.Init()-then-bus-lookup shape generalized to a GPIO pin lookup via
// gpioreg.
type ResetLine struct {
	pin gpio.PinIO
}

// OpenResetLine initializes the local GPIO host and looks up pinName. Pass
// an empty pinName to indicate "no reset line wired" without an error.
func OpenResetLine(pinName string) (*ResetLine, error) {
	if pinName == "" {
		return nil, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("usbtransport: gpio host init: %w", err)
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("usbtransport: no such gpio pin %q", pinName)
	}
	return &ResetLine{pin: pin}, nil
}

// Pulse drives the reset line low then high, the way a device that latches
// reset on a falling edge expects, and leaves the pin high (deasserted).
func (r *ResetLine) Pulse() error {
	if r == nil {
		return nil
	}
	if err := r.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("usbtransport: reset low: %w", err)
	}
	if err := r.pin.Out(gpio.High); err != nil {
		return fmt.Errorf("usbtransport: reset high: %w", err)
	}
	return nil
}
