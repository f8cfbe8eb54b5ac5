// Package serial opens serial devices carrying pose and command streams.
package serial

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	ser "go.bug.st/serial"
)

// DefaultBaudRate is used when Options leaves the baud rate unset.
const DefaultBaudRate = 9600

// Options describes how to open a serial device.
type Options struct {
	BaudRate int    `json:"baud,omitempty"`
	DataBits int    `json:"data_bits,omitempty"`
	StopBits int    `json:"stop_bits,omitempty"`
	Parity   string `json:"parity,omitempty"`
}

// Normalize validates the options and fills in defaults for unset values.
func (o Options) Normalize() (Options, error) {
	opts := o
	if opts.BaudRate < 0 {
		return opts, errors.Errorf("invalid baud rate %d", opts.BaudRate)
	}
	if opts.BaudRate == 0 {
		opts.BaudRate = DefaultBaudRate
	}
	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, errors.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}
	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, errors.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	switch parity := strings.ToUpper(strings.TrimSpace(opts.Parity)); parity {
	case "", "N", "NONE":
		opts.Parity = "N"
	case "E", "EVEN":
		opts.Parity = "E"
	case "O", "ODD":
		opts.Parity = "O"
	default:
		return opts, errors.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}
	return opts, nil
}

// Mode converts the options into the mode the serial driver opens a port with.
func (o Options) Mode() (*ser.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}
	mode := &ser.Mode{BaudRate: opts.BaudRate, DataBits: opts.DataBits, StopBits: ser.OneStopBit}
	if opts.StopBits == 2 {
		mode.StopBits = ser.TwoStopBits
	}
	switch opts.Parity {
	case "E":
		mode.Parity = ser.EvenParity
	case "O":
		mode.Parity = ser.OddParity
	default:
		mode.Parity = ser.NoParity
	}
	return mode, nil
}

// Open attempts to open a serial device on the given path. Reads block until data arrives. It's
// a variable in case you need to override it during tests.
var Open = func(devicePath string, options Options) (io.ReadWriteCloser, error) {
	mode, err := options.Mode()
	if err != nil {
		return nil, err
	}
	device, err := ser.Open(devicePath, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open serial device %q", devicePath)
	}
	return device, nil
}
