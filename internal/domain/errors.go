package domain

import "errors"

// Sentinel errors used across layers, following the core's error taxonomy.
var (
	// ErrCapacityExceeded is returned by a publish/write call whose payload
	// exceeds the destination's fixed capacity. Programmer error, fatal.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrOutOfRange is returned for an out-of-bounds index, level, or channel.
	ErrOutOfRange = errors.New("out of range")
	// ErrNotReady is returned when an operation is attempted before the
	// component it depends on has been configured or has data.
	ErrNotReady = errors.New("not ready")
	// ErrDomainMismatch is returned when records from mismatched clock
	// domains are mixed.
	ErrDomainMismatch = errors.New("clock domain mismatch")

	// ErrDeviceLost is returned by a DeviceSource when the underlying
	// serial/USB link drops out entirely (no response, not just a bad frame).
	ErrDeviceLost = errors.New("device lost")
	// ErrCRC is returned by a DeviceSource when a frame fails its checksum.
	ErrCRC = errors.New("crc error")
	// ErrSerialFault is returned by a DeviceSource for a transport-level
	// fault (framing error, parity error, buffer overrun) short of a full
	// device loss.
	ErrSerialFault = errors.New("serial fault")
)
