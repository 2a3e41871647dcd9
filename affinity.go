//go:build linux

package stealpool

import (
	"golang.org/x/sys/unix"
)

// PinToCPU restricts the calling OS thread to cpu.
//
// The caller must be locked to its thread with runtime.LockOSThread,
// as every pool worker is.
func PinToCPU(cpu int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)
	return unix.SchedSetaffinity(0, &mask)
}
