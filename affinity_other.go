//go:build !linux

package stealpool

// PinToCPU always fails outside Linux.
func PinToCPU(int) error {
	return ErrPinUnsupported
}
