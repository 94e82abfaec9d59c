package codebook

import "errors"

// ErrBinaryInput reports content that appears to be binary.
var ErrBinaryInput = errors.New("binary input detected")

const (
	// SniffLen is how many leading bytes are inspected to classify a file.
	SniffLen = 8000

	minBinarySample = 64
	maxControlPct   = 2
)

// SniffContent returns ErrBinaryInput when the leading bytes of a file look
// binary: any NUL byte, or a share of control bytes at or above
// maxControlPct once the sample is long enough to judge.
func SniffContent(sample []byte) error {
	if len(sample) > SniffLen {
		sample = sample[:SniffLen]
	}
	var control int
	for _, b := range sample {
		if b == 0x00 {
			return ErrBinaryInput
		}
		if isControlByte(b) {
			control++
		}
	}
	if len(sample) >= minBinarySample && control*100 >= len(sample)*maxControlPct {
		return ErrBinaryInput
	}
	return nil
}

// LooksBinary is SniffContent as a predicate.
func LooksBinary(sample []byte) bool {
	return SniffContent(sample) != nil
}

func isControlByte(b byte) bool {
	if b < 0x09 {
		return true
	}
	if b > 0x0D && b < 0x20 {
		return true
	}
	if b == 0x7F {
		return true
	}
	return false
}
