package codebook

import "github.com/dustin/go-humanize"

// FormatSize renders a byte count for humans, e.g. "1.5 KiB".
func FormatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// FormatCount renders a count with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}
