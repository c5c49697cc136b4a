package cli

import "fmt"

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// FormatBytes formats a byte count for humans: "512 B", "1.50 KB".
func FormatBytes(n int64) string {
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n) / 1024
	unit := 0
	for v >= 1024 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", v, byteUnits[unit])
}

// FormatBytesInt is FormatBytes for int counts.
func FormatBytesInt(n int) string {
	return FormatBytes(int64(n))
}
