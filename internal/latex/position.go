package latex

import (
	"math"

	"fortio.org/safecast"
)

// pos converts a line or column index into the diagnostic coordinate type.
// Documents are bounded editor buffers, so saturation never triggers in practice.
func pos(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		if n < 0 {
			return 0
		}
		return math.MaxUint32
	}
	return v
}
