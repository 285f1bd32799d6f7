package sentence

import (
	"fmt"
	"math"

	"github.com/relabs-tech/heading_streamer/internal/heading"
)

// EncodeHDT renders one NMEA-0183 HDT sentence:
//
//	$<TT>HDT,<DDD.D>,T*<HH>\r\n
//
// talker is the two-character talker id. The heading is rounded to one
// decimal and normalized again afterwards, so a value that rounds up to
// 360.0 frames as 000.0.
func EncodeHDT(talker string, headingDeg float64) []byte {
	deg := heading.Normalize(math.Round(headingDeg*10) / 10)
	payload := fmt.Sprintf("%sHDT,%05.1f,T", talker, deg)
	return []byte(fmt.Sprintf("$%s*%02X\r\n", payload, Checksum(payload)))
}

// Checksum XORs every byte of the payload between '$' and '*'. It runs over
// the payload's actual length; a fixed byte count would silently miscompute
// the sum for any other talker or field width.
func Checksum(payload string) byte {
	var sum byte
	for i := 0; i < len(payload); i++ {
		sum ^= payload[i]
	}
	return sum
}
