package ntp

import (
	"math"
	"time"
)

const (
	EraLength     int64 = 4_294_967_296 // 2^32
	UnixEraOffset int64 = 2_208_988_800 // 1970 - 1900 in seconds
)

// Time splits now into NTP-era integer seconds and the 2^32-scaled
// fraction of a second.
func Time(now time.Time) (secs, frac uint32) {
	return split(now.Unix(), float64(now.Nanosecond()))
}

// Timestamp packs now into the 64-bit wire encoding.
func Timestamp(now time.Time) TimestampEncoded {
	secs, frac := Time(now)
	return TimestampEncoded(secs)<<32 | TimestampEncoded(frac)
}

// split scales nsec nanoseconds into units of 1/2^32 seconds. A
// fraction that rounds up to a whole second carries into the seconds
// field instead of overflowing the 32-bit fraction.
func split(sec int64, nsec float64) (uint32, uint32) {
	frac := math.Round(nsec / 1e9 * float64(EraLength))
	if frac >= float64(EraLength) {
		sec++
		frac = 0
	}
	return uint32(sec + UnixEraOffset), uint32(frac)
}

// NTPTimestampToTime is the inverse of Timestamp, with microsecond
// resolution.
func NTPTimestampToTime(ntpTimestamp TimestampEncoded) time.Time {
	sec := int64(ntpTimestamp>>32) - UnixEraOffset
	usec := math.Round(float64(ntpTimestamp&0xffffffff) / float64(EraLength) * 1e6)
	return time.Unix(sec, int64(usec)*1e3)
}
