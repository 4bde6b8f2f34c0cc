package codec

import (
	"math"
	"time"
)

// OLE automation dates count days since 1899-12-30 with the time of day as
// the fractional part. The value carries local wall-clock time.
const (
	unixEpochDays  = 25569
	microsPerDay   = 86_400_000_000
	minOLEDate     = -657435.0
	maxOLEDate     = 2958466.0
	microsPerDayF  = float64(microsPerDay)
	unixEpochDaysF = float64(unixEpochDays)
)

// now is replaced in tests
var now = time.Now

// DecodeTimestamp converts an OLE automation date to local time with
// microsecond precision. Values outside the OLE range fall back to now.
func DecodeTimestamp(value float64) time.Time {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < minOLEDate || value >= maxOLEDate {
		return now()
	}

	whole := math.Floor(value)
	days := int64(whole) - unixEpochDays
	fraction := int64(math.Round((value - whole) * microsPerDayF))

	wall := time.UnixMicro(days*microsPerDay + fraction).UTC()

	return time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), time.Local)
}

// EncodeTimestamp converts a time to an OLE automation date using its local
// wall-clock reading. It is the inverse of DecodeTimestamp.
func EncodeTimestamp(t time.Time) float64 {
	local := t.In(time.Local)
	wall := time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)

	micros := wall.UnixMicro()
	days := floorDiv(micros, microsPerDay)
	fraction := micros - days*microsPerDay

	return float64(days+unixEpochDays) + float64(fraction)/microsPerDayF
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}
