package pipeline

import "time"

// publishedLayouts are tried in order against raw source timestamps. The first
// two cover the feed and search backends; the last two accept already
// normalized values round-tripping through exports or stored runs.
var publishedLayouts = []string{
	"Mon, 02 Jan 2006 15:04:05 MST",
	"20060102150405",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05",
}

// NormalizeDate parses a raw source timestamp and converts it to naive local
// time: the instant is shifted into loc, then the wall-clock fields are kept
// and the zone discarded. Layouts without an explicit zone are read as UTC.
// The second return is false when no layout matches.
func NormalizeDate(raw string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range publishedLayouts {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		local := parsed.UTC().In(loc)
		return stripZone(local), true
	}
	return time.Time{}, false
}

// stripZone rebuilds t's wall clock in UTC so that comparisons and formatting
// ignore the zone it was derived in.
func stripZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
