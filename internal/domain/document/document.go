package document

import (
	"regexp"
	"time"
)

// Document is an open-ended record as stored in a collection. Fields are not
// typed at compile time; the only structural requirement is a stable string
// "id" field. Temporal fields travel as ISO-8601 strings on the wire and are
// revived to time.Time on the way in.
type Document map[string]any

// ID returns the document key, or "" when the id field is missing or not a
// string.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// isoDatePattern matches the prefix of an ISO-8601 date-time string, the same
// shape the web client produced with Date.toISOString().
var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)

// isoLayouts are tried in order when reviving a matched string. Covers
// RFC 3339 with and without fractional seconds, and zone-less timestamps.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ReviveDates converts, in place, every top-level string field shaped like an
// ISO-8601 date-time into a time.Time. The pass is generic: any field matching
// the pattern is revived, so new temporal fields need no code change. Strings
// that match the pattern but fail to parse are left untouched.
func (d Document) ReviveDates() {
	for key, value := range d {
		s, ok := value.(string)
		if !ok || !isoDatePattern.MatchString(s) {
			continue
		}
		if t, ok := ParseISO(s); ok {
			d[key] = t
		}
	}
}

// ParseISO parses an ISO-8601 date-time string. Zone-less values are read as
// UTC, matching how the remote stores them.
func ParseISO(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
