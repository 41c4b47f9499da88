package fixity

import (
	"regexp"
	"strings"

	"github.com/Sternrassler/yudl-client/pkg/pagination"
)

// Record fields of the fixity report view.
const (
	FieldFilename  = "file_1"
	FieldFileID    = "fid"
	FieldState     = "state"
	FieldMediaID   = "mid"
	FieldPerformed = "performed"
)

// Entry is one fixity check result.
type Entry struct {
	Filename  string
	State     string
	MediaID   string
	FileID    string
	Performed string
}

// Row returns the entry in report column order.
func (e Entry) Row() []string {
	return []string{e.Filename, e.State, e.MediaID, e.FileID, e.Performed}
}

// States used as metric label values. Any other reported state is counted
// as StateOther.
const (
	StatePassed = "passed"
	StateFailed = "failed"
	StateOther  = "other"
)

// StateLabel maps a reported fixity state onto the fixed set of metric
// label values.
func StateLabel(state string) string {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case StatePassed:
		return StatePassed
	case StateFailed:
		return StateFailed
	default:
		return StateOther
	}
}

var datetimeAttr = regexp.MustCompile(`datetime="([^"]+)"`)

// ExtractDatetime returns the value of the first datetime="..." attribute in
// performed (the view renders a <time> element), or the trimmed input when
// there is none.
func ExtractDatetime(performed string) string {
	if m := datetimeAttr.FindStringSubmatch(performed); m != nil {
		return m[1]
	}
	return strings.TrimSpace(performed)
}

// Decoder builds entries from fixity report records. Every record decodes;
// an entry missing its filename or file id is the end-of-data sentinel.
type Decoder struct{}

// Decode implements pagination.Decoder.
func (Decoder) Decode(r pagination.Record) (Entry, bool) {
	return Entry{
		Filename:  field(r, FieldFilename),
		State:     field(r, FieldState),
		MediaID:   field(r, FieldMediaID),
		FileID:    field(r, FieldFileID),
		Performed: ExtractDatetime(field(r, FieldPerformed)),
	}, true
}

// IsSentinel implements pagination.Decoder.
func (Decoder) IsSentinel(e Entry) bool {
	return e.Filename == "" || e.FileID == ""
}

func field(r pagination.Record, key string) string {
	v, _ := r.Field(key)
	return strings.TrimSpace(v)
}
