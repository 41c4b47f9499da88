package fids

import "github.com/Sternrassler/yudl-client/pkg/pagination"

// Key is the record field holding the file identifier.
const Key = "fid"

// Decoder extracts bare identifiers from fid export records. Records without
// a fid are skipped; an empty fid is the end-of-data sentinel.
type Decoder struct{}

// Decode implements pagination.Decoder.
func (Decoder) Decode(r pagination.Record) (string, bool) {
	return r.Field(Key)
}

// IsSentinel implements pagination.Decoder.
func (Decoder) IsSentinel(fid string) bool {
	return fid == ""
}
