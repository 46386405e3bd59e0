package models

// FieldID is the reserved record key holding the identifier.
const FieldID = "id"

// FieldType is the conventional record key naming the media kind
// ("video", "audio", ...). It is never required or validated; the stats
// endpoint groups by it when present.
const FieldType = "type"

// Record is a single media entry: a schema-less JSON object. The reserved
// "id" key holds the record identifier assigned by the store; every other
// key is caller-supplied and stored as-is, with no shape or type checks.
type Record map[string]any

// NewRecord builds a record from the supplied fields with the given id.
// A caller-supplied "id" field is discarded: the identifier is always
// store-assigned.
func NewRecord(id string, fields Record) Record {
	rec := make(Record, len(fields)+1)
	for k, v := range fields {
		rec[k] = v
	}
	rec[FieldID] = id
	return rec
}

// ID returns the record identifier, or "" when the id field is absent or
// not a string.
func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// Type returns the media kind field, or "" when absent or not a string.
func (r Record) Type() string {
	t, _ := r[FieldType].(string)
	return t
}

// Merge overwrites r key-by-key with the supplied fields, leaving keys not
// present in fields untouched. The id key cannot be overwritten.
func (r Record) Merge(fields Record) {
	for k, v := range fields {
		if k == FieldID {
			continue
		}
		r[k] = v
	}
}

// Clone returns a top-level copy of the record so callers never alias
// store-owned maps. Nested values are shared; merges are shallow by
// contract, so top-level isolation is sufficient.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
