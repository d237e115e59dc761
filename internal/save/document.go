package save

import (
	"encoding/json"
	"time"
)

// Document is one decoded save file: a tree of scalars, arrays of objects,
// and nested objects keyed by the game's top-level field names. Numbers are
// kept as json.Number so currency survives with source precision.
type Document struct {
	Fields     map[string]any
	Raw        []byte
	SourceFile string
}

func (d *Document) Has(field string) bool {
	_, ok := d.Fields[field]
	return ok
}

func (d *Document) String(field string) string {
	s, _ := d.Fields[field].(string)
	return s
}

func (d *Document) Number(field string) (json.Number, bool) {
	n, ok := d.Fields[field].(json.Number)
	return n, ok
}

// GameDay derives the in-game day counter from the save's date field as whole
// days since the Unix epoch. Snapshots with an unparseable date land on day
// zero rather than failing ingestion; trend math keys on this value.
func (d *Document) GameDay() int64 {
	raw := d.String("date")
	if raw == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return 0
	}
	return t.Unix() / 86400
}

// CollectionLen counts the elements of an array or keyed-object field.
func (d *Document) CollectionLen(field string) int {
	switch v := d.Fields[field].(type) {
	case []any:
		return len(v)
	case map[string]any:
		return len(v)
	default:
		return 0
	}
}
