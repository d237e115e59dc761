package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Schema is the field mapping table: it decides, per top-level save document
// key, whether values land on the snapshot row, in a child table, or in the
// unmapped catch-all. It is loaded from YAML so the mapping can evolve with
// the game without a rebuild.
type Schema struct {
	Version     int          `yaml:"version"`
	Scalars     []Scalar     `yaml:"scalars"`
	Collections []Collection `yaml:"collections"`
	Objects     []Object     `yaml:"objects"`

	scalarIndex     map[string]*Scalar
	collectionIndex map[string]*Collection
	objectIndex     map[string]*Object
}

// Scalar maps a top-level scalar field to a typed column on the snapshot row.
type Scalar struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type"`
}

// Collection maps an array-of-objects (or object-keyed-by-id) field to a
// child table, one row per element. KeyField names the element field that a
// keyed collection's map key is injected into when the element lacks it.
type Collection struct {
	Field    string   `yaml:"field"`
	Table    string   `yaml:"table"`
	KeyField string   `yaml:"key_field"`
	Columns  []Column `yaml:"columns"`
}

// Object maps a nested-object field either to a single-row child table
// (mode: table) or to the catch-all blob store (mode: blob).
type Object struct {
	Field   string   `yaml:"field"`
	Mode    string   `yaml:"mode"`
	Table   string   `yaml:"table"`
	Columns []Column `yaml:"columns"`
}

type Column struct {
	Field string `yaml:"field"`
	Type  string `yaml:"type"`
}

const (
	TypeText     = "text"
	TypeInteger  = "integer"
	TypeReal     = "real"
	TypeBoolean  = "boolean"
	TypeCurrency = "currency"
	TypeJSON     = "json"
)

const (
	ObjectModeTable = "table"
	ObjectModeBlob  = "blob"
)

func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	return ParseSchema(data)
}

func ParseSchema(data []byte) (*Schema, error) {
	var schema Schema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	if err := validateSchema(&schema); err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	schema.scalarIndex = make(map[string]*Scalar)
	for i := range schema.Scalars {
		s := &schema.Scalars[i]
		schema.scalarIndex[s.Field] = s
	}

	schema.collectionIndex = make(map[string]*Collection)
	for i := range schema.Collections {
		c := &schema.Collections[i]
		if c.Table == "" {
			c.Table = c.Field
		}
		if c.KeyField == "" {
			c.KeyField = "id"
		}
		schema.collectionIndex[c.Field] = c
	}

	schema.objectIndex = make(map[string]*Object)
	for i := range schema.Objects {
		o := &schema.Objects[i]
		if o.Mode == "" {
			o.Mode = ObjectModeBlob
		}
		if o.Mode == ObjectModeTable && o.Table == "" {
			o.Table = o.Field
		}
		schema.objectIndex[o.Field] = o
	}

	return &schema, nil
}

func validTypes() map[string]struct{} {
	return map[string]struct{}{
		TypeText:     {},
		TypeInteger:  {},
		TypeReal:     {},
		TypeBoolean:  {},
		TypeCurrency: {},
		TypeJSON:     {},
	}
}

func validateSchema(s *Schema) error {
	if s.Version != 1 {
		return fmt.Errorf("unsupported version: %d", s.Version)
	}
	if len(s.Scalars) == 0 {
		return fmt.Errorf("at least one scalar mapping is required")
	}
	if len(s.Collections) == 0 {
		return fmt.Errorf("at least one collection mapping is required")
	}

	types := validTypes()
	fields := make(map[string]struct{})
	tables := make(map[string]struct{})

	claimField := func(field string) error {
		if strings.TrimSpace(field) == "" {
			return fmt.Errorf("mapping with empty field name")
		}
		if _, exists := fields[field]; exists {
			return fmt.Errorf("duplicate field mapping: %s", field)
		}
		fields[field] = struct{}{}
		return nil
	}

	claimTable := func(table string) error {
		key := strings.ToLower(table)
		if _, exists := tables[key]; exists {
			return fmt.Errorf("duplicate table name: %s", table)
		}
		tables[key] = struct{}{}
		return nil
	}

	checkColumns := func(owner string, columns []Column) error {
		if len(columns) == 0 {
			return fmt.Errorf("%s has no columns", owner)
		}
		seen := make(map[string]struct{})
		for _, col := range columns {
			if strings.TrimSpace(col.Field) == "" {
				return fmt.Errorf("%s has column with empty field", owner)
			}
			// SQLite identifiers are case-insensitive; collisions must be
			// caught on the folded name.
			key := strings.ToLower(col.Field)
			if _, exists := seen[key]; exists {
				return fmt.Errorf("%s has duplicate column: %s", owner, col.Field)
			}
			seen[key] = struct{}{}
			if _, ok := types[col.Type]; !ok {
				return fmt.Errorf("%s column %s has unknown type: %s", owner, col.Field, col.Type)
			}
		}
		return nil
	}

	for _, scalar := range s.Scalars {
		if err := claimField(scalar.Field); err != nil {
			return err
		}
		if _, ok := types[scalar.Type]; !ok {
			return fmt.Errorf("scalar %s has unknown type: %s", scalar.Field, scalar.Type)
		}
	}

	for _, coll := range s.Collections {
		if err := claimField(coll.Field); err != nil {
			return err
		}
		table := coll.Table
		if table == "" {
			table = coll.Field
		}
		if err := claimTable(table); err != nil {
			return err
		}
		if err := checkColumns(fmt.Sprintf("collection %s", coll.Field), coll.Columns); err != nil {
			return err
		}
	}

	for _, obj := range s.Objects {
		if err := claimField(obj.Field); err != nil {
			return err
		}
		mode := obj.Mode
		if mode == "" {
			mode = ObjectModeBlob
		}
		switch mode {
		case ObjectModeBlob:
			if len(obj.Columns) > 0 {
				return fmt.Errorf("object %s is blob mode but declares columns", obj.Field)
			}
		case ObjectModeTable:
			table := obj.Table
			if table == "" {
				table = obj.Field
			}
			if err := claimTable(table); err != nil {
				return err
			}
			if err := checkColumns(fmt.Sprintf("object %s", obj.Field), obj.Columns); err != nil {
				return err
			}
		default:
			return fmt.Errorf("object %s has unknown mode: %s", obj.Field, mode)
		}
	}

	return nil
}

func (s *Schema) ScalarByField(field string) (*Scalar, bool) {
	if s == nil {
		return nil, false
	}
	scalar, ok := s.scalarIndex[field]
	return scalar, ok
}

func (s *Schema) CollectionByField(field string) (*Collection, bool) {
	if s == nil {
		return nil, false
	}
	coll, ok := s.collectionIndex[field]
	return coll, ok
}

func (s *Schema) ObjectByField(field string) (*Object, bool) {
	if s == nil {
		return nil, false
	}
	obj, ok := s.objectIndex[field]
	return obj, ok
}

// IsMapped reports whether a top-level field has any declared destination.
// Unmapped fields never fail ingestion; they route to the catch-all.
func (s *Schema) IsMapped(field string) bool {
	if _, ok := s.ScalarByField(field); ok {
		return true
	}
	if _, ok := s.CollectionByField(field); ok {
		return true
	}
	_, ok := s.ObjectByField(field)
	return ok
}

// Tables lists every child table the schema declares.
func (s *Schema) Tables() []string {
	if s == nil {
		return nil
	}
	var tables []string
	for _, coll := range s.Collections {
		tables = append(tables, coll.Table)
	}
	for _, obj := range s.Objects {
		if obj.Mode == ObjectModeTable {
			tables = append(tables, obj.Table)
		}
	}
	return tables
}
