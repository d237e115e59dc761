package config

import (
	"strings"
	"testing"
)

const minimalSchema = `version: 1
scalars:
  - field: date
    type: text
  - field: balance
    type: currency
collections:
  - field: employees
    columns:
      - field: name
        type: text
      - field: salary
        type: currency
`

func TestParseSchema(t *testing.T) {
	t.Run("minimal schema parses", func(t *testing.T) {
		schema, err := ParseSchema([]byte(minimalSchema))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		scalar, ok := schema.ScalarByField("balance")
		if !ok {
			t.Fatalf("expected balance scalar")
		}
		if scalar.Type != TypeCurrency {
			t.Fatalf("expected currency type, got %s", scalar.Type)
		}

		coll, ok := schema.CollectionByField("employees")
		if !ok {
			t.Fatalf("expected employees collection")
		}
		if coll.Table != "employees" {
			t.Fatalf("expected table to default to field, got %s", coll.Table)
		}
		if coll.KeyField != "id" {
			t.Fatalf("expected key_field to default to id, got %s", coll.KeyField)
		}
	})

	t.Run("default schema parses", func(t *testing.T) {
		schema, err := ParseSchema([]byte(DefaultSchemaYAML))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !schema.IsMapped("employees") {
			t.Fatalf("expected employees to be mapped")
		}
		if !schema.IsMapped("balance") {
			t.Fatalf("expected balance to be mapped")
		}
		if schema.IsMapped("someModdedField") {
			t.Fatalf("did not expect unknown field to be mapped")
		}

		market, ok := schema.CollectionByField("marketValues")
		if !ok {
			t.Fatalf("expected marketValues collection")
		}
		if market.KeyField != "component" {
			t.Fatalf("expected component key field, got %s", market.KeyField)
		}

		office, ok := schema.ObjectByField("office")
		if !ok {
			t.Fatalf("expected office object")
		}
		if office.Mode != ObjectModeBlob {
			t.Fatalf("expected blob mode, got %s", office.Mode)
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		_, err := ParseSchema([]byte("version: 9\nscalars:\n  - field: date\n    type: text\ncollections:\n  - field: x\n    columns:\n      - field: y\n        type: text\n"))
		if err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("no scalars", func(t *testing.T) {
		_, err := ParseSchema([]byte("version: 1\ncollections:\n  - field: x\n    columns:\n      - field: y\n        type: text\n"))
		if err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := ParseSchema([]byte(strings.Replace(minimalSchema, "type: currency", "type: money", 1)))
		if err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("duplicate field mapping", func(t *testing.T) {
		doubled := minimalSchema + `  - field: employees
    table: employees2
    columns:
      - field: name
        type: text
`
		if _, err := ParseSchema([]byte(doubled)); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("case-folded duplicate column", func(t *testing.T) {
		_, err := ParseSchema([]byte(`version: 1
scalars:
  - field: date
    type: text
collections:
  - field: employees
    columns:
      - field: name
        type: text
      - field: Name
        type: text
`))
		if err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("blob object with columns", func(t *testing.T) {
		_, err := ParseSchema([]byte(minimalSchema + `objects:
  - field: office
    mode: blob
    columns:
      - field: width
        type: integer
`))
		if err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestSchemaTables(t *testing.T) {
	schema, err := ParseSchema([]byte(DefaultSchemaYAML))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tables := schema.Tables()
	want := map[string]bool{"employees": false, "transactions": false, "marketValues": false}
	for _, table := range tables {
		if _, ok := want[table]; ok {
			want[table] = true
		}
	}
	for table, found := range want {
		if !found {
			t.Fatalf("expected table %s in %v", table, tables)
		}
	}
}
