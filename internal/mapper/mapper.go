package mapper

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"savetrail/internal/config"
	"savetrail/internal/save"
	"savetrail/internal/store"
)

// Rows from an object-keyed collection carry a sentinel instead of an array
// index. Two values distinguish whether the key field was injected from the
// map key or the element already carried it, so reconstruction knows when to
// strip it again.
const (
	keyedPosition       = int64(-1)
	keyedOwnKeyPosition = int64(-2)
)

// Map turns one save document into a relational write plan: scalars onto the
// snapshot row, collections into child-table rows, known object shapes into a
// table or the blob catch-all, and everything the schema does not know about
// into unmapped rows. Field names are preserved verbatim; only reserved-name
// collisions are rewritten, and those rewrites land in the plan's rename map.
func Map(doc *save.Document, schema *config.Schema) (*store.SnapshotInsert, error) {
	plan := &store.SnapshotInsert{
		GameDay: doc.GameDay(),
		Renames: map[string]string{},
		Raw:     doc.Raw,
	}

	for _, scalar := range schema.Scalars {
		if !doc.Has(scalar.Field) {
			continue
		}
		column := columnName(plan, store.RootTable, scalar.Field)
		value, err := convertValue(doc.Fields[scalar.Field], scalar.Type)
		if err != nil {
			return nil, fmt.Errorf("mapping scalar %s: %w", scalar.Field, err)
		}
		plan.Scalars = append(plan.Scalars, store.ColumnValue{Column: column, Value: value})
	}

	for i := range schema.Collections {
		coll := &schema.Collections[i]
		if !doc.Has(coll.Field) {
			continue
		}
		child, err := mapCollection(plan, doc.Fields[coll.Field], coll)
		if err != nil {
			return nil, fmt.Errorf("mapping collection %s: %w", coll.Field, err)
		}
		if child != nil {
			plan.Children = append(plan.Children, *child)
		}
	}

	for i := range schema.Objects {
		obj := &schema.Objects[i]
		if !doc.Has(obj.Field) {
			continue
		}
		if err := mapObject(plan, doc.Fields[obj.Field], obj); err != nil {
			return nil, fmt.Errorf("mapping object %s: %w", obj.Field, err)
		}
	}

	// Unknown keys are captured, never dropped and never fatal: schema drift
	// in the source document must not break ingestion.
	unknown := make([]string, 0)
	for field := range doc.Fields {
		if !schema.IsMapped(field) {
			unknown = append(unknown, field)
		}
	}
	sort.Strings(unknown)
	for _, field := range unknown {
		payload, err := json.Marshal(doc.Fields[field])
		if err != nil {
			return nil, fmt.Errorf("encoding unmapped field %s: %w", field, err)
		}
		plan.Unmapped = append(plan.Unmapped, store.UnmappedField{Field: field, Payload: payload})
	}

	return plan, nil
}

func columnName(plan *store.SnapshotInsert, table, field string) string {
	column, renamed := store.PhysicalColumn(table, field)
	if renamed {
		plan.Renames[table+"."+column] = field
	}
	return column
}

func mapCollection(plan *store.SnapshotInsert, value any, coll *config.Collection) (*store.ChildInsert, error) {
	columns := make([]string, 0, len(coll.Columns)+1)
	columns = append(columns, "position")
	for _, col := range coll.Columns {
		columns = append(columns, columnName(plan, coll.Table, col.Field))
	}

	child := &store.ChildInsert{Table: coll.Table, Columns: columns}

	appendElement := func(position int64, element any, key string) error {
		obj, isObject := element.(map[string]any)
		if isObject && key != "" {
			if _, exists := obj[coll.KeyField]; exists {
				position = keyedOwnKeyPosition
			} else {
				// The map key is the element's identity; inject it so keyed
				// and array collections share one column set.
				clone := make(map[string]any, len(obj)+1)
				for k, v := range obj {
					clone[k] = v
				}
				clone[coll.KeyField] = key
				obj = clone
			}
		}

		row := make([]any, 0, len(columns))
		row = append(row, position)

		for _, col := range coll.Columns {
			var raw any
			switch {
			case isObject:
				raw = obj[col.Field]
			case len(coll.Columns) == 1:
				// Scalar elements (id lists and the like) fill the single
				// declared column.
				raw = element
			default:
				raw = nil
			}
			converted, err := convertValue(raw, col.Type)
			if err != nil {
				return fmt.Errorf("element %d field %s: %w", position, col.Field, err)
			}
			row = append(row, converted)
		}

		child.Rows = append(child.Rows, row)
		return nil
	}

	switch v := value.(type) {
	case []any:
		for i, element := range v {
			if err := appendElement(int64(i), element, ""); err != nil {
				return nil, err
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if err := appendElement(keyedPosition, v[key], key); err != nil {
				return nil, err
			}
		}
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("expected array or object, got %T", value)
	}

	if len(child.Rows) == 0 {
		return nil, nil
	}
	return child, nil
}

func mapObject(plan *store.SnapshotInsert, value any, obj *config.Object) error {
	if value == nil {
		return nil
	}

	if obj.Mode == config.ObjectModeBlob {
		payload, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encoding blob: %w", err)
		}
		plan.Unmapped = append(plan.Unmapped, store.UnmappedField{Field: obj.Field, Payload: payload})
		return nil
	}

	fields, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", value)
	}

	columns := []string{"position"}
	row := []any{int64(0)}
	for _, col := range obj.Columns {
		columns = append(columns, columnName(plan, obj.Table, col.Field))
		converted, err := convertValue(fields[col.Field], col.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", col.Field, err)
		}
		row = append(row, converted)
	}

	plan.Children = append(plan.Children, store.ChildInsert{
		Table:   obj.Table,
		Columns: columns,
		Rows:    [][]any{row},
	})
	return nil
}

// convertValue coerces a decoded JSON value to its declared column type.
// Mismatches yield NULL rather than an error: a drifting source field must
// not fail ingestion, and the value stays recoverable from the raw document.
func convertValue(value any, typ string) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch typ {
	case config.TypeText:
		switch v := value.(type) {
		case string:
			return v, nil
		case json.Number:
			return v.String(), nil
		case bool:
			return strconv.FormatBool(v), nil
		default:
			return nil, nil
		}
	case config.TypeInteger:
		num, ok := value.(json.Number)
		if !ok {
			return nil, nil
		}
		i, err := num.Int64()
		if err != nil {
			// Some integer-ish game fields show up with a fractional part.
			f, ferr := num.Float64()
			if ferr != nil {
				return nil, nil
			}
			return int64(f), nil
		}
		return i, nil
	case config.TypeReal:
		num, ok := value.(json.Number)
		if !ok {
			return nil, nil
		}
		f, err := num.Float64()
		if err != nil {
			return nil, nil
		}
		return f, nil
	case config.TypeBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case json.Number:
			i, err := v.Int64()
			if err != nil {
				return nil, nil
			}
			return i != 0, nil
		default:
			return nil, nil
		}
	case config.TypeCurrency:
		var text string
		switch v := value.(type) {
		case json.Number:
			text = v.String()
		case string:
			text = v
		default:
			return nil, nil
		}
		d, err := decimal.NewFromString(text)
		if err != nil {
			return nil, nil
		}
		return d, nil
	case config.TypeJSON:
		payload, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encoding json value: %w", err)
		}
		return string(payload), nil
	default:
		return nil, fmt.Errorf("unknown column type: %s", typ)
	}
}
