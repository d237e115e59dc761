package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"savetrail/internal/config"
	"savetrail/internal/store"
)

// RowSet is the stored image of one snapshot, as read back from the store.
type RowSet struct {
	Root     map[string]any
	Children map[string][]map[string]any
	Unmapped []store.UnmappedField
}

// Reconstruct inverts the mapping: given a snapshot's stored rows it rebuilds
// the save document's mapped values (unmapped payloads restore verbatim).
// Element fields the mapping never declared are the one lossy spot; the raw
// document column covers those.
func Reconstruct(schema *config.Schema, rows RowSet) (map[string]any, error) {
	doc := make(map[string]any)

	for _, scalar := range schema.Scalars {
		column := forwardColumn(store.RootTable, scalar.Field)
		value, ok := rows.Root[column]
		if !ok || value == nil {
			continue
		}
		restored, err := convertBack(value, scalar.Type)
		if err != nil {
			return nil, fmt.Errorf("restoring scalar %s: %w", scalar.Field, err)
		}
		doc[scalar.Field] = restored
	}

	for i := range schema.Collections {
		coll := &schema.Collections[i]
		tableRows, ok := rows.Children[coll.Table]
		if !ok || len(tableRows) == 0 {
			continue
		}
		restored, err := reconstructCollection(tableRows, coll)
		if err != nil {
			return nil, fmt.Errorf("restoring collection %s: %w", coll.Field, err)
		}
		doc[coll.Field] = restored
	}

	for i := range schema.Objects {
		obj := &schema.Objects[i]
		if obj.Mode != config.ObjectModeTable {
			continue
		}
		tableRows, ok := rows.Children[obj.Table]
		if !ok || len(tableRows) == 0 {
			continue
		}
		restored, err := reconstructObjectRow(tableRows[0], obj.Table, obj.Columns)
		if err != nil {
			return nil, fmt.Errorf("restoring object %s: %w", obj.Field, err)
		}
		doc[obj.Field] = restored
	}

	for _, unmapped := range rows.Unmapped {
		var value any
		dec := json.NewDecoder(bytes.NewReader(unmapped.Payload))
		dec.UseNumber()
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("restoring unmapped field %s: %w", unmapped.Field, err)
		}
		doc[unmapped.Field] = value
	}

	return doc, nil
}

// forwardColumn applies the same deterministic rename rule Map uses, so the
// reverse mapping never needs out-of-band state for schema-declared fields.
func forwardColumn(table, field string) string {
	column, _ := store.PhysicalColumn(table, field)
	return column
}

func reconstructCollection(tableRows []map[string]any, coll *config.Collection) (any, error) {
	keyed := false
	for _, row := range tableRows {
		if p := asInt(row["position"]); p == keyedPosition || p == keyedOwnKeyPosition {
			keyed = true
			break
		}
	}

	scalarElements := len(coll.Columns) == 1 && coll.Columns[0].Field == "value"

	buildElement := func(row map[string]any) (any, error) {
		if scalarElements {
			raw := row[forwardColumn(coll.Table, "value")]
			if raw == nil {
				return nil, nil
			}
			return convertBack(raw, coll.Columns[0].Type)
		}
		element := make(map[string]any)
		for _, col := range coll.Columns {
			raw := row[forwardColumn(coll.Table, col.Field)]
			if raw == nil {
				continue
			}
			restored, err := convertBack(raw, col.Type)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", col.Field, err)
			}
			element[col.Field] = restored
		}
		return element, nil
	}

	if keyed {
		result := make(map[string]any, len(tableRows))
		for _, row := range tableRows {
			element, err := buildElement(row)
			if err != nil {
				return nil, err
			}
			obj, ok := element.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("keyed collection with scalar elements")
			}
			key, ok := obj[coll.KeyField].(string)
			if !ok {
				return nil, fmt.Errorf("row missing key field %s", coll.KeyField)
			}
			if asInt(row["position"]) == keyedPosition {
				// The key field was injected from the map key on the way
				// in; elements that carried their own keep it.
				delete(obj, coll.KeyField)
			}
			result[key] = obj
		}
		return result, nil
	}

	ordered := make([]map[string]any, len(tableRows))
	copy(ordered, tableRows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return asInt(ordered[i]["position"]) < asInt(ordered[j]["position"])
	})

	result := make([]any, 0, len(ordered))
	for _, row := range ordered {
		element, err := buildElement(row)
		if err != nil {
			return nil, err
		}
		result = append(result, element)
	}
	return result, nil
}

func reconstructObjectRow(row map[string]any, table string, columns []config.Column) (map[string]any, error) {
	element := make(map[string]any)
	for _, col := range columns {
		raw := row[forwardColumn(table, col.Field)]
		if raw == nil {
			continue
		}
		restored, err := convertBack(raw, col.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", col.Field, err)
		}
		element[col.Field] = restored
	}
	return element, nil
}

func convertBack(value any, typ string) (any, error) {
	switch typ {
	case config.TypeText:
		return asString(value), nil
	case config.TypeInteger:
		return json.Number(strconv.FormatInt(asInt(value), 10)), nil
	case config.TypeReal:
		switch v := value.(type) {
		case float64:
			return json.Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
		case int64:
			return json.Number(strconv.FormatInt(v, 10)), nil
		default:
			return nil, fmt.Errorf("unexpected real representation %T", value)
		}
	case config.TypeBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		default:
			return nil, fmt.Errorf("unexpected boolean representation %T", value)
		}
	case config.TypeCurrency:
		d, err := decimal.NewFromString(asString(value))
		if err != nil {
			return nil, fmt.Errorf("parsing stored currency: %w", err)
		}
		return json.Number(d.String()), nil
	case config.TypeJSON:
		var restored any
		dec := json.NewDecoder(strings.NewReader(asString(value)))
		dec.UseNumber()
		if err := dec.Decode(&restored); err != nil {
			return nil, fmt.Errorf("decoding stored json: %w", err)
		}
		return restored, nil
	default:
		return nil, fmt.Errorf("unknown column type: %s", typ)
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

func asInt(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
