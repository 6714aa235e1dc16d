package provider

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Kind is the coercion applied to a source value.
type Kind int

const (
	Int        Kind = iota // counting stats, fallback 0
	Float                  // rate stats, fallback 0.0
	String                 // required text, fallback ""
	NullString             // optional text, fallback nil
	Bool                   // fallback false
	Time                   // RFC3339 UTC text, fallback nil
	PairFirst              // "18/27" -> 18, fallback 0
	PairSecond             // "18/27" -> 27, fallback 0
	Enum                   // code -> canonical value through Field.Enum
	Minutes                // "mm:ss" -> fractional minutes, fallback 0.0
)

// Field declares one output column: where its value comes from, how it is
// coerced, and what it falls back to when the source value is missing or
// unparsable.
type Field struct {
	Column string
	Path   string // dot path into Record.Data, or "meta.<key>" into Record.Meta
	Kind   Kind

	// Extract replaces Path for values that need a search (e.g. the home
	// competitor of an event). It must be a pure function of the record.
	Extract func(rec Record) (interface{}, bool)

	Default  interface{} // overrides the kind's fallback
	Sep      string      // PairFirst / PairSecond
	Enum     EnumTable   // Enum
	Required bool        // missing value makes the record unmappable
}

// Schema is a mapper's declared defaulting table.
type Schema []Field

// Apply coerces a record into column values. It fails only with
// ErrUnmappable, when a required field is absent.
func (s Schema) Apply(rec Record) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(s))
	for _, f := range s {
		raw, present := f.source(rec)
		v, ok := f.coerce(raw, present)
		if !ok {
			if f.Required {
				return nil, fmt.Errorf("%w: %s missing", ErrUnmappable, f.Column)
			}
			v = f.fallback()
		}
		out[f.Column] = v
	}
	return out, nil
}

func (f Field) source(rec Record) (interface{}, bool) {
	if f.Extract != nil {
		return f.Extract(rec)
	}
	if key, ok := strings.CutPrefix(f.Path, "meta."); ok {
		v, found := Lookup(rec.Meta, key)
		return v, found
	}
	return Lookup(rec.Data, f.Path)
}

func (f Field) coerce(raw interface{}, present bool) (interface{}, bool) {
	if f.Kind == Enum {
		// Unknown and missing codes both resolve to the table default.
		return f.Enum.Map(raw), true
	}
	if !present {
		return nil, false
	}
	switch f.Kind {
	case Int:
		return ExtractInt(raw)
	case Float:
		v, ok := ExtractValue(raw)
		if !ok {
			return nil, false
		}
		return round(v, 4), true
	case String, NullString:
		return ExtractString(raw)
	case Bool:
		b, ok := raw.(bool)
		return b, ok
	case Time:
		t, ok := ParseTime(raw)
		if !ok {
			return nil, false
		}
		return t.Format(time.RFC3339), true
	case PairFirst, PairSecond:
		if s, ok := raw.(string); !ok || !strings.Contains(s, f.Sep) {
			return nil, false
		}
		a, b := SplitPair(raw, f.Sep)
		if f.Kind == PairFirst {
			return a, true
		}
		return b, true
	case Minutes:
		return ParseMinutes(raw)
	}
	return nil, false
}

func (f Field) fallback() interface{} {
	if f.Default != nil {
		return f.Default
	}
	switch f.Kind {
	case Int, PairFirst, PairSecond:
		return 0
	case Float, Minutes:
		return 0.0
	case String:
		return ""
	case Bool:
		return false
	default:
		return nil
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// --------------------------------------------------------------------------
// Schema-driven mapper
// --------------------------------------------------------------------------

// Mapping binds an entity type to its destination table and schema.
type Mapping struct {
	Table  Table
	Schema Schema
}

// SchemaMapper is a Mapper built entirely from declared schemas.
type SchemaMapper map[EntityType]Mapping

// Map implements Mapper.
func (m SchemaMapper) Map(rec Record) (Row, error) {
	mp, ok := m[rec.Entity]
	if !ok {
		return Row{}, fmt.Errorf("%w: no table for %s", ErrUnmappable, rec.Entity)
	}
	values, err := mp.Schema.Apply(rec)
	if err != nil {
		return Row{}, fmt.Errorf("%s: %w", mp.Table.Name, err)
	}
	return Row{Table: mp.Table, Values: values}, nil
}

// Tables returns the destination tables this mapper writes.
func (m SchemaMapper) Tables() []Table {
	out := make([]Table, 0, len(m))
	for _, e := range writeOrder {
		if mp, ok := m[e]; ok {
			out = append(out, mp.Table)
		}
	}
	return out
}
