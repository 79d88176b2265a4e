package evaluator

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Document is the runtime realization of the types.Custom "document"
// value SPEC_FULL.md adds on top of spec.md's original value set: a
// generic JSON/YAML-shaped tree plus sqlite row data and proto
// descriptor metadata, all exposed through the same reflective
// is_*/exists/root/size surface (internal/builtins documentMethods).
//
// Grounded on encoding/json's json.Unmarshal-into-any idiom for the JSON
// reader and gopkg.in/yaml.v3 (already the teacher's config-loading
// dependency, internal/config) for the YAML reader; sqlite rows and
// proto descriptors are flattened into the same map/slice/scalar shape
// so one Document type serves every source.
type Document struct {
	// Value holds one of: nil, bool, int64, float64, string,
	// []any (each element itself wrapped as *Document via At), or
	// map[string]any (each value wrapped as *Document via Field).
	Value any
}

func NewDocument(v any) *Document { return &Document{Value: normalizeJSON(v)} }

// normalizeJSON converts encoding/json's float64-for-every-number
// decoding into int64 where the value has no fractional part, so
// is_int/is_uint reflect what the source document actually looked like
// rather than JSON's own number model.
func normalizeJSON(v any) any {
	switch n := v.(type) {
	case float64:
		if n == float64(int64(n)) {
			return int64(n)
		}
		return n
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, val := range n {
			out[k] = normalizeJSON(val)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, val := range n {
			out[i] = normalizeJSON(val)
		}
		return out
	}
	return v
}

// ReadJSONDocument parses raw JSON text into a Document tree.
func ReadJSONDocument(raw string) (*Document, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("parsing JSON document: %w", err)
	}
	return NewDocument(v), nil
}

// ReadYAMLDocument parses raw YAML text into a Document tree, using the
// same generic map[string]any/[]any/scalar shape ReadJSONDocument
// produces so both readers share one Document representation.
func ReadYAMLDocument(raw string) (*Document, error) {
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("parsing YAML document: %w", err)
	}
	return NewDocument(normalizeYAML(v)), nil
}

// normalizeYAML flattens yaml.v3's map[string]interface{} decoding
// (which, unlike encoding/json, already uses string keys for mapping
// nodes) into the same any-tree shape normalizeJSON produces.
func normalizeYAML(v any) any {
	switch n := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, val := range n {
			out[k] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, val := range n {
			out[i] = normalizeYAML(val)
		}
		return out
	case int:
		return int64(n)
	}
	return v
}

func (d *Document) IsNull() bool   { return d == nil || d.Value == nil }
func (d *Document) IsString() bool { _, ok := d.Value.(string); return ok }
func (d *Document) IsObject() bool { _, ok := d.Value.(map[string]any); return ok }
func (d *Document) IsArray() bool  { _, ok := d.Value.([]any); return ok }
func (d *Document) IsBool() bool   { _, ok := d.Value.(bool); return ok }
func (d *Document) IsFloat() bool  { _, ok := d.Value.(float64); return ok }

// IsInt / IsUint both back onto the normalized int64 representation —
// Tangram's document model has no separate signed/unsigned number kind,
// so IsUint additionally requires a non-negative value.
func (d *Document) IsInt() bool {
	_, ok := d.Value.(int64)
	return ok
}

func (d *Document) IsUint() bool {
	n, ok := d.Value.(int64)
	return ok && n >= 0
}

// Exists reports whether the document is anything other than the "key
// not found" sentinel (a nil *Document).
func (d *Document) Exists() bool { return d != nil }

// Field looks up a key on an object document, returning a nil
// *Document (not an error) when the document isn't an object or the key
// is absent, so `.exists` can report false instead of the evaluator
// raising a runtime error.
func (d *Document) Field(name string) *Document {
	if d == nil {
		return nil
	}
	obj, ok := d.Value.(map[string]any)
	if !ok {
		return nil
	}
	v, ok := obj[name]
	if !ok {
		return nil
	}
	return &Document{Value: v}
}

// At indexes an array document, again returning nil rather than
// erroring on an out-of-range or non-array access.
func (d *Document) At(i int64) *Document {
	if d == nil {
		return nil
	}
	arr, ok := d.Value.([]any)
	if !ok || i < 0 || int(i) >= len(arr) {
		return nil
	}
	return &Document{Value: arr[i]}
}

// Size reports an object's field count or an array's element count.
func (d *Document) Size() int64 {
	if d == nil {
		return 0
	}
	switch v := d.Value.(type) {
	case map[string]any:
		return int64(len(v))
	case []any:
		return int64(len(v))
	}
	return 0
}

// Keys returns an object document's field names, for `for(k in doc)`
// style iteration (SPEC_FULL.md supplement).
func (d *Document) Keys() []string {
	if d == nil {
		return nil
	}
	obj, ok := d.Value.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	return keys
}

func (d *Document) String() string {
	if d == nil || d.Value == nil {
		return "null"
	}
	switch v := d.Value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}
