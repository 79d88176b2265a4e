// Package builtins holds the free functions, array/string methods and
// properties spec.md §6 names, split into a type-checking surface
// (this file, consumed by internal/resolver) and the runtime
// implementations (internal/evaluator's builtins*.go files).
//
// Grounded on the teacher's internal/evaluator/builtins_*.go family
// (one file per receiver kind, a name->implementation table per file)
// and on original_source's "latest" string/array method table per
// spec.md §9's Open question note (title/starts_with/substr/find/
// escape/camel_case/pascal_case/snake_case/macro_case/kebab_case/split
// — the superseded regex-based variant is omitted).
package builtins

import "github.com/tangramlang/tangram/internal/types"

// Signature describes one callable's checked shape: required/optional
// parameter types and its result type. Variadic free functions
// (max/min) use Params == nil to mean "any count of int-compatible
// args".
type Signature struct {
	Params  []types.Type
	Result  types.Type
	Minimum int // minimum argument count (for optional trailing params)
}

// FreeFunctions are callable without a receiver: range/max/min/
// read_json_document and SPEC_FULL.md's additional document readers.
var FreeFunctions = map[string]Signature{
	"range": {Params: []types.Type{types.Scalar(types.Int), types.Scalar(types.Int)}, Result: types.Scalar(types.IntRange), Minimum: 1},
	"max":   {Result: types.Scalar(types.Int)},
	"min":   {Result: types.Scalar(types.Int)},

	"read_json_document":  {Params: []types.Type{types.Scalar(types.String)}, Result: types.Scalar(types.Custom), Minimum: 1},
	"read_yaml_document":  {Params: []types.Type{types.Scalar(types.String)}, Result: types.Scalar(types.Custom), Minimum: 1},
	"read_sqlite_table":   {Params: []types.Type{types.Scalar(types.String), types.Scalar(types.String)}, Result: types.Scalar(types.Custom).Array(), Minimum: 2},
	"read_proto_descriptor": {Params: []types.Type{types.Scalar(types.String)}, Result: types.Scalar(types.Custom), Minimum: 1},
	"uuid":                {Result: types.Scalar(types.String)},
	"argv":                 {Result: types.Scalar(types.String).Array()},
}

// stringMethods are called as `strVal.name(args...)`.
var stringMethods = map[string]Signature{
	"empty":       {Result: types.Scalar(types.Bool)},
	"append":      {Params: []types.Type{types.Scalar(types.String)}, Result: types.Scalar(types.String), Minimum: 1},
	"lower":       {Result: types.Scalar(types.String)},
	"upper":       {Result: types.Scalar(types.String)},
	"title":       {Result: types.Scalar(types.String)},
	"trim":        {Result: types.Scalar(types.String)},
	"trim_left":   {Result: types.Scalar(types.String)},
	"trim_right":  {Result: types.Scalar(types.String)},
	"starts_with": {Params: []types.Type{types.Scalar(types.String)}, Result: types.Scalar(types.Bool), Minimum: 1},
	"substr":      {Params: []types.Type{types.Scalar(types.Int), types.Scalar(types.Int)}, Result: types.Scalar(types.String), Minimum: 1},
	"find":        {Params: []types.Type{types.Scalar(types.String)}, Result: types.Scalar(types.Int), Minimum: 1},
	"escape":      {Result: types.Scalar(types.String)},
	"camel_case":  {Result: types.Scalar(types.String)},
	"pascal_case": {Result: types.Scalar(types.String)},
	"snake_case":  {Result: types.Scalar(types.String)},
	"macro_case":  {Result: types.Scalar(types.String)},
	"kebab_case":  {Result: types.Scalar(types.String)},
	"split":       {Params: []types.Type{types.Scalar(types.String)}, Result: types.Scalar(types.String).Array(), Minimum: 1},
}

// stringProperties are accessed as `strVal.name` with no call.
var stringProperties = map[string]types.Type{
	"size": types.Scalar(types.Int),
}

// arrayMethods are called as `arrVal.name(args...)`. Method builds
// append's signature at lookup time from the receiver's element type
// (recv.ElemType()).
var arrayMethods = map[string]string{
	"append": "append",
}

var arrayProperties = map[string]types.Type{
	"size": types.Scalar(types.Int),
}

// documentMethods models the JSON/YAML/sqlite document value's
// reflective API (spec.md §6: is_null/is_string/.../exists, plus
// string/integer subscript and iteration handled by the evaluator
// directly rather than through a named method).
var documentMethods = map[string]Signature{
	"is_null":   {Result: types.Scalar(types.Bool)},
	"is_string": {Result: types.Scalar(types.Bool)},
	"is_object": {Result: types.Scalar(types.Bool)},
	"is_array":  {Result: types.Scalar(types.Bool)},
	"is_int":    {Result: types.Scalar(types.Bool)},
	"is_uint":   {Result: types.Scalar(types.Bool)},
	"is_bool":   {Result: types.Scalar(types.Bool)},
	"is_float":  {Result: types.Scalar(types.Bool)},
	"exists":    {Result: types.Scalar(types.Bool)},
}

var documentProperties = map[string]types.Type{
	"root": types.Scalar(types.Custom),
	"size": types.Scalar(types.Int),
}

// Property looks up a builtin property (no-call dot hop) on recv,
// returning its type.
func Property(recv types.Type, name string) (types.Type, bool) {
	switch {
	case recv.ID == types.String && !recv.IsArray():
		t, ok := stringProperties[name]
		return t, ok
	case recv.IsArray():
		t, ok := arrayProperties[name]
		return t, ok
	case recv.ID == types.Custom:
		t, ok := documentProperties[name]
		return t, ok
	}
	return types.Type{}, false
}

// Method looks up a builtin method (called dot hop) on recv, returning
// its checked signature with Result substituted for array element type
// where the method's semantics are element-type-dependent (append).
func Method(recv types.Type, name string) (Signature, bool) {
	switch {
	case recv.ID == types.String && !recv.IsArray():
		sig, ok := stringMethods[name]
		return sig, ok
	case recv.IsArray():
		if _, ok := arrayMethods[name]; ok && name == "append" {
			elem := recv.ElemType()
			return Signature{Params: []types.Type{elem}, Result: recv, Minimum: 1}, true
		}
		return Signature{}, false
	case recv.ID == types.Custom:
		sig, ok := documentMethods[name]
		return sig, ok
	}
	return Signature{}, false
}

// IsKnownFreeFunction reports whether name is one of FreeFunctions,
// for the resolver's call-resolution dispatch.
func IsKnownFreeFunction(name string) bool {
	_, ok := FreeFunctions[name]
	return ok
}
