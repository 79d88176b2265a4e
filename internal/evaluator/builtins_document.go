package evaluator

import "fmt"

// documentMethod implements the reflective is_*/exists predicate table
// spec.md §6 gives the JSON/YAML/sqlite document value.
func documentMethod(recv Value, name string, args []Value) (Value, error) {
	d := recv.Doc
	switch name {
	case "is_null":
		return Bool(d == nil || d.IsNull()), nil
	case "is_string":
		return Bool(d != nil && d.IsString()), nil
	case "is_object":
		return Bool(d != nil && d.IsObject()), nil
	case "is_array":
		return Bool(d != nil && d.IsArray()), nil
	case "is_int":
		return Bool(d != nil && d.IsInt()), nil
	case "is_uint":
		return Bool(d != nil && d.IsUint()), nil
	case "is_bool":
		return Bool(d != nil && d.IsBool()), nil
	case "is_float":
		return Bool(d != nil && d.IsFloat()), nil
	case "exists":
		return Bool(d != nil && d.Exists()), nil
	}
	return Undefined(), fmt.Errorf("evaluator: unknown document method %q", name)
}

func documentProperty(recv Value, name string) (Value, error) {
	switch name {
	case "root":
		return recv, nil
	case "size":
		if recv.Doc == nil {
			return Int(0), nil
		}
		return Int(recv.Doc.Size()), nil
	}
	return Undefined(), fmt.Errorf("evaluator: unknown document property %q", name)
}
