package evaluator

import "fmt"

// arrayMethod implements the arrayMethods table against a KArray
// receiver. append is the only array method spec.md names; it returns
// a new array rather than mutating the receiver in place, matching
// value semantics everywhere else an array is passed around.
func arrayMethod(recv Value, name string, args []Value) (Value, error) {
	switch name {
	case "append":
		elems := append(append([]Value{}, *recv.Array...), args[0])
		return Array(elems), nil
	}
	return Undefined(), fmt.Errorf("evaluator: unknown array method %q", name)
}

func arrayProperty(recv Value, name string) (Value, error) {
	if name == "size" {
		return Int(int64(len(*recv.Array))), nil
	}
	return Undefined(), fmt.Errorf("evaluator: unknown array property %q", name)
}
