package evaluator

import "fmt"

// callMethod dispatches a `receiver.name(args...)` call to the runtime
// implementation matching its receiver kind. The resolver already
// checked arity/types against internal/builtins' signature tables, so
// these implementations trust their arguments' shapes.
func (e *Evaluator) callMethod(recv Value, name string, args []Value) (Value, error) {
	switch recv.Kind {
	case KString:
		return stringMethod(recv, name, args)
	case KArray:
		return arrayMethod(recv, name, args)
	case KDocument:
		return documentMethod(recv, name, args)
	}
	return Undefined(), fmt.Errorf("evaluator: %s has no method %q", recv.Kind, name)
}

// property dispatches a no-call `receiver.name` property hop.
func (e *Evaluator) property(recv Value, name string) (Value, error) {
	switch recv.Kind {
	case KString:
		return stringProperty(recv, name)
	case KArray:
		return arrayProperty(recv, name)
	case KDocument:
		return documentProperty(recv, name)
	}
	return Undefined(), fmt.Errorf("evaluator: %s has no property %q", recv.Kind, name)
}

// callFree dispatches a receiver-less free function call.
func (e *Evaluator) callFree(name string, args []Value) (Value, error) {
	switch name {
	case "range":
		return freeRange(args)
	case "max":
		return freeMax(args)
	case "min":
		return freeMin(args)
	case "uuid":
		return freeUUID(args)
	case "argv":
		return e.freeArgv(args)
	case "read_json_document":
		return e.freeReadJSONDocument(args)
	case "read_yaml_document":
		return e.freeReadYAMLDocument(args)
	case "read_sqlite_table":
		return e.freeReadSQLiteTable(args)
	case "read_proto_descriptor":
		return e.freeReadProtoDescriptor(args)
	}
	return Undefined(), fmt.Errorf("evaluator: unknown free function %q", name)
}
