package evaluator

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// freeRange implements the range(end) / range(begin, end) free
// function, the free-call counterpart to the RangeExpr the parser builds
// for the `range` keyword (spec.md §4.3/§6).
func freeRange(args []Value) (Value, error) {
	begin := int64(0)
	end := args[0].AsInt()
	if len(args) > 1 {
		begin = args[0].AsInt()
		end = args[1].AsInt()
	}
	return Value{Kind: KRange, Range: IntRange{Begin: begin, End: end}}, nil
}

func freeMax(args []Value) (Value, error) {
	if len(args) == 0 {
		return Undefined(), fmt.Errorf("evaluator: max() requires at least one argument")
	}
	best := args[0].AsInt()
	for _, a := range args[1:] {
		if n := a.AsInt(); n > best {
			best = n
		}
	}
	return Int(best), nil
}

func freeMin(args []Value) (Value, error) {
	if len(args) == 0 {
		return Undefined(), fmt.Errorf("evaluator: min() requires at least one argument")
	}
	best := args[0].AsInt()
	for _, a := range args[1:] {
		if n := a.AsInt(); n < best {
			best = n
		}
	}
	return Int(best), nil
}

func freeUUID(args []Value) (Value, error) {
	return Str(uuid.NewString()), nil
}

// freeArgv exposes the command-line arguments the host handed the
// evaluator (from the CLI: the main source path, or "piped", followed
// by anything after a `--` separator) as a plain string array
// (spec.md §6).
func (e *Evaluator) freeArgv(args []Value) (Value, error) {
	elems := make([]Value, len(e.argv))
	for i, a := range e.argv {
		elems[i] = Str(a)
	}
	return Array(elems), nil
}

func (e *Evaluator) freeReadJSONDocument(args []Value) (Value, error) {
	raw, err := e.host.ReadFile(args[0].Str)
	if err != nil {
		return Undefined(), fmt.Errorf("reading %q: %w", args[0].Str, err)
	}
	doc, err := ReadJSONDocument(string(raw))
	if err != nil {
		return Undefined(), err
	}
	return Value{Kind: KDocument, Doc: doc}, nil
}

func (e *Evaluator) freeReadYAMLDocument(args []Value) (Value, error) {
	raw, err := e.host.ReadFile(args[0].Str)
	if err != nil {
		return Undefined(), fmt.Errorf("reading %q: %w", args[0].Str, err)
	}
	doc, err := ReadYAMLDocument(string(raw))
	if err != nil {
		return Undefined(), err
	}
	return Value{Kind: KDocument, Doc: doc}, nil
}

// freeReadSQLiteTable opens the sqlite file directly (rather than
// through host.FileReader, which hands back file contents, not a
// queryable handle) and reads every row of the named table into an
// array of document values, one map per row.
func (e *Evaluator) freeReadSQLiteTable(args []Value) (Value, error) {
	path := args[0].Str
	table := args[1].Str

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Undefined(), fmt.Errorf("opening sqlite database %q: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(fmt.Sprintf("select * from %q", table))
	if err != nil {
		return Undefined(), fmt.Errorf("querying table %q: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Undefined(), err
	}

	var elems []Value
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return Undefined(), fmt.Errorf("scanning row of %q: %w", table, err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = normalizeSQLiteValue(vals[i])
		}
		elems = append(elems, Value{Kind: KDocument, Doc: NewDocument(row)})
	}
	if err := rows.Err(); err != nil {
		return Undefined(), err
	}
	return Array(elems), nil
}

// normalizeSQLiteValue converts database/sql's driver-returned types
// ([]byte for TEXT/BLOB columns, int64/float64/nil already matching the
// Document model) into values NewDocument's normalizeJSON accepts.
func normalizeSQLiteValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
