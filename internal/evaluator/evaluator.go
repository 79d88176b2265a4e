package evaluator

import (
	"fmt"
	"io"

	"github.com/tangramlang/tangram/internal/ast"
	"github.com/tangramlang/tangram/internal/host"
	"github.com/tangramlang/tangram/internal/pattern"
)

// Evaluator tree-walks one resolved Program, writing its rendered
// output to an io.Writer. One Evaluator instance is single-use: Run
// consumes it start to finish.
type Evaluator struct {
	reg        *pattern.Registry
	generators map[string]*ast.GeneratorDef
	host       host.FileReader

	// files/srcs mirror the resolver's file table: one entry per parsed
	// file, indexed by token.Position.File, so runtime diagnostics (a
	// pattern-mismatch surfacing deep inside an included file) can carry
	// the right file name and source text.
	files []string
	srcs  []string

	out    *outputBuffer
	frames []*frame
	loops  []*loopRecord

	// argv holds the program's supplied command-line arguments, exposed
	// to Tangram source via the `argv` built-in array (SPEC_FULL.md
	// supplement to spec.md's CLI section).
	argv []string
}

// New returns an Evaluator ready to run prog against w, with file/src
// registered as file index 0 (the main file). reg must already hold
// every pattern/sum definition prog declares (built by the caller from
// prog.Patterns/prog.Sums, mirroring how internal/resolver built its
// own patternDefs/sumDefs maps).
func New(prog *ast.Program, w io.Writer, h host.FileReader, argv []string, file, src string) *Evaluator {
	reg := pattern.NewRegistry()
	for _, p := range prog.Patterns {
		reg.Patterns[p.Name] = p
	}
	for _, s := range prog.Sums {
		reg.Sums[s.Name] = s
	}
	generators := make(map[string]*ast.GeneratorDef, len(prog.Generators))
	for _, g := range prog.Generators {
		generators[g.Name] = g
	}
	e := &Evaluator{
		reg:        reg,
		generators: generators,
		host:       h,
		out:        newOutputBuffer(w),
		argv:       argv,
	}
	e.AddFile(file, src)
	return e
}

// AddFile registers one additional file (an include) in the
// evaluator's file table, returning its index. Order must match the
// parser's fileIndex assignment for the same set of files.
func (e *Evaluator) AddFile(file, src string) int {
	e.files = append(e.files, file)
	e.srcs = append(e.srcs, src)
	return len(e.files) - 1
}

func (e *Evaluator) fileAt(idx int) string {
	if idx < 0 || idx >= len(e.files) {
		return ""
	}
	return e.files[idx]
}

func (e *Evaluator) srcAt(idx int) string {
	if idx < 0 || idx >= len(e.srcs) {
		return ""
	}
	return e.srcs[idx]
}

// ctrlKind classifies how a statement/block finished: by falling off
// the end (ctrlNone) or by break/continue/return, which must unwind
// through every enclosing construct until its target is reached
// (spec.md §4.6's flow-control statements).
type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
)

// control is returned by every statement/block execution method.
// Level counts the remaining loops to unwind through for break/continue
// (spec.md §3: "break N / continue N, 0 = innermost"); it is
// decremented by one at each enclosing for loop until it reaches 0,
// which is the loop that actually breaks/continues.
type control struct {
	kind  ctrlKind
	level int
	value Value // set iff kind == ctrlReturn
}

var noneCtrl = control{kind: ctrlNone}

func (e *Evaluator) curFrame() *frame { return e.frames[len(e.frames)-1] }

// Run executes prog's top-level declarations and free literal body, top
// to bottom, per spec.md §4.6.
func (e *Evaluator) Run(prog *ast.Program) error {
	e.frames = append(e.frames, newFrame(prog.StackSize))
	for _, d := range prog.TopDecls {
		if err := e.execDecl(d); err != nil {
			return err
		}
	}
	if prog.Body != nil {
		ctrl, err := e.execBlock(prog.Body)
		if err != nil {
			return err
		}
		if ctrl.kind != ctrlNone {
			return fmt.Errorf("break/continue/return used outside of a generator or loop")
		}
	}
	e.out.flushTrailingNewline()
	return nil
}

// execBlock runs every segment of block: entering each segment's
// whitespace into the output buffer before running its statements, and
// stopping early (propagating the control signal) the first time a
// statement breaks, continues, or returns.
func (e *Evaluator) execBlock(block *ast.LiteralBlock) (control, error) {
	for _, seg := range block.Segments {
		e.out.enterSegment(seg)
		for _, stmt := range seg.Statements {
			ctrl, err := e.execStmt(stmt)
			if err != nil {
				return noneCtrl, err
			}
			if ctrl.kind != ctrlNone {
				return ctrl, nil
			}
		}
	}
	return noneCtrl, nil
}

func (e *Evaluator) execStmt(stmt ast.Statement) (control, error) {
	switch s := stmt.(type) {
	case *ast.LiteralStmt:
		e.out.write(s.Text)
		return noneCtrl, nil

	case *ast.ExprStmt:
		return e.execExprStmt(s)

	case *ast.CommaStmt:
		return noneCtrl, e.execComma(s)

	case *ast.DeclStmt:
		return noneCtrl, e.execDecl(s)

	case *ast.BreakStmt:
		return control{kind: ctrlBreak, level: s.Level}, nil

	case *ast.ContinueStmt:
		return control{kind: ctrlContinue, level: s.Level}, nil

	case *ast.ReturnStmt:
		v := Void()
		if s.Value != nil {
			var err error
			v, err = e.eval(s.Value)
			if err != nil {
				return noneCtrl, err
			}
		}
		return control{kind: ctrlReturn, value: v}, nil

	case *ast.IfStmt:
		return e.execIf(s)

	case *ast.ForStmt:
		return e.execFor(s)
	}
	return noneCtrl, fmt.Errorf("evaluator: unhandled statement %T", stmt)
}

func (e *Evaluator) execExprStmt(s *ast.ExprStmt) (control, error) {
	v, err := e.eval(s.Expr)
	if err != nil {
		return noneCtrl, err
	}
	if v.Kind == KVoid {
		// A generator call already wrote its own output as a side
		// effect; nothing further to render here.
		return noneCtrl, nil
	}
	e.out.write(v.Render(s.Format))
	return noneCtrl, nil
}

func (e *Evaluator) execDecl(s *ast.DeclStmt) error {
	v := zeroOf(s.ResolvedType)
	if s.Init != nil {
		iv, err := e.eval(s.Init)
		if err != nil {
			return err
		}
		v, err = e.coerce(s.Token, iv, s.ResolvedType)
		if err != nil {
			return err
		}
	}
	e.curFrame().set(s.Slot, v)
	return nil
}

func (e *Evaluator) execComma(s *ast.CommaStmt) error {
	idx := len(e.loops) - 1 - s.ResolvedLoop
	if idx < 0 || idx >= len(e.loops) {
		return nil
	}
	if e.loops[idx].lastIteration {
		return nil
	}
	if s.TrailingSpace {
		e.out.write(", ")
	} else {
		e.out.write(",")
	}
	return nil
}

func (e *Evaluator) execIf(s *ast.IfStmt) (control, error) {
	cond, err := e.eval(s.Cond)
	if err != nil {
		return noneCtrl, err
	}
	if cond.Truthy() {
		return e.execBlock(s.Then)
	}
	if s.Else != nil {
		return e.execBlock(s.Else)
	}
	return noneCtrl, nil
}

func (e *Evaluator) execFor(s *ast.ForStmt) (control, error) {
	container, err := e.eval(s.Container)
	if err != nil {
		return noneCtrl, err
	}
	items, err := e.iterate(container)
	if err != nil {
		return noneCtrl, err
	}

	e.loops = append(e.loops, &loopRecord{})
	defer func() { e.loops = e.loops[:len(e.loops)-1] }()
	rec := e.loops[len(e.loops)-1]

	slot := s.VarSlot
	for i, item := range items {
		rec.lastIteration = i == len(items)-1
		e.curFrame().set(slot, item)

		ctrl, err := e.execBlock(s.Body)
		if err != nil {
			return noneCtrl, err
		}
		switch ctrl.kind {
		case ctrlBreak:
			// This loop always exits on a break signal, whether it is
			// the target (level reaches 0) or just an intermediate
			// frame on the way to an outer target. The two cases
			// differ only in what gets handed back to the caller: the
			// target frame has fully absorbed the signal, so its
			// enclosing loop (if any) continues normally; an
			// intermediate frame still has to keep unwinding.
			ctrl.level--
			if ctrl.level <= 0 {
				return noneCtrl, nil
			}
			return ctrl, nil
		case ctrlContinue:
			ctrl.level--
			if ctrl.level <= 0 {
				continue
			}
			return ctrl, nil
		case ctrlReturn:
			return ctrl, nil
		}
	}
	return noneCtrl, nil
}

// iterate expands a for-loop's container value into the concrete
// sequence of per-iteration Values, per spec.md §4.4's three iterable
// shapes (array, int range, and the document-array/object the
// SPEC_FULL.md document supplement adds for `for(k in doc)`).
func (e *Evaluator) iterate(container Value) ([]Value, error) {
	switch container.Kind {
	case KArray:
		return *container.Array, nil
	case KRange:
		var items []Value
		for i := container.Range.Begin; i < container.Range.End; i++ {
			items = append(items, Int(i))
		}
		return items, nil
	case KDocument:
		if container.Doc != nil && container.Doc.IsArray() {
			n := container.Doc.Size()
			items := make([]Value, n)
			for i := int64(0); i < n; i++ {
				items[i] = Value{Kind: KDocument, Doc: container.Doc.At(i)}
			}
			return items, nil
		}
		keys := container.Doc.Keys()
		items := make([]Value, len(keys))
		for i, k := range keys {
			items[i] = Str(k)
		}
		return items, nil
	}
	return nil, fmt.Errorf("evaluator: value of kind %s is not iterable", container.Kind)
}
