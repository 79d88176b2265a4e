package evaluator

import (
	"fmt"

	"github.com/tangramlang/tangram/internal/ast"
	"github.com/tangramlang/tangram/internal/builtins"
)

// evalCall dispatches a call expression to a method, a generator, a
// free function, or an indirect call through a generator-valued
// variable, mirroring resolver.resolveCall's own three-way dispatch
// (spec.md §4.4 "Call expression").
func (e *Evaluator) evalCall(x *ast.CallExpr) (Value, error) {
	if x.Receiver != nil {
		recv, err := e.eval(x.Receiver)
		if err != nil {
			return Undefined(), err
		}
		dot, ok := x.Callee.(*ast.DotExpr)
		if !ok {
			return Undefined(), fmt.Errorf("evaluator: method call has no dot callee")
		}
		args, err := e.evalArgs(x.Args)
		if err != nil {
			return Undefined(), err
		}
		return e.callMethod(recv, dot.Name, args)
	}

	ident, ok := x.Callee.(*ast.Identifier)
	if !ok {
		return Undefined(), fmt.Errorf("evaluator: expression is not callable")
	}

	if gen, ok := e.generators[ident.Name]; ok {
		return e.invokeGenerator(gen, x)
	}
	if builtins.IsKnownFreeFunction(ident.Name) {
		args, err := e.evalArgs(x.Args)
		if err != nil {
			return Undefined(), err
		}
		return e.callFree(ident.Name, args)
	}

	v, err := e.evalIdentifier(ident)
	if err != nil {
		return Undefined(), err
	}
	if v.Kind == KGenerator && v.Gen != nil {
		return e.invokeGenerator(v.Gen, x)
	}
	return Undefined(), fmt.Errorf("evaluator: %q is not callable", ident.Name)
}

func (e *Evaluator) evalArgs(args []ast.Expression) ([]Value, error) {
	vals := make([]Value, len(args))
	for i, a := range args {
		v, err := e.eval(a)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// invokeGenerator runs gen as a call: it pushes a fresh frame sized for
// gen's locals, binds call's arguments to gen's parameters (positional
// first, then by keyword, falling back to each parameter's default or
// zero value), executes the body, and restores the caller's frame and
// loop stack. Per spec.md §4.4, a generator call's own expression value
// is always void; its output reaches the caller only as the side effect
// of writing through the shared output buffer.
func (e *Evaluator) invokeGenerator(gen *ast.GeneratorDef, call *ast.CallExpr) (Value, error) {
	args, err := e.evalArgs(call.Args)
	if err != nil {
		return Undefined(), err
	}

	named := map[string]Value{}
	var positional []Value
	for i, v := range args {
		name := ""
		if i < len(call.ArgNames) {
			name = call.ArgNames[i]
		}
		if name != "" {
			named[name] = v
		} else {
			positional = append(positional, v)
		}
	}

	savedFrames := e.frames
	savedLoops := e.loops
	newFrame := newFrame(gen.StackSize)
	e.frames = append(e.frames, newFrame)
	e.loops = nil
	defer func() {
		e.frames = savedFrames
		e.loops = savedLoops
	}()

	for i, param := range gen.Params {
		var v Value
		if i < len(positional) {
			v = positional[i]
		} else if nv, ok := named[param.Name]; ok {
			v = nv
		} else if param.Default != nil {
			dv, err := e.eval(param.Default)
			if err != nil {
				return Undefined(), err
			}
			v = dv
		} else {
			v = zeroOf(param.ResolvedType)
		}
		cv, err := e.coerce(call.Token, v, param.ResolvedType)
		if err != nil {
			return Undefined(), err
		}
		newFrame.set(i, cv)
	}

	ctrl, err := e.execBlock(gen.Body)
	if err != nil {
		return Undefined(), err
	}
	if ctrl.kind == ctrlBreak || ctrl.kind == ctrlContinue {
		return Undefined(), fmt.Errorf("evaluator: break/continue escaped generator %q", gen.Name)
	}
	e.out.flushTrailingNewline()
	return Void(), nil
}
