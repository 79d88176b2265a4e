package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tangramlang/tangram/internal/ast"
	"github.com/tangramlang/tangram/internal/config"
	"github.com/tangramlang/tangram/internal/parser"
)

// readSource returns the main file's contents plus a display name for
// diagnostics, reading stdin when opts has no positional source file
// (spec.md §6: "when stdin is piped and no files are given, read stdin
// as source").
func readSource(opts *Options, stdin func() ([]byte, error)) (src, name string, err error) {
	if len(opts.Sources) == 0 {
		data, err := stdin()
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}
	path := opts.Sources[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), path, nil
}

// mainArgvSource is argv[0] as spec.md §6 defines it: the source-file
// path, or "piped" when the program read stdin.
func mainArgvSource(opts *Options) string {
	if len(opts.Sources) == 0 {
		return "piped"
	}
	return opts.Sources[0]
}

// supportFile is one parsed include/-I/extra-positional source, kept
// alongside its own name and text so the resolver's file table can
// report per-file diagnostics (SPEC_FULL.md "Multi-file programs via
// include retain per-file diagnostics") even after its definitions are
// folded into the main program.
type supportFile struct {
	name string
	src  string
	prog *ast.Program
}

// gatherSupportPrograms parses every additional positional source file,
// every `include "path";` directive in mainProg, and every *.tgm file
// found (non-recursively) under each -I directory, returning them all
// parsed but un-merged so the caller can report per-file parse errors
// before folding their definitions into the main program.
//
// Supplemental files contribute only their patterns/sums/generators/
// top-level declarations — a file pulled in this way is a library of
// definitions, not a second stream of output, so its own free literal
// body (if it has one) is discarded.
func gatherSupportPrograms(mainProg *ast.Program, mainDir string, opts *Options) ([]supportFile, []error) {
	var files []supportFile
	var errs []error

	seen := map[string]bool{}
	addFile := func(path string) {
		abs := path
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(mainDir, abs)
		}
		if seen[abs] {
			return
		}
		seen[abs] = true

		data, err := os.ReadFile(abs)
		if err != nil {
			errs = append(errs, fmt.Errorf("reading include %s: %w", path, err))
			return
		}
		p := parser.New(string(data), path, len(files)+1)
		prog := p.ParseProgram()
		if pErrs := p.Errors(); len(pErrs) > 0 {
			errs = append(errs, pErrs...)
			return
		}
		files = append(files, supportFile{name: path, src: string(data), prog: prog})
	}

	if len(opts.Sources) > 1 {
		for _, extra := range opts.Sources[1:] {
			addFile(extra)
		}
	}
	for _, inc := range mainProg.Includes {
		addFile(inc.Path)
	}
	for _, dir := range opts.IncludeDirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			errs = append(errs, fmt.Errorf("reading include directory %s: %w", dir, err))
			continue
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), config.SourceExt) {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			addFile(filepath.Join(dir, name))
		}
	}

	return files, errs
}

// mergeSupportPrograms folds every support program's top-level
// definitions into main, leaving main.Body (the only program whose
// literal content is ever rendered) untouched.
func mergeSupportPrograms(main *ast.Program, support []supportFile) {
	for _, s := range support {
		main.Directives = append(main.Directives, s.prog.Directives...)
		main.Patterns = append(main.Patterns, s.prog.Patterns...)
		main.Sums = append(main.Sums, s.prog.Sums...)
		main.Generators = append(main.Generators, s.prog.Generators...)
		main.TopDecls = append(main.TopDecls, s.prog.TopDecls...)
	}
}
