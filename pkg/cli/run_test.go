package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

func TestRun_HelloWorld(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.tgm")
	require.NoError(t, os.WriteFile(src, []byte("Hello, world!\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := Run([]string{src}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Equal(t, "Hello, world!", stdout.String())
	require.Empty(t, stderr.String())
}

func TestRun_StdinFallback(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(nil, strings.NewReader("piped output\n"), &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Equal(t, "piped output", stdout.String())
}

func TestRun_ResolveErrorExitsNegativeOne(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.tgm")
	require.NoError(t, os.WriteFile(src, []byte(`${undeclared_name}`), 0o644))

	var stdout, stderr bytes.Buffer
	code := Run([]string{src}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, -1, code)
	require.NotEmpty(t, stderr.String())
}

func TestRun_OutputFlagWritesFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "hello.tgm")
	require.NoError(t, os.WriteFile(src, []byte("written to file\n"), 0o644))
	out := filepath.Join(dir, "out.txt")

	var stdout, stderr bytes.Buffer
	code := Run([]string{src, "-o", out}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Empty(t, stdout.String())

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "written to file", string(got))
}

func TestRun_ArgvSeparator(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "argv.tgm")
	require.NoError(t, os.WriteFile(src, []byte("${argv()[0]} ${argv()[1]}\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := Run([]string{src, "--", "extra"}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Equal(t, src+" extra", stdout.String())
}

func TestRun_IncludeDirective(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib.tgm")
	require.NoError(t, os.WriteFile(lib, []byte("generator greet() {hi}\n"), 0o644))
	main := filepath.Join(dir, "main.tgm")
	require.NoError(t, os.WriteFile(main, []byte(`include "lib.tgm";
${greet()}
`), 0o644))

	var stdout, stderr bytes.Buffer
	code := Run([]string{main}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Equal(t, "hi", stdout.String())
}

// TestRun_Golden drives a handful of source/expected-output pairs
// bundled as txtar archives under testdata, the way the teacher's own
// fixture-heavy packages keep expectations out of Go source.
func TestRun_Golden(t *testing.T) {
	archives, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	require.NoError(t, err)
	require.NotEmpty(t, archives)

	for _, path := range archives {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			require.NoError(t, err)

			dir := t.TempDir()
			var mainFile string
			var want string
			for _, f := range ar.Files {
				if f.Name == "expected" {
					want = strings.TrimSuffix(string(f.Data), "\n")
					continue
				}
				full := filepath.Join(dir, f.Name)
				require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
				require.NoError(t, os.WriteFile(full, f.Data, 0o644))
				if f.Name == "main.tgm" {
					mainFile = full
				}
			}
			require.NotEmpty(t, mainFile, "archive must contain main.tgm")

			var stdout, stderr bytes.Buffer
			code := Run([]string{mainFile}, strings.NewReader(""), &stdout, &stderr)
			require.Equal(t, 0, code, "stderr: %s", stderr.String())
			require.Equal(t, want, stdout.String())
		})
	}
}
