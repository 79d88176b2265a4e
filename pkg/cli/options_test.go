package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Options
	}{
		{
			name: "bare source file",
			args: []string{"prog.tgm"},
			want: Options{Sources: []string{"prog.tgm"}},
		},
		{
			name: "output flag",
			args: []string{"prog.tgm", "-o", "out.txt"},
			want: Options{Sources: []string{"prog.tgm"}, Output: "out.txt"},
		},
		{
			name: "repeated include dirs",
			args: []string{"-I", "libs", "--include", "vendor", "prog.tgm"},
			want: Options{Sources: []string{"prog.tgm"}, IncludeDirs: []string{"libs", "vendor"}},
		},
		{
			name: "verbose",
			args: []string{"-v", "prog.tgm"},
			want: Options{Sources: []string{"prog.tgm"}, Verbose: true},
		},
		{
			name: "argv separator",
			args: []string{"prog.tgm", "--", "a", "b"},
			want: Options{Sources: []string{"prog.tgm"}, Argv: []string{"a", "b"}},
		},
		{
			name: "no sources reads stdin",
			args: nil,
			want: Options{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.args)
			require.NoError(t, err)
			require.Equal(t, &tt.want, got)
		})
	}
}

func TestParseArgs_Serve(t *testing.T) {
	got, err := ParseArgs([]string{"serve", "127.0.0.1:9090"})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9090", got.Serve)
}

func TestParseArgs_ServeRequiresAddr(t *testing.T) {
	_, err := ParseArgs([]string{"serve"})
	require.Error(t, err)
}

func TestParseArgs_MissingFlagValue(t *testing.T) {
	_, err := ParseArgs([]string{"-o"})
	require.Error(t, err)
}
