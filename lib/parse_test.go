package lib

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/nblist/lib/search"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "nblist.config")
	require.NoError(t, os.WriteFile(fname, []byte(text), 0644))
	return fname
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		argv   []string
		mode   RunMode
		config string
		flags  []string
		valid  bool
	}{
		{nil, HelpMode, "", nil, true},
		{[]string{"help"}, HelpMode, "", []string{}, true},
		{[]string{"build", "a.config"}, BuildMode, "a.config", []string{}, true},
		{[]string{"Stats", "a.config", "--Cutoff", "2"}, StatsMode, "a.config",
			[]string{"--Cutoff", "2"}, true},
		{[]string{"confirm", "--Cutoff", "2"}, ConfirmMode, "", nil, false},
		{[]string{"check"}, CheckMode, "", nil, false},
		{[]string{"convert", "a.config"}, HelpMode, "", nil, false},
	}

	for i := range tests {
		mode, config, flags, err := ParseCommandLine(tests[i].argv)
		if !tests[i].valid {
			require.Error(t, err, "%d)", i)
			continue
		}
		require.NoError(t, err, "%d)", i)
		require.Equal(t, tests[i].mode, mode, "%d)", i)
		require.Equal(t, tests[i].config, config, "%d)", i)
		require.Equal(t, tests[i].flags, flags, "%d)", i)
	}
}

func TestLoadPrecedence(t *testing.T) {
	fname := writeConfig(t, `
[nblist]
Input = frames.xyz
Cutoff = 2.0
Method = brute
Threads = 1
ConvertArrays = false
LogFormat = json
`)
	t.Setenv("NBLIST_CUTOFF", "3.5")
	t.Setenv("NBLIST_LOG_FORMAT", "text")
	t.Setenv("NBLIST_THREADS", "1")

	args, err := Load(fname, []string{"--Cutoff", "4.25", "--Frames", "0..3"})
	require.NoError(t, err)

	require.Equal(t, "frames.xyz", args.Input)             // file
	require.Equal(t, "brute", args.Method)                 // file
	require.False(t, args.ConvertArrays)                   // file over default
	require.Equal(t, "text", args.LogFormat)               // env over file
	require.Equal(t, 4.25, args.Cutoff)                    // flag over env
	require.Equal(t, "0..3", args.Frames)                  // flag
	require.Equal(t, "ijdDS", args.Quantities)             // default
	require.Equal(t, "info", args.LogLevel)                // default
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.config"), nil)
	require.Error(t, err)

	_, err = Load(writeConfig(t, "[nblist]\nCutoff = big\n"), nil)
	require.Error(t, err)

	_, err = Load(writeConfig(t, "[nblist]\nColour = blue\n"), nil)
	require.Error(t, err)

	_, err = Load("", []string{"--Cutof", "2"})
	require.Error(t, err)

	_, err = Load("", []string{"--Cutoff", "2", "stray"})
	require.Error(t, err)

	t.Setenv("NBLIST_THREADS", "many")
	_, err = Load("", nil)
	require.Error(t, err)
}

func TestExampleConfig(t *testing.T) {
	raw, err := Load(writeConfig(t, ExampleConfig), nil)
	require.NoError(t, err)

	args, err := raw.Process()
	require.NoError(t, err)
	require.Equal(t, "frames.xyz", args.Input)
	require.Nil(t, args.Frames)
	require.Equal(t, "out/frame007.nbl", args.Output.Expand(7))
	require.Equal(t, "", args.Parquet)
	require.Equal(t, 3.0, args.Cutoff)
	require.True(t, args.ConvertArrays)
	require.Equal(t, search.KDTree{}, args.Enumerator)
	require.Equal(t, runtime.NumCPU(), args.Threads)
}

func TestProcess(t *testing.T) {
	valid := func() *RawArgs {
		args := DefaultRawArgs()
		args.Input, args.Cutoff = "frames.xyz", 2.5
		return args
	}

	args, err := valid().Process()
	require.NoError(t, err)
	require.Nil(t, args.Output)

	raw := valid()
	raw.Frames, raw.Output, raw.Method = "0..4 - 2", "f{%d,frame}.nbl", "brute"
	args, err = raw.Process()
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 3, 4}, args.Frames)
	require.Equal(t, "f3.nbl", args.Output.Expand(3))
	require.Equal(t, search.BruteForce{}, args.Enumerator)

	tests := []struct {
		edit func(*RawArgs)
		msg  string
	}{
		{func(a *RawArgs) { a.Input = "" }, "Input"},
		{func(a *RawArgs) { a.Frames = "1.." }, "Frames"},
		{func(a *RawArgs) { a.Frames = "-3 + 1" }, "Frames"},
		{func(a *RawArgs) { a.Output = "f{%d,snap}" }, "Output"},
		{func(a *RawArgs) { a.Cutoff = 0 }, "Cutoff"},
		{func(a *RawArgs) { a.Cutoff = -1 }, "Cutoff"},
		{func(a *RawArgs) { a.Quantities = "jid" }, "Quantities"},
		{func(a *RawArgs) { a.Quantities = "ijx" }, "Quantities"},
		{func(a *RawArgs) { a.Quantities = "ijdd" }, "Quantities"},
		{func(a *RawArgs) { a.Method = "octree" }, "Method"},
		{func(a *RawArgs) { a.Threads = 0 }, "Threads"},
		{func(a *RawArgs) { a.Threads = runtime.NumCPU() + 1 }, "threads"},
		{func(a *RawArgs) { a.LogLevel = "loud" }, "LogLevel"},
		{func(a *RawArgs) { a.LogFormat = "xml" }, "LogFormat"},
	}

	for i := range tests {
		raw := valid()
		tests[i].edit(raw)
		_, err := raw.Process()
		require.Error(t, err, "%d)", i)
		require.Contains(t, err.Error(), tests[i].msg, "%d)", i)
	}

	// Every problem is reported at once.
	raw = valid()
	raw.Input, raw.Cutoff, raw.Method = "", 0, "octree"
	_, err = raw.Process()
	require.Error(t, err)
	require.Len(t, strings.Split(err.Error(), "\n"), 3)
}

func TestParseMode(t *testing.T) {
	for m := HelpMode; m <= ConfirmMode; m++ {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		require.Equal(t, m, got)
	}
	_, err := ParseMode("convert")
	require.Error(t, err)
	require.Equal(t, "RunMode(9)", RunMode(9).String())
}

func TestPrintHelp(t *testing.T) {
	sb := &strings.Builder{}
	PrintHelp(sb)
	require.Contains(t, sb.String(), "nblist <mode> <config file>")
	require.Contains(t, sb.String(), "NBLIST_CUTOFF")
	require.Contains(t, sb.String(), "[nblist]")
}
