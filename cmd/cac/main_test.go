package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-lang/cac/frontend"
	"github.com/ca-lang/cac/lower"
)

func TestModuleName(t *testing.T) {
	assert.Equal(t, "foo", moduleName("foo.ca"))
	assert.Equal(t, "foo", moduleName("/tmp/dir/foo.ca"))
	assert.Equal(t, "noext", moduleName("noext"))
}

func TestRuntimeLibPathDefault(t *testing.T) {
	os.Unsetenv(runtimeLibPathEnv)
	assert.Equal(t, "cruntime", runtimeLibPath())
}

func TestRuntimeLibPathFromEnv(t *testing.T) {
	os.Setenv(runtimeLibPathEnv, "/opt/ca/runtime")
	defer os.Unsetenv(runtimeLibPathEnv)
	assert.Equal(t, "/opt/ca/runtime", runtimeLibPath())
}

func TestWriteOutputStdoutAndFile(t *testing.T) {
	var sawStdout bool
	err := writeOutput("", func(f *os.File) error {
		sawStdout = f == os.Stdout
		return nil
	})
	require.NoError(t, err)
	assert.True(t, sawStdout)

	path := filepath.Join(t.TempDir(), "out.txt")
	err = writeOutput(path, func(f *os.File) error {
		_, werr := f.WriteString("hello")
		return werr
	})
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestDumpTypesReportsFormalSignatures(t *testing.T) {
	src := `
fn add(a: i32, b: i32) -> i32 {
	return a + b;
}
`
	prog, err := frontend.Parse("dumptypes.ca", []byte(src))
	require.NoError(t, err)

	d := lower.New("dumptypes")
	require.NoError(t, d.Compile(prog))

	path := filepath.Join(t.TempDir(), "types.txt")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, dumpTypes(f, d, prog))
	require.NoError(t, f.Close())

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(got)
	assert.True(t, strings.Contains(out, "fn add -> i32"))
	assert.True(t, strings.Contains(out, "arg a: i32"))
	assert.True(t, strings.Contains(out, "arg b: i32"))
}

func TestAnyOutputFlagSetDefaultsFalse(t *testing.T) {
	*llFlag, *sFlag, *cFlag, *nativeFlag, *jitFlag, *dotFlag, *typesFlag = false, false, false, false, false, false, false
	assert.False(t, anyOutputFlagSet())
	*llFlag = true
	assert.True(t, anyOutputFlagSet())
	*llFlag = false
}
