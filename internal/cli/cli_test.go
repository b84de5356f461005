package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree(t *testing.T) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), make([]byte, 10), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b"), make([]byte, 50), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "c"), make([]byte, 5), 0o600))

	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := New("v0.0.0-test").Command()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func TestCommandJSON(t *testing.T) {
	t.Parallel()

	root := testTree(t)

	stdout, _, err := execute(t, root, "--output", "json", "--top", "1", "--threads", "2")
	require.NoError(t, err)

	var decoded struct {
		Root         string `json:"root"`
		Files        uint64 `json:"files"`
		Directories  uint64 `json:"directories"`
		Bytes        uint64 `json:"bytes"`
		Workers      int    `json:"workers"`
		LargestFiles []struct {
			Size uint64 `json:"size"`
			Path string `json:"path"`
		} `json:"largest_files"`
		LargestDirs []struct {
			Size uint64 `json:"size"`
			Path string `json:"path"`
		} `json:"largest_dirs"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))

	assert.Equal(t, root, decoded.Root)
	assert.Equal(t, uint64(3), decoded.Files)
	assert.Equal(t, uint64(2), decoded.Directories)
	assert.Equal(t, uint64(65), decoded.Bytes)
	assert.Equal(t, 2, decoded.Workers)
	require.Len(t, decoded.LargestFiles, 1)
	assert.Equal(t, uint64(50), decoded.LargestFiles[0].Size)
	require.Len(t, decoded.LargestDirs, 1)
	assert.Equal(t, root, decoded.LargestDirs[0].Path)
	assert.Equal(t, uint64(60), decoded.LargestDirs[0].Size)
}

func TestCommandTable(t *testing.T) {
	t.Parallel()

	root := testTree(t)

	stdout, _, err := execute(t, root)
	require.NoError(t, err)

	for _, want := range []string{
		"Scan statistics:",
		"directories",
		"total entries",
		"65 B",
		"Largest directories found:",
		"Largest files found:",
		"Elapsed:",
	} {
		assert.Contains(t, stdout, want)
	}

	assert.NotContains(t, stdout, "skipped")
}

func TestCommandPlain(t *testing.T) {
	t.Parallel()

	root := testTree(t)

	stdout, _, err := execute(t, root, "-o", "plain", "-n", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, []string{"60 B", "dir", filepath.ToSlash(root)}, strings.Split(lines[0], "\t"))
	assert.Equal(t, []string{"5 B", "dir", filepath.ToSlash(filepath.Join(root, "sub"))}, strings.Split(lines[1], "\t"))
	assert.Equal(t, []string{"50 B", "file", filepath.ToSlash(filepath.Join(root, "b"))}, strings.Split(lines[2], "\t"))
	assert.Equal(t, []string{"10 B", "file", filepath.ToSlash(filepath.Join(root, "a"))}, strings.Split(lines[3], "\t"))
}

func TestCommandEnvironmentDefaults(t *testing.T) {
	root := testTree(t)

	t.Setenv("DI_TOP", "1")
	t.Setenv("DI_OUTPUT", "plain")

	stdout, _, err := execute(t, root)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), 2)

	// Flags win over the environment.
	stdout, _, err = execute(t, root, "--top", "2")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(stdout), "\n"), 4)
}

func TestCommandRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	root := testTree(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "output", args: []string{root, "-o", "xml"}, want: "invalid output format"},
		{name: "threads", args: []string{root, "-t", "-1"}, want: "threads cannot be negative"},
		{name: "top", args: []string{root, "-n", "-2"}, want: "top cannot be negative"},
		{name: "missing root", args: []string{filepath.Join(root, "nope")}, want: "resolving root"},
		{name: "too many args", args: []string{root, root}, want: "accepts at most 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCommandVerboseLogsToStderr(t *testing.T) {
	t.Parallel()

	root := testTree(t)

	stdout, stderr, err := execute(t, root, "-o", "json", "-v")
	require.NoError(t, err)

	assert.Contains(t, stderr, "scanning directory")
	assert.True(t, json.Valid([]byte(stdout)))
}

func TestDisplayPaths(t *testing.T) {
	t.Parallel()

	cwd := filepath.FromSlash("/home/user")

	inside := displayPaths(cwd, filepath.Join(cwd, "project"), true)
	assert.Equal(t, "project/src/main.go", inside(filepath.Join(cwd, "project", "src", "main.go")))
	assert.Equal(t, "project", inside(filepath.Join(cwd, "project")))

	outside := displayPaths(cwd, filepath.FromSlash("/var/log"), true)
	assert.Equal(t, "/var/log/syslog", outside(filepath.FromSlash("/var/log/syslog")))

	noCwd := displayPaths("", filepath.FromSlash("/var/log"), false)
	assert.Equal(t, "/var/log/syslog", noCwd(filepath.FromSlash("/var/log/syslog")))
}

func TestLevelFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zerolog.WarnLevel, levelFor(0))
	assert.Equal(t, zerolog.InfoLevel, levelFor(1))
	assert.Equal(t, zerolog.DebugLevel, levelFor(2))
	assert.Equal(t, zerolog.TraceLevel, levelFor(3))
	assert.Equal(t, zerolog.TraceLevel, levelFor(7))
}
