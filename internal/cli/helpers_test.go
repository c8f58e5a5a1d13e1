package cli

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

// execute runs the root command with args and returns what it wrote to
// stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(&RootOptions{Logger: zaptest.NewLogger(t)})
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// outBase returns an output base path in a fresh temp directory.
func outBase(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

const testTemplate = `# ~{ .Title }~
~{ range .Requirements }~
## ~{ .Category.Title }~
~{ range .Requirements }~
- ~{ .UID }~: ~{ .Title }~ (~{ join ", " .AppliesTo }~)
~{ end }~~{ end }~
History: ~{ .History }~
`
