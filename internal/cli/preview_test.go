package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pfsc/internal/testutil"
)

func TestPreview(t *testing.T) {
	root := testutil.StandardTree(t)
	testutil.WriteFile(t, root, "templates/template.md", testTemplate)

	out, err := execute(t, "preview", "SR", "-i", root, "--style", "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Surface Reflectance")
	assert.Contains(t, out, "Metadata Machine Readability")
}

func TestPreview_NoTemplate(t *testing.T) {
	root := testutil.StandardTree(t)

	out, err := execute(t, "preview", "SR", "-i", root, "--style", "notty")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeTemplate+"]: no Markdown template at ")
}
