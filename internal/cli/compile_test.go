package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pfsc/internal/ir"
	"github.com/roach88/pfsc/internal/testutil"
)

func readDocument(t *testing.T, path string) ir.Document {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc ir.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func assertNotWritten(t *testing.T, base string) {
	t.Helper()
	for _, ext := range []string{".json", ".bib", ".md"} {
		assert.NoFileExists(t, base+ext)
	}
}

func TestCompile_SinglePFS(t *testing.T) {
	root := testutil.StandardTree(t)
	base := outBase(t, "sr")

	out, err := execute(t, "compile", "SR", "-i", root, "-o", base)
	require.NoError(t, err)

	assert.Contains(t, out, "Compiled SR (Surface Reflectance) from 1 PFS")
	assert.Contains(t, out, "4 requirement(s) in 2 categories, 3 glossary term(s), 2 reference(s)")
	assert.Contains(t, out, "Wrote "+base+".json")

	doc := readDocument(t, base+".json")
	assert.Equal(t, "SR", doc.ID)
	assert.Equal(t, []string{"SR"}, doc.Sources)
	assert.Equal(t, []string{"ceos2021", "usgs2019"}, doc.References)
	assert.Equal(t, ir.HistoryPlaceholder, doc.History)
	assert.False(t, doc.Editable)

	bib, err := os.ReadFile(base + ".bib")
	require.NoError(t, err)
	assert.Equal(t, "@misc{ceos2021, title={CEOS ARD Framework}}\n\n@misc{usgs2019, title={Landsat Handbook}}\n", string(bib))

	// No template in the tree, so no Markdown.
	assert.NoFileExists(t, base+".md")
}

func TestCompile_JSONOutput(t *testing.T) {
	root := testutil.StandardTree(t)
	base := outBase(t, "sr")

	out, err := execute(t, "compile", "SR", "-i", root, "-o", base, "--format", "json", "--editable")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   CompileSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "SR", resp.Data.ID)
	assert.Equal(t, 4, resp.Data.Requirements)
	assert.Equal(t, []string{base + ".json", base + ".bib"}, resp.Data.Files)

	assert.True(t, readDocument(t, base+".json").Editable)
}

func TestCompile_Combined(t *testing.T) {
	root := testutil.StandardTree(t)
	base := outBase(t, "combined")

	out, err := execute(t, "compile", "SR", "ST", "-i", root, "-o", base)
	require.NoError(t, err)
	assert.Contains(t, out, "Compiled SR_ST (Surface Reflectance / Surface Temperature) from 2 PFS")

	doc := readDocument(t, base+".json")
	assert.Equal(t, "SR_ST", doc.ID)
	assert.Equal(t, []string{"SR", "ST"}, doc.Sources)
	assert.Equal(t, ir.TypeOptical, doc.Type)
}

func TestCompile_MarkdownTemplate(t *testing.T) {
	root := testutil.StandardTree(t)
	testutil.WriteFile(t, root, "templates/template.md", testTemplate)
	base := outBase(t, "sr")

	_, err := execute(t, "compile", "SR", "-i", root, "-o", base)
	require.NoError(t, err)

	md, err := os.ReadFile(base + ".md")
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Surface Reflectance\n")
	assert.Contains(t, string(md), "## General Metadata\n")
	assert.Contains(t, string(md), "- general.metadata: Metadata Machine Readability (SR)\n")
	assert.Contains(t, string(md), "History: "+ir.HistoryPlaceholder)
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, root string)
		pfs      []string
		wantCode string
		wantExit int
	}{
		{
			name:     "unknown PFS",
			pfs:      []string{"XX"},
			wantCode: ErrCodeNotFound,
			wantExit: ExitCommandError,
		},
		{
			name: "missing requirement file",
			setup: func(t *testing.T, root string) {
				require.NoError(t, os.Remove(filepath.Join(root, "requirements", "sr.yaml")))
			},
			pfs:      []string{"SR"},
			wantCode: ErrCodeMissingFile,
			wantExit: ExitFailure,
		},
		{
			name: "schema violation",
			setup: func(t *testing.T, root string) {
				testutil.WriteFile(t, root, "pfs/SR/document.yaml", "id: SR\ntitle: Surface Reflectance\ntype: Radar\napplies_to: x\n")
			},
			pfs:      []string{"SR"},
			wantCode: ErrCodeSchema,
			wantExit: ExitFailure,
		},
		{
			name: "unmet dependency",
			setup: func(t *testing.T, root string) {
				testutil.WriteFile(t, root, "requirements/sr.yaml", "title: Surface Reflectance Measurement\ndependencies: [nope]\n")
			},
			pfs:      []string{"SR"},
			wantCode: ErrCodeUnmetDependency,
			wantExit: ExitFailure,
		},
		{
			name: "duplicate category",
			setup: func(t *testing.T, root string) {
				testutil.WriteFile(t, root, "pfs/SR/requirements.yaml",
					"- category: general\n  requirements: [metadata]\n- category: general\n  requirements: [traceability]\n")
			},
			pfs:      []string{"SR"},
			wantCode: ErrCodeValidation,
			wantExit: ExitFailure,
		},
		{
			name: "failing template",
			setup: func(t *testing.T, root string) {
				testutil.WriteFile(t, root, "templates/template.md", "~{ .Nope }~\n")
			},
			pfs:      []string{"SR"},
			wantCode: ErrCodeTemplate,
			wantExit: ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := testutil.StandardTree(t)
			if tt.setup != nil {
				tt.setup(t, root)
			}
			base := outBase(t, "out")

			args := append([]string{"compile"}, tt.pfs...)
			out, err := execute(t, append(args, "-i", root, "-o", base)...)
			require.Error(t, err)

			code, exit := Classify(err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantExit, exit)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.wantCode+"]")
			assertNotWritten(t, base)
		})
	}
}

func TestCompile_UnwritableOutputLeavesNothing(t *testing.T) {
	root := testutil.StandardTree(t)
	testutil.WriteFile(t, root, "templates/template.md", testTemplate)
	base := outBase(t, "sr")
	require.NoError(t, os.Mkdir(base+".bib", 0o755))

	out, err := execute(t, "compile", "SR", "-i", root, "-o", base)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeWriteFailed+"]")
	assertNotWritten(t, base)

	entries, err := os.ReadDir(filepath.Dir(base))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no staged files left behind")
	assert.Equal(t, "sr.bib", entries[0].Name())
}

func TestCompile_MissingInputRoot(t *testing.T) {
	out, err := execute(t, "compile", "SR", "-i", filepath.Join(t.TempDir(), "nope"), "-o", outBase(t, "sr"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "input root not found")
}

func TestCompile_History(t *testing.T) {
	root := testutil.StandardTree(t)
	db := filepath.Join(t.TempDir(), "history.db")
	base := outBase(t, "sr")

	_, err := execute(t, "compile", "SR", "-i", root, "-o", base, "--history", db)
	require.NoError(t, err)
	assert.Equal(t, ir.HistoryPlaceholder, readDocument(t, base+".json").History)

	// The second build lists the first one.
	_, err = execute(t, "compile", "SR", "-i", root, "-o", base, "--history", db)
	require.NoError(t, err)
	assert.Contains(t, readDocument(t, base+".json").History, "- Build 1 (")

	// Same content, so still one recorded build.
	out, err := execute(t, "history", db, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data []struct {
			Seq        int64  `json:"seq"`
			DocumentID string `json:"document_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "SR", resp.Data[0].DocumentID)
	assert.Equal(t, int64(1), resp.Data[0].Seq)
}
