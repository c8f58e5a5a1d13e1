package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pfsc/internal/resolver"
	"github.com/roach88/pfsc/internal/schema"
	"github.com/roach88/pfsc/internal/testutil"
)

func newLoader(t *testing.T, root string) *Loader {
	t.Helper()
	return New(resolver.New(root, resolver.DefaultLayout(), schema.MustNew()), nil)
}

func TestLoadSpecification(t *testing.T) {
	l := newLoader(t, testutil.StandardTree(t))

	spec, err := l.LoadSpecification("SR")
	require.NoError(t, err)

	assert.Equal(t, "SR", spec.ID)
	assert.Equal(t, "Surface Reflectance", spec.Title)
	assert.Equal(t, "5.1", spec.Version)
	assert.Equal(t, "Optical", spec.Type)
	assert.Equal(t, "Optical multispectral data.", spec.AppliesTo)

	require.Len(t, spec.Introduction, 1)
	assert.Equal(t, "overview", spec.Introduction[0].ID)
	require.Len(t, spec.Annexes, 1)
	assert.Equal(t, "history", spec.Annexes[0].ID)
	require.Len(t, spec.Glossary, 1)
	assert.Equal(t, "Pixel", spec.Glossary[0].Term)
	assert.Equal(t, []string{"ceos2021"}, spec.References)

	require.Len(t, spec.Authors, 2)
	assert.Equal(t, "USGS", spec.Authors[1].Name)

	require.Len(t, spec.Requirements, 2)
	assert.Equal(t, "radiometric", spec.Requirements[1].Category.ID)
	assert.Len(t, spec.Requirements[1].Requirements, 2)
}

func TestLoadSpecification_IDFromFolder(t *testing.T) {
	root := testutil.StandardTree(t)
	files := testutil.StandardFiles()
	testutil.WriteFile(t, root, "pfs/SR2/document.yaml", files["pfs/SR/document.yaml"])
	testutil.WriteFile(t, root, "pfs/SR2/authors.yaml", files["pfs/SR/authors.yaml"])
	testutil.WriteFile(t, root, "pfs/SR2/requirements.yaml", files["pfs/SR/requirements.yaml"])
	l := newLoader(t, root)

	spec, err := l.LoadSpecification("SR2")
	require.NoError(t, err)
	assert.Equal(t, "SR2", spec.ID)
}

func TestLoadSpecification_UnquotedVersion(t *testing.T) {
	root := testutil.StandardTree(t)
	doc := strings.Replace(testutil.StandardFiles()["pfs/SR/document.yaml"], `version: "5.1"`, "version: 5.10", 1)
	testutil.WriteFile(t, root, "pfs/SR/document.yaml", doc)
	l := newLoader(t, root)

	spec, err := l.LoadSpecification("SR")
	require.NoError(t, err)
	assert.Equal(t, "5.10", spec.Version, "read as written, not as a float")
}

func TestLoadSpecification_MissingDirectory(t *testing.T) {
	l := newLoader(t, testutil.StandardTree(t))

	_, err := l.LoadSpecification("XYZ")
	require.Error(t, err)
	assert.True(t, resolver.IsKind(err, resolver.MissingDirectory))
	assert.Contains(t, err.Error(), "XYZ")
}

func TestLoadSpecification_MissingSubFile(t *testing.T) {
	root := testutil.StandardTree(t)
	testutil.WriteFile(t, root, "pfs/BAD/document.yaml", testutil.StandardFiles()["pfs/NRB/document.yaml"])
	l := newLoader(t, root)

	_, err := l.LoadSpecification("BAD")
	require.Error(t, err)
	assert.True(t, resolver.IsKind(err, resolver.MissingFile))
	assert.Contains(t, err.Error(), "authors.yaml")
}

func TestLoadSpecification_InvalidDocument(t *testing.T) {
	root := testutil.StandardTree(t)
	testutil.WriteFile(t, root, "pfs/BAD/document.yaml", "id: BAD\ntitle: Bad\ntype: Thermal\napplies_to: x\n")
	l := newLoader(t, root)

	_, err := l.LoadSpecification("BAD")
	require.Error(t, err)
	assert.True(t, resolver.IsKind(err, resolver.SchemaViolation))
	assert.Contains(t, err.Error(), "document.yaml")
}

func TestLoadAll_PreservesOrder(t *testing.T) {
	l := newLoader(t, testutil.StandardTree(t))

	ids := []string{"ST", "NRB", "SR"}
	for i := 0; i < 5; i++ {
		specs, err := l.LoadAll(context.Background(), ids)
		require.NoError(t, err)
		require.Len(t, specs, 3)
		for j, spec := range specs {
			assert.Equal(t, ids[j], spec.ID)
		}
	}
}

func TestLoadAll_Error(t *testing.T) {
	l := newLoader(t, testutil.StandardTree(t))

	_, err := l.LoadAll(context.Background(), []string{"SR", "MISSING"})
	require.Error(t, err)
	assert.True(t, resolver.IsKind(err, resolver.MissingDirectory))
}

func TestLoadAll_EarliestErrorWins(t *testing.T) {
	root := testutil.StandardTree(t)
	require.NoError(t, os.Remove(filepath.Join(root, "pfs", "ST", "authors.yaml")))
	l := newLoader(t, root)

	for i := 0; i < 10; i++ {
		_, err := l.LoadAll(context.Background(), []string{"SR", "MISSING", "ST"})
		require.Error(t, err)
		assert.True(t, resolver.IsKind(err, resolver.MissingDirectory), "got %v", err)
	}
}

func TestLoadAll_Cancelled(t *testing.T) {
	l := newLoader(t, testutil.StandardTree(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.LoadAll(ctx, []string{"SR"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscover(t *testing.T) {
	root := testutil.StandardTree(t)
	// a folder without a document file is not a specification
	testutil.WriteFile(t, root, "pfs/EMPTY/notes.txt", "x")

	ids, err := Discover(root, resolver.DefaultLayout())
	require.NoError(t, err)
	assert.Equal(t, []string{"NRB", "SR", "ST"}, ids)
}

func TestDiscover_CustomLayout(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "specs/A/doc.yaml", "")
	layout := resolver.DefaultLayout()
	layout.SpecDir = "specs/{id}"
	layout.Document = "doc.yaml"

	ids, err := Discover(root, layout)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids)

	layout.SpecDir = "specs"
	_, err = Discover(root, layout)
	assert.Error(t, err)
}
