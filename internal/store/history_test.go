package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pfsc/internal/ir"
	"github.com/roach88/pfsc/internal/testutil"
)

func TestRecordBuild(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	gen := testutil.NewSequentialIDGenerator("")

	doc := createTestDocument("SR", "first", "SR")
	build, inserted, err := s.RecordBuild(ctx, doc, gen)
	require.NoError(t, err)
	assert.True(t, inserted)

	hash, err := ir.DocumentHash(doc)
	require.NoError(t, err)
	assert.Equal(t, Build{
		ID:               "build-0001",
		Seq:              1,
		DocumentID:       "SR",
		Sources:          []string{"SR"},
		ContentHash:      hash,
		RequirementCount: 2,
	}, build)
}

func TestRecordBuild_UnchangedContentIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	gen := testutil.NewSequentialIDGenerator("")

	first, inserted, err := s.RecordBuild(ctx, createTestDocument("SR", "same", "SR"), gen)
	require.NoError(t, err)
	require.True(t, inserted)

	// Editable and history do not change the content hash.
	again := createTestDocument("SR", "same", "SR")
	again.Editable = true
	again.History = "- Build 1"
	second, inserted, err := s.RecordBuild(ctx, again, gen)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first, second)

	builds, err := s.History(ctx, "SR")
	require.NoError(t, err)
	assert.Len(t, builds, 1)
}

func TestRecordBuild_SequenceIsGlobal(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	gen := testutil.NewSequentialIDGenerator("")

	_, _, err := s.RecordBuild(ctx, createTestDocument("SR", "v1", "SR"), gen)
	require.NoError(t, err)
	_, _, err = s.RecordBuild(ctx, createTestDocument("SR_ST", "v1", "SR", "ST"), gen)
	require.NoError(t, err)
	b, _, err := s.RecordBuild(ctx, createTestDocument("SR", "v2", "SR"), gen)
	require.NoError(t, err)
	assert.Equal(t, int64(3), b.Seq)

	sr, err := s.History(ctx, "SR")
	require.NoError(t, err)
	require.Len(t, sr, 2)
	assert.Equal(t, []int64{1, 3}, []int64{sr[0].Seq, sr[1].Seq})

	all, err := s.History(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"SR", "ST"}, all[1].Sources)
}

func TestRecordBuild_ContentChangeBackIsRecorded(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	gen := testutil.NewSequentialIDGenerator("")

	for _, desc := range []string{"a", "b", "a"} {
		_, inserted, err := s.RecordBuild(ctx, createTestDocument("SR", desc, "SR"), gen)
		require.NoError(t, err)
		assert.True(t, inserted, "description %q", desc)
	}
}

func TestHistory_Empty(t *testing.T) {
	builds, err := createTestStore(t).History(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, builds)
	assert.Empty(t, builds)
}

func TestHistoryText(t *testing.T) {
	assert.Equal(t, ir.HistoryPlaceholder, HistoryText(nil))

	text := HistoryText([]Build{
		{ID: "b1", Seq: 1, Sources: []string{"SR"}, ContentHash: "0123456789abcdef", RequirementCount: 4},
		{ID: "b2", Seq: 5, Sources: []string{"SR", "ST"}, ContentHash: "abc", RequirementCount: 6},
	})
	assert.Equal(t,
		"- Build 5 (b2): 6 requirements from SR, ST, content abc\n"+
			"- Build 1 (b1): 4 requirements from SR, content 0123456789ab",
		text)
}

func TestUUIDv7Generator(t *testing.T) {
	var gen UUIDv7Generator
	a, b := gen.Generate(), gen.Generate()

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, a, b)
}

func TestSources_RoundTrip(t *testing.T) {
	data, err := marshalSources([]string{"SR", "ST"})
	require.NoError(t, err)
	assert.Equal(t, `["SR","ST"]`, data)

	ids, err := unmarshalSources(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"SR", "ST"}, ids)

	ids, err = unmarshalSources("")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
