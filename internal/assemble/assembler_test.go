package assemble

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/docintel/answer-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults(n int) []models.SearchResult {
	results := make([]models.SearchResult, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, models.SearchResult{
			Title:   "Result " + string(rune('A'+i)),
			Link:    "https://example.com/" + string(rune('a'+i)),
			Snippet: "Snippet for result " + string(rune('A'+i)),
		})
	}
	return results
}

func TestAssemble_SearchResultsFirstUpToMaxItems(t *testing.T) {
	block := Assemble(sampleResults(6), nil, "", Options{MaxItems: 4})

	require.Len(t, block.Entries, 4)
	assert.Equal(t, "Result A", block.Entries[0].Title)
	assert.Equal(t, "Result D", block.Entries[3].Title)
}

func TestAssemble_SkipsEmptySnippetsAndDuplicateLinks(t *testing.T) {
	results := []models.SearchResult{
		{Title: "Good", Link: "https://example.com/a", Snippet: "text"},
		{Title: "No snippet", Link: "https://example.com/b"},
		{Title: "Duplicate", Link: "https://example.com/a", Snippet: "other text"},
		{Title: "Also good", Link: "https://example.com/c", Snippet: "more text"},
	}

	block := Assemble(results, nil, "", Options{})

	require.Len(t, block.Entries, 2)
	assert.Equal(t, "Good", block.Entries[0].Title)
	assert.Equal(t, "Also good", block.Entries[1].Title)
}

func TestAssemble_DocumentsFollowSearchResults(t *testing.T) {
	docs := []DocumentExcerpt{
		{
			Ref:     models.DocumentReference{ID: "doc-1", Name: "Handbook"},
			Content: "The travel budget is $50,000 per year.",
		},
	}

	block := Assemble(sampleResults(2), docs, "", Options{})

	require.Len(t, block.Entries, 3)
	assert.Equal(t, "Handbook", block.Entries[2].Title)
	assert.Equal(t, "document://doc-1", block.Entries[2].SourceURL)
}

func TestAssemble_DocumentFallsBackToSummary(t *testing.T) {
	docs := []DocumentExcerpt{
		{Ref: models.DocumentReference{ID: "doc-1", Name: "Empty", Summary: "summary only"}},
		{Ref: models.DocumentReference{ID: "doc-2", Name: "Blank"}},
	}

	block := Assemble(nil, docs, "", Options{})

	require.Len(t, block.Entries, 1)
	assert.Equal(t, "summary only", block.Entries[0].Content)
}

func TestAssemble_DocumentContentTruncated(t *testing.T) {
	long := strings.Repeat("x", 5000)
	docs := []DocumentExcerpt{
		{Ref: models.DocumentReference{ID: "doc-1", Name: "Long"}, Content: long},
	}

	block := Assemble(nil, docs, "", Options{MaxDocChars: 2000})

	require.Len(t, block.Entries, 1)
	assert.Len(t, block.Entries[0].Content, 2000)
}

func TestAssemble_InlineContextAppendedLast(t *testing.T) {
	block := Assemble(sampleResults(1), nil, "pasted document text", Options{})

	require.Len(t, block.Entries, 2)
	last := block.Entries[1]
	assert.Equal(t, "Uploaded Document", last.Title)
	assert.Equal(t, "document://inline", last.SourceURL)
	assert.Equal(t, "pasted document text", last.Content)
}

func TestAssemble_BlankInlineContextIgnored(t *testing.T) {
	block := Assemble(nil, nil, "   \n\t", Options{})
	assert.True(t, block.Empty())
}

func TestAssemble_EmptyInputsYieldEmptyBlock(t *testing.T) {
	block := Assemble(nil, nil, "", Options{})

	assert.True(t, block.Empty())
	assert.Equal(t, "", block.Serialize())
}

func TestAssemble_Deterministic(t *testing.T) {
	results := sampleResults(5)
	docs := []DocumentExcerpt{
		{Ref: models.DocumentReference{ID: "doc-1", Name: "Handbook"}, Content: "content"},
	}

	first := Assemble(results, docs, "inline", Options{}).Serialize()
	second := Assemble(results, docs, "inline", Options{}).Serialize()

	assert.Equal(t, first, second)
}

func TestSerialize_NumbersEntriesWithSourceURLs(t *testing.T) {
	block := Assemble(sampleResults(2), nil, "", Options{})
	out := block.Serialize()

	assert.Contains(t, out, "[1] Result A (https://example.com/a)")
	assert.Contains(t, out, "[2] Result B (https://example.com/b)")
	assert.Contains(t, out, "Snippet for result A")
}

func TestSerialize_NeverExceedsMaxChars(t *testing.T) {
	long := strings.Repeat("y", 1900)
	docs := make([]DocumentExcerpt, 0, 10)
	for i := 0; i < 10; i++ {
		docs = append(docs, DocumentExcerpt{
			Ref:     models.DocumentReference{ID: "doc-" + string(rune('a'+i)), Name: "Doc"},
			Content: long,
		})
	}

	for _, maxChars := range []int{100, 500, 8000} {
		block := Assemble(sampleResults(4), docs, long, Options{MaxChars: maxChars})
		assert.LessOrEqual(t, len(block.Serialize()), maxChars, "budget %d", maxChars)
	}
}

func TestTruncation_NeverSplitsRunes(t *testing.T) {
	multibyte := strings.Repeat("日本語テキスト", 400)

	docs := []DocumentExcerpt{
		{Ref: models.DocumentReference{ID: "doc-1", Name: "日本語"}, Content: multibyte},
	}

	for _, maxDocChars := range []int{100, 101, 102, 2000} {
		block := Assemble(nil, docs, "", Options{MaxDocChars: maxDocChars})
		require.Len(t, block.Entries, 1)
		assert.True(t, utf8.ValidString(block.Entries[0].Content), "doc budget %d", maxDocChars)
		assert.LessOrEqual(t, len(block.Entries[0].Content), maxDocChars)
	}

	for _, maxChars := range []int{50, 51, 52, 53} {
		block := Assemble(nil, docs, "", Options{MaxChars: maxChars})
		out := block.Serialize()
		assert.True(t, utf8.ValidString(out), "budget %d", maxChars)
		assert.LessOrEqual(t, len(out), maxChars)
	}
}
