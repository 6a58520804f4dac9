package mashup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertQuery_EmptyDocument(t *testing.T) {
	doc := UpsertQuery("", "Customers", `Sql.Database("srv","db")`, "", "")
	want := "section Section1;\r\n" +
		"shared Customers = let\r\n  Source = Sql.Database(\"srv\",\"db\")\r\nin\r\n  Source;\r\n"
	assert.Equal(t, want, doc)
}

func TestUpsertQuery_EmptyDocumentWithSectionAttribute(t *testing.T) {
	staging := `[StagingDefinition = [Kind = "FastCopy"]]`
	doc := UpsertQuery("", "A", "1", "", staging)
	assert.True(t, strings.HasPrefix(doc, staging+"\r\nsection Section1;\r\n"))
}

func TestUpsertQuery_SectionAttributeInsertedOnce(t *testing.T) {
	staging := `[StagingDefinition = [Kind = "FastCopy"]]`
	doc := UpsertQuery("", "A", "1", "", staging)
	doc = UpsertQuery(doc, "B", "2", "", staging)
	assert.Equal(t, 1, strings.Count(doc, staging))
	assert.Equal(t, 1, strings.Count(doc, "section Section1;"))
}

func TestUpsertQuery_SectionAttributeTextInsideQueryBody(t *testing.T) {
	// The attribute bytes appearing inside a string literal in a query's
	// code must not count as the attribute being installed.
	staging := `[StagingDefinition = [Kind = "FastCopy"]]`
	doc := "section Section1;\r\nshared A = 1; // " + staging + "\r\n"

	out := UpsertQuery(doc, "B", "2", "", staging)
	assert.True(t, strings.HasPrefix(out, staging+"\r\nsection Section1;"))
	assert.Equal(t, 2, strings.Count(out, staging))
}

func TestUpsertQuery_AppendsToExistingDocument(t *testing.T) {
	doc := UpsertQuery("", "A", "1", "", "")
	doc = UpsertQuery(doc, "B", "2", "", "")
	queries := ParseQueries(doc)
	require.Len(t, queries, 2)
	assert.Equal(t, "A", queries[0].Name)
	assert.Equal(t, "B", queries[1].Name)
}

func TestUpsertQuery_ReplacesInPlace(t *testing.T) {
	doc := UpsertQuery("", "A", "1", "", "")
	doc = UpsertQuery(doc, "B", "2", "", "")
	doc = UpsertQuery(doc, "C", "3", "", "")

	edited := UpsertQuery(doc, "B", "99", `[Description = "updated"]`, "")

	queries := ParseQueries(edited)
	require.Len(t, queries, 3)
	assert.Equal(t, []string{"A", "B", "C"},
		[]string{queries[0].Name, queries[1].Name, queries[2].Name},
		"replacement preserves declaration order")
	assert.Contains(t, queries[1].Code, "99")
	assert.Equal(t, `[Description = "updated"]`, queries[1].Attribute)

	// Unrelated declarations keep their exact bytes.
	assert.Contains(t, edited, "shared A = let\r\n  Source = 1\r\nin\r\n  Source;")
	assert.Contains(t, edited, "shared C = let\r\n  Source = 3\r\nin\r\n  Source;")
}

func TestUpsertQuery_ReplaceDropsOldAttribute(t *testing.T) {
	doc := UpsertQuery("", "A", "1", `[Description = "old"]`, "")
	edited := UpsertQuery(doc, "A", "1", "", "")
	assert.NotContains(t, edited, "old")
	queries := ParseQueries(edited)
	require.Len(t, queries, 1)
	assert.Empty(t, queries[0].Attribute)
}

func TestUpsertQuery_Idempotent(t *testing.T) {
	once := UpsertQuery("", "Orders", `Sql.Database("s","d")`, `[Description = "o"]`, "")
	twice := UpsertQuery(once, "Orders", `Sql.Database("s","d")`, `[Description = "o"]`, "")
	assert.Equal(t, once, twice)
}

func TestUpsertQuery_ParseSynthesizeInverse(t *testing.T) {
	attr := `[Description = "inverse"]`
	doc := UpsertQuery("", "Round", "42", attr, "")
	queries := ParseQueries(doc)
	require.Len(t, queries, 1)
	assert.Equal(t, "Round", queries[0].Name)
	assert.Equal(t, attr, queries[0].Attribute)

	// The bare expression was wrapped; strip the wrapper to recover it.
	code := queries[0].Code
	code = strings.TrimPrefix(code, "let\r\n  Source = ")
	code = strings.TrimSuffix(code, "\r\nin\r\n  Source")
	assert.Equal(t, "42", code)
}

func TestUpsertQuery_LetExpressionNotRewrapped(t *testing.T) {
	code := "let\r\n  X = 1\r\nin\r\n  X"
	doc := UpsertQuery("", "A", code, "", "")
	queries := ParseQueries(doc)
	require.Len(t, queries, 1)
	assert.Equal(t, code, queries[0].Code)
}

func TestUpsertQuery_NameNeedingQuoting(t *testing.T) {
	doc := UpsertQuery("", "My Query (raw)", "1", "", "")
	assert.Contains(t, doc, `shared #"My Query (raw)" =`)
	queries := ParseQueries(doc)
	require.Len(t, queries, 1)
	assert.Equal(t, "My Query (raw)", queries[0].Name)
}

func TestUpsertQuery_MalformedDocumentFallsBackToAppend(t *testing.T) {
	doc := UpsertQuery("this is not a mashup document", "A", "1", "", "")
	queries := ParseQueries(doc)
	require.Len(t, queries, 1)
	assert.Equal(t, "A", queries[0].Name)
	assert.Contains(t, doc, "this is not a mashup document")
}
