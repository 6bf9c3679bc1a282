package platform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotationFilePath(t *testing.T) {
	var a Annotation
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "file_path",
		"text": "sandbox:/mnt/data/result.csv",
		"file_path": {"file_id": "assistant-file-3"}
	}`), &a))

	assert.Equal(t, AnnotationFilePath, a.Kind)
	assert.Equal(t, "sandbox:/mnt/data/result.csv", a.Text)
	assert.Equal(t, "assistant-file-3", a.FileID)
	assert.Empty(t, a.URL)
}

func TestAnnotationFileCitation(t *testing.T) {
	var a Annotation
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "file_citation",
		"text": "【4:0†report.pdf】",
		"file_citation": {"file_id": "assistant-file-7", "quote": "revenue grew 12%"}
	}`), &a))

	assert.Equal(t, AnnotationCitation, a.Kind)
	assert.Equal(t, "【4:0†report.pdf】", a.Title)
	assert.Equal(t, "revenue grew 12%", a.Quote)
	assert.Equal(t, "assistant-file-7", a.FileID)
}

func TestAnnotationURLCitation(t *testing.T) {
	var a Annotation
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": "url_citation",
		"text": "[1]",
		"url_citation": {"url": "https://example.com/doc", "title": "Example Doc"}
	}`), &a))

	assert.Equal(t, AnnotationCitation, a.Kind)
	assert.Equal(t, "https://example.com/doc", a.URL)
	assert.Equal(t, "Example Doc", a.Title)
	assert.Empty(t, a.FileID)
}

func TestAnnotationUnknownType(t *testing.T) {
	var a Annotation
	require.NoError(t, json.Unmarshal([]byte(`{"type": "something_new", "text": "x"}`), &a))

	assert.Equal(t, AnnotationUnknown, a.Kind)
	assert.Equal(t, "x", a.Text)
}

func TestAnnotationMissingVariantPayload(t *testing.T) {
	// A declared type without its payload object still picks the right kind.
	var a Annotation
	require.NoError(t, json.Unmarshal([]byte(`{"type": "file_path", "text": "p"}`), &a))

	assert.Equal(t, AnnotationFilePath, a.Kind)
	assert.Empty(t, a.FileID)
}
