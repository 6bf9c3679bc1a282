package platform

import "encoding/json"

// AnnotationKind discriminates annotation variants. The variant is decided
// once, when the payload is parsed, so readers never probe optional fields.
type AnnotationKind string

const (
	// AnnotationCitation is a quote/title/url citation into source material.
	AnnotationCitation AnnotationKind = "citation"

	// AnnotationFilePath references a file the agent generated.
	AnnotationFilePath AnnotationKind = "file_path"

	// AnnotationUnknown is an annotation type this client does not handle.
	AnnotationUnknown AnnotationKind = "unknown"
)

// Annotation is a structured citation or file reference attached to a
// position within assistant text.
type Annotation struct {
	Kind AnnotationKind

	// Text is the placeholder span inside the assistant text, e.g. a
	// sandbox path for generated files.
	Text string

	// Citation fields. Absent values are empty strings.
	Quote string
	Title string
	URL   string

	// FileID is set for file_path annotations (and for file citations that
	// point into an uploaded document).
	FileID string
}

type annotationWire struct {
	Type         string `json:"type"`
	Text         string `json:"text"`
	FileCitation *struct {
		FileID string `json:"file_id"`
		Quote  string `json:"quote"`
	} `json:"file_citation,omitempty"`
	FilePath *struct {
		FileID string `json:"file_id"`
	} `json:"file_path,omitempty"`
	URLCitation *struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"url_citation,omitempty"`
}

// UnmarshalJSON decides the annotation variant at parse time.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var wire annotationWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	a.Text = wire.Text

	switch wire.Type {
	case "file_path":
		a.Kind = AnnotationFilePath
		if wire.FilePath != nil {
			a.FileID = wire.FilePath.FileID
		}
	case "file_citation":
		a.Kind = AnnotationCitation
		a.Title = wire.Text
		if wire.FileCitation != nil {
			a.Quote = wire.FileCitation.Quote
			a.FileID = wire.FileCitation.FileID
		}
	case "url_citation":
		a.Kind = AnnotationCitation
		if wire.URLCitation != nil {
			a.URL = wire.URLCitation.URL
			a.Title = wire.URLCitation.Title
		}
	default:
		a.Kind = AnnotationUnknown
	}
	return nil
}
