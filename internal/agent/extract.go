package agent

import (
	"path"
	"strings"

	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/platform"
)

// LastAssistantMessage returns the newest assistant message from a
// newest-first listing, or nil when the run produced none.
func LastAssistantMessage(msgs []platform.Message) *platform.Message {
	for i := range msgs {
		if msgs[i].Role == "assistant" {
			return &msgs[i]
		}
	}
	return nil
}

// ExtractResult reads the reply text, citation sources, and generated-file
// references out of an assistant message. Sources and files preserve the
// annotation order of the message.
func ExtractResult(msg *platform.Message) (string, []domain.Source, []domain.FileRef) {
	if msg == nil {
		return "", nil, nil
	}

	var sources []domain.Source
	var files []domain.FileRef
	for _, ann := range msg.Annotations() {
		switch ann.Kind {
		case platform.AnnotationCitation:
			sources = append(sources, domain.Source{
				Quote: ann.Quote,
				Title: ann.Title,
				URL:   ann.URL,
			})
		case platform.AnnotationFilePath:
			files = append(files, domain.FileRef{
				RemoteFileID: ann.FileID,
				LocalName:    suggestedName(ann.Text),
			})
		}
	}
	return msg.Text(), sources, files
}

// suggestedName derives a filename from an annotation's sandbox path,
// e.g. "sandbox:/mnt/data/chart.png" becomes "chart.png".
func suggestedName(text string) string {
	name := path.Base(strings.TrimPrefix(text, "sandbox:"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
