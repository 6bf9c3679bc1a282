package agent

import (
	"context"
	"path/filepath"

	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/logging"
	"github.com/bridgeware/agentbridge/internal/platform"
	"github.com/bridgeware/agentbridge/internal/storage"
)

// Preparer turns a ChatTurnRequest into an outbound platform message, moving
// any referenced blob into the platform file store.
type Preparer struct {
	client platform.Client
	blobs  storage.Store
	log    *logging.Logger
}

// NewPreparer creates a message preparer. blobs may be nil when no attachment
// support is configured; requests naming a file then fail with a ConfigError.
func NewPreparer(client platform.Client, blobs storage.Store, log *logging.Logger) *Preparer {
	return &Preparer{client: client, blobs: blobs, log: log.Sub("preparer")}
}

// Prepare composes the user message for a turn. When the request names a
// stored blob, the blob is fetched, uploaded to the platform file store under
// its basename, and attached to the message. The bytes never touch disk. Any
// failure along that chain is fatal to the turn.
func (p *Preparer) Prepare(ctx context.Context, req domain.ChatTurnRequest, trace *StepTrace) (platform.MessageSpec, error) {
	spec := platform.MessageSpec{Role: "user", Content: req.Message}
	if req.File == "" {
		return spec, nil
	}

	data, err := p.blobFetch(ctx, req.File)
	if err != nil {
		return spec, err
	}
	trace.Add("fetched blob %s (%d bytes)", req.File, len(data))

	file, err := p.client.UploadFile(ctx, filepath.Base(req.File), data)
	if err != nil {
		return spec, err
	}
	trace.Add("uploaded attachment as %s", file.ID)
	p.log.Debug().Str("file", req.File).Str("fileId", file.ID).Msg("attachment prepared")

	spec.AttachmentFileIDs = []string{file.ID}
	return spec, nil
}

func (p *Preparer) blobFetch(ctx context.Context, name string) ([]byte, error) {
	if p.blobs == nil {
		return nil, &domain.ConfigError{Msg: "blob storage not configured, cannot attach " + name}
	}
	return p.blobs.Download(ctx, name)
}
