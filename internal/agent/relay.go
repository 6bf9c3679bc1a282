package agent

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/logging"
	"github.com/bridgeware/agentbridge/internal/platform"
	"github.com/bridgeware/agentbridge/internal/storage"
)

// Relay moves files the agent generated from the platform's file store into
// blob storage and returns their durable URLs.
type Relay struct {
	client platform.Client
	blobs  storage.Store
	log    *logging.Logger
}

// NewRelay creates a file relay. blobs may be nil when relaying is not
// configured; any relay attempt then fails with a ConfigError.
func NewRelay(client platform.Client, blobs storage.Store, log *logging.Logger) *Relay {
	return &Relay{client: client, blobs: blobs, log: log.Sub("relay")}
}

// RelayAll relays every referenced file in order and fills in its BlobURL.
// The blob name is a fresh uuid keeping the original extension, so repeated
// relays never collide and re-relays of the same name overwrite cleanly. The
// bytes move through memory only. The platform copy is deleted best-effort
// after a successful upload. Returns the updated refs and total bytes moved.
func (r *Relay) RelayAll(ctx context.Context, refs []domain.FileRef, trace *StepTrace) ([]domain.FileRef, int, error) {
	if len(refs) == 0 {
		return refs, 0, nil
	}
	if r.blobs == nil {
		return nil, 0, &domain.ConfigError{Msg: "blob storage not configured, cannot relay generated files"}
	}

	out := make([]domain.FileRef, 0, len(refs))
	total := 0
	for _, ref := range refs {
		relayed, n, err := r.relayOne(ctx, ref)
		if err != nil {
			return nil, total, fmt.Errorf("relaying %s: %w", ref.LocalName, err)
		}
		trace.Add("relayed %s to %s", ref.LocalName, relayed.BlobURL)
		out = append(out, relayed)
		total += n
	}
	return out, total, nil
}

func (r *Relay) relayOne(ctx context.Context, ref domain.FileRef) (domain.FileRef, int, error) {
	data, err := r.client.FileContent(ctx, ref.RemoteFileID)
	if err != nil {
		return ref, 0, err
	}

	blobName := uuid.NewString() + filepath.Ext(ref.LocalName)
	url, err := r.blobs.Upload(ctx, blobName, data)
	if err != nil {
		return ref, 0, err
	}

	// The platform copy is transient; losing the delete only leaks quota.
	if err := r.client.DeleteFile(ctx, ref.RemoteFileID); err != nil {
		r.log.Warn().Err(err).Str("fileId", ref.RemoteFileID).Msg("could not delete platform file")
	}

	r.log.Info().Str("fileId", ref.RemoteFileID).Str("blob", blobName).Int("bytes", len(data)).Msg("file relayed")
	ref.BlobURL = url
	return ref, len(data), nil
}
