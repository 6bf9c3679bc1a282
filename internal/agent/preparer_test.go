package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/platform"
	"github.com/bridgeware/agentbridge/internal/storage"
)

func TestPrepareWithoutAttachment(t *testing.T) {
	p := NewPreparer(&platform.Mock{}, nil, testLog())

	spec, err := p.Prepare(context.Background(), domain.ChatTurnRequest{Message: "hi"}, &StepTrace{})
	require.NoError(t, err)
	assert.Equal(t, "user", spec.Role)
	assert.Equal(t, "hi", spec.Content)
	assert.Empty(t, spec.AttachmentFileIDs)
}

func TestPrepareWithAttachment(t *testing.T) {
	blobs := storage.NewMemoryStore()
	_, err := blobs.Upload(context.Background(), "data/input.csv", []byte("a,b\n"))
	require.NoError(t, err)

	mock := &platform.Mock{}
	p := NewPreparer(mock, blobs, testLog())

	trace := &StepTrace{}
	spec, err := p.Prepare(context.Background(), domain.ChatTurnRequest{
		Message: "analyze this",
		File:    "data/input.csv",
	}, trace)
	require.NoError(t, err)
	require.Len(t, spec.AttachmentFileIDs, 1)

	// Uploaded under the blob's basename.
	assert.Equal(t, "input.csv", mock.FileNames[spec.AttachmentFileIDs[0]])
	assert.Equal(t, []byte("a,b\n"), mock.Files[spec.AttachmentFileIDs[0]])
	assert.Len(t, trace.Steps(), 2)
}

func TestPrepareMissingBlob(t *testing.T) {
	p := NewPreparer(&platform.Mock{}, storage.NewMemoryStore(), testLog())

	_, err := p.Prepare(context.Background(), domain.ChatTurnRequest{
		Message: "analyze this",
		File:    "nope.csv",
	}, &StepTrace{})

	var nfErr *domain.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestPrepareAttachmentWithoutBlobStore(t *testing.T) {
	p := NewPreparer(&platform.Mock{}, nil, testLog())

	_, err := p.Prepare(context.Background(), domain.ChatTurnRequest{
		Message: "analyze this",
		File:    "input.csv",
	}, &StepTrace{})

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
