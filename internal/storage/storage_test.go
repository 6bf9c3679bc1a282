package storage

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/logging"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()

	url, err := s.Upload(context.Background(), "report.csv", []byte("a,b"))
	require.NoError(t, err)
	assert.Equal(t, "memory://report.csv", url)

	data, err := s.Download(context.Background(), "report.csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("a,b"), data)
}

func TestMemoryStoreMissingBlob(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Download(context.Background(), "nope")

	var nfErr *domain.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "blob", nfErr.Kind)
}

func TestNewAzureStoreRequiresSettings(t *testing.T) {
	log := logging.New(io.Discard, "silent")

	_, err := NewAzureStore("", "files", log)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)

	_, err = NewAzureStore("UseDevelopmentStorage=true", "", log)
	require.ErrorAs(t, err, &cfgErr)
}

func TestNewAzureStoreRejectsMalformedConnectionString(t *testing.T) {
	_, err := NewAzureStore("not a connection string", "files", logging.New(io.Discard, "silent"))

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
