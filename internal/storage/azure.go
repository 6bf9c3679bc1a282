package storage

import (
	"context"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/logging"
)

// AzureStore writes blobs to an Azure storage container.
type AzureStore struct {
	client    *azblob.Client
	container string
	log       *logging.Logger
}

// NewAzureStore connects to the account named by the connection string.
// Missing settings fail here, before any turn needs the store.
func NewAzureStore(connectionString, container string, log *logging.Logger) (*AzureStore, error) {
	if connectionString == "" {
		return nil, &domain.ConfigError{Msg: "blob connection string not set"}
	}
	if container == "" {
		return nil, &domain.ConfigError{Msg: "blob container not set"}
	}

	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, &domain.ConfigError{Msg: "invalid blob connection string: " + err.Error()}
	}

	return &AzureStore{
		client:    client,
		container: container,
		log:       log.Sub("blob"),
	}, nil
}

func (s *AzureStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	_, err := s.client.UploadBuffer(ctx, s.container, name, data, nil)
	if err != nil {
		return "", &domain.RemoteError{Op: "upload blob " + name, Err: err}
	}

	url := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(name).URL()
	s.log.Debug().Str("blob", name).Int("bytes", len(data)).Msg("blob uploaded")
	return url, nil
}

func (s *AzureStore) Download(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, name, nil)
	if err != nil {
		return nil, &domain.RemoteError{Op: "download blob " + name, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.RemoteError{Op: "download blob " + name, Err: err}
	}
	return data, nil
}

var _ Store = (*AzureStore)(nil)
