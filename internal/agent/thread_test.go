package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bridgeware/agentbridge/internal/platform"
)

func TestResolveReusesSuppliedThread(t *testing.T) {
	created := 0
	mock := &platform.Mock{
		CreateThreadFunc: func(ctx context.Context, spec platform.ThreadSpec) (*platform.Thread, error) {
			created++
			return &platform.Thread{ID: "thread_new"}, nil
		},
	}

	threads := NewThreads(mock, testLog())
	id, err := threads.Resolve(context.Background(), "thread_existing")
	require.NoError(t, err)
	assert.Equal(t, "thread_existing", id)
	assert.Zero(t, created)
}

func TestResolveCreatesThreadWhenMissing(t *testing.T) {
	threads := NewThreads(&platform.Mock{}, testLog())
	id, err := threads.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestResolveCreationFailureIsFatal(t *testing.T) {
	mock := &platform.Mock{
		CreateThreadFunc: func(ctx context.Context, spec platform.ThreadSpec) (*platform.Thread, error) {
			return nil, errors.New("quota exceeded")
		},
	}

	_, err := NewThreads(mock, testLog()).Resolve(context.Background(), "")
	require.Error(t, err)
}
