package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil retrieval service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingRetrievalService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Retrieval: &mockRetrievalService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.Handler())
		assert.Equal(t, DefaultTopK, server.topK)
	})

	t.Run("default top k option", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}}, WithDefaultTopK(7))
		require.NoError(t, err)
		assert.Equal(t, 7, server.topK)
		assert.Equal(t, 7, server.resolveTopK(0))
		assert.Equal(t, 2, server.resolveTopK(2))
	})

	t.Run("non-positive top k option is ignored", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}}, WithDefaultTopK(-1))
		require.NoError(t, err)
		assert.Equal(t, DefaultTopK, server.topK)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil retrieval service returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingRetrievalService)
	})

	t.Run("retrieval only is valid", func(t *testing.T) {
		ports := &Ports{
			Retrieval: &mockRetrievalService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Retrieval: &mockRetrievalService{},
			Answer:    &mockAnswerService{},
			Stats:     &mockStatsService{},
			Indexing:  &mockIndexingService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}
