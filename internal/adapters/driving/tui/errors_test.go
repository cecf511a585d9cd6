package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingRetrievalService.Error(), ErrMissingStatsService.Error())
}

func TestErrMissingRetrievalService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingRetrievalService.Error(), "retrieval service")
}

func TestErrMissingStatsService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingStatsService.Error(), "stats service")
}
