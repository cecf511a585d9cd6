package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/env"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

// closers releases resources in reverse order of acquisition.
type closers []func() error

func (c *closers) add(fn func() error) {
	*c = append(*c, fn)
}

func (c closers) close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// bootstrap builds the services a command needs at the given level.
func bootstrap(ctx context.Context, configDir string, level cli.Level) (_ *cli.Services, err error) {
	if configDir == "" {
		if configDir, err = file.DefaultDir(); err != nil {
			return nil, err
		}
	}

	// The process environment wins over both .env files.
	if err := env.LoadDotEnv(".env", filepath.Join(configDir, ".env")); err != nil {
		return nil, err
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(env.NewOverlay(configStore), ai.NewConfigValidator(), configDir)

	result := &cli.Services{Settings: settingsService}
	if level < cli.LevelStores {
		return result, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	result.DocumentsDir = settings.DocumentsDir
	result.TopK = settings.Retrieval.TopK

	var cleanup closers
	defer func() {
		if err != nil {
			if cerr := cleanup.close(); cerr != nil {
				logger.Warn("cleanup after failed start: %v", cerr)
			}
		}
	}()

	metadata, err := storage.NewMetadataStore(ctx, settings.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}
	cleanup.add(metadata.Close)

	indexes, err := flat.NewStore(settings.Index.Path)
	if err != nil {
		return nil, err
	}
	if err := indexes.Open(); err != nil {
		return nil, fmt.Errorf("open vector index: %w", err)
	}
	cleanup.add(indexes.Close)

	// Without the full level, indexing can only verify.
	guard := services.NewIndexGuard()
	result.Stats = services.NewStatsService(indexes, metadata, guard)
	result.Indexing = services.NewIndexingService(nil, nil, nil, indexes, metadata, guard)
	result.Close = cleanup.close

	if level < cli.LevelFull {
		return result, nil
	}

	aiServices, err := ai.Init(ctx, settings)
	if err != nil {
		return nil, err
	}
	cleanup.add(func() error {
		aiServices.Close()
		return nil
	})
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	chunker, err := postprocessors.NewChunkingPipeline(settings.Chunking)
	if err != nil {
		return nil, err
	}
	loader := filesystem.New(settings.DocumentsDir, normalisers.NewDefaultRegistry())

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return nil, err
	}

	retrieval := services.NewRetrievalService(aiServices.EmbeddingService, indexes, metadata, guard)
	result.Retrieval = retrieval
	result.Indexing = services.NewIndexingService(loader, chunker, aiServices.EmbeddingService, indexes, metadata, guard)
	result.Answer = services.NewAnswerService(retrieval, aiServices.LLMService,
		services.WithPromptStore(prompts),
		services.WithTemperature(settings.LLM.Temperature),
	)

	return result, nil
}
