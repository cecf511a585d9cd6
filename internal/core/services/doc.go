// Package services implements the driving port interfaces.
//
// IndexingService rebuilds the vector index and metadata store together.
// RetrievalService, AnswerService and StatsService read them under an
// IndexGuard shared with the indexing service.
package services
