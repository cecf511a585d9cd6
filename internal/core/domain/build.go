package domain

import "time"

// BuildReport describes the outcome of one full index build.
type BuildReport struct {
	// BuildID identifies the metadata generation written by this build.
	BuildID string `json:"build_id"`

	Documents        int `json:"documents"`
	Chunks           int `json:"chunks"`
	Vectors          int `json:"vectors"`
	MetadataInserted int `json:"metadata_inserted"`
	Dimension        int `json:"dimension"`

	Duration time.Duration `json:"duration_ns"`

	// Partial is set when the index was published but metadata
	// activation did not complete.
	Partial bool `json:"partial"`
}

// Consistent reports whether every vector received a metadata row.
func (r *BuildReport) Consistent() bool {
	return !r.Partial && r.MetadataInserted == r.Vectors
}

// ConsistencyReport compares the ID sets of the index and the metadata store.
type ConsistencyReport struct {
	IndexCount    int `json:"index_count" yaml:"index_count"`
	MetadataCount int `json:"metadata_count" yaml:"metadata_count"`

	// MissingMetadata lists IDs present in the index without a metadata row.
	MissingMetadata []int64 `json:"missing_metadata" yaml:"missing_metadata"`

	// MissingVectors lists IDs with a metadata row but no index entry.
	MissingVectors []int64 `json:"missing_vectors" yaml:"missing_vectors"`
}

// Consistent reports whether both stores agree on every ID.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.MissingMetadata) == 0 && len(r.MissingVectors) == 0
}

// SystemStats holds dashboard figures.
type SystemStats struct {
	Documents      int    `json:"documents" yaml:"documents"`
	Chunks         int    `json:"chunks" yaml:"chunks"`
	Vectors        int    `json:"vectors" yaml:"vectors"`
	IndexedVectors int    `json:"indexed_vectors" yaml:"indexed_vectors"`
	Dimension      int    `json:"dimension" yaml:"dimension"`
	BuildID        string `json:"build_id" yaml:"build_id"`
}
