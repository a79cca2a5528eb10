// Package core defines the core business logic and interfaces for the dataset service.
package core

import "context"

// ObjectStore defines the interface for interacting with a hub bucket.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// ListJobConfig holds the configuration for a single list-building job.
// This allows for per-request customization of the generated lists; empty
// fields are filled from the builder defaults.
type ListJobConfig struct {
	TrainSplit      string
	ValidationSplit string
	FileColumn      string
	SplitColumn     string
	CategoryColumn  string
	DurationColumn  string
	TextColumn      string
	AudioDir        string
	TargetSeconds   float64
	Order           string
	Seed            int64
}

// Sample is one metadata table row describing a single audio clip.
type Sample struct {
	File     string
	Split    string
	Category string
	Seconds  float64
	Text     string
	Row      int
}

// SplitReport summarizes the rows emitted for one output list.
type SplitReport struct {
	Rows    int
	Seconds float64
}

// CategoryReport summarizes budget selection within one training category.
type CategoryReport struct {
	Label      string
	Candidates int
	Selected   int
	Seconds    float64
}

// Report describes what a build selected for both lists.
type Report struct {
	Train      SplitReport
	Validation SplitReport
	Skipped    int
	Categories []CategoryReport
}

// BuildResult carries the rendered list files and their report.
type BuildResult struct {
	TrainList      []byte
	ValidationList []byte
	Report         Report
}

// ListBuilder defines the interface for turning a metadata table into a pair
// of training and validation list files.
type ListBuilder interface {
	Build(ctx context.Context, table []byte, cfg ListJobConfig) (*BuildResult, error)
	GetConfig() ListJobConfig
}
