package worker

import (
	"github.com/book-expert/events"
)

// MetadataReadyEvent announces a metadata table in the dataset bucket that
// is ready to be turned into list files. Optional fields left at their zero
// value inherit the service's configured defaults.
type MetadataReadyEvent struct {
	Header          events.EventHeader `json:"header"`
	MetadataKey     string             `json:"metadata_key"`
	TrainSplit      string             `json:"train_split"`
	ValidationSplit string             `json:"validation_split"`
	TextColumn      string             `json:"text_column"`
	CategoryColumn  string             `json:"category_column"`
	TargetSeconds   float64            `json:"target_seconds"`
	Order           string             `json:"order"`
	Seed            int64              `json:"seed"`
}

// ListsCreatedEvent reports the uploaded list objects and their contents in
// reply to a metadata ready event.
type ListsCreatedEvent struct {
	Header            events.EventHeader `json:"header"`
	TrainListKey      string             `json:"train_list_key"`
	ValidationListKey string             `json:"validation_list_key"`
	TrainRows         int                `json:"train_rows"`
	ValidationRows    int                `json:"validation_rows"`
	TrainSeconds      float64            `json:"train_seconds"`
	ValidationSeconds float64            `json:"validation_seconds"`
	Categories        []CategorySummary  `json:"categories"`
}

// CategorySummary is the wire form of one category's selection accounting.
type CategorySummary struct {
	Label      string  `json:"label"`
	Candidates int     `json:"candidates"`
	Selected   int     `json:"selected"`
	Seconds    float64 `json:"seconds"`
}
