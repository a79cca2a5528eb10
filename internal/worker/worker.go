// Package worker provides a NATS worker that turns metadata tables announced
// on a subject into uploaded training and validation list files.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/dataset-service/internal/core"
	"github.com/book-expert/logger"
)

const handleMessageTimeout = 30 * time.Second

const (
	trainListSuffix      = ".train.list"
	validationListSuffix = ".val.list"
)

// ErrMetadataKeyEmpty indicates a metadata ready event without an object key.
var ErrMetadataKeyEmpty = errors.New("metadata key cannot be empty")

// NatsWorker consumes metadata ready events, builds the list files, and
// uploads them to the list object store.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	publishSubject string
	metadataStore  core.ObjectStore
	listStore      core.ObjectStore
	builder        core.ListBuilder
	log            *logger.Logger
}

// NewNatsWorker creates a worker that subscribes to the given subject and
// broadcasts lists created events on publishSubject. An empty publishSubject
// disables the broadcast; reply inboxes are always honored.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	publishSubject string,
	metadataStore core.ObjectStore,
	listStore core.ObjectStore,
	builder core.ListBuilder,
	log *logger.Logger,
) (*NatsWorker, error) {
	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		publishSubject: publishSubject,
		metadataStore:  metadataStore,
		listStore:      listStore,
		builder:        builder,
		log:            log,
	}, nil
}

// Run subscribes to the worker's subject and blocks until the context is
// cancelled, then drains the subscription.
func (w *NatsWorker) Run(ctx context.Context) error {
	subscription, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("subscribe to subject '%s': %w", w.subject, err)
	}

	w.log.Info("Listening for metadata ready events on subject: %s", w.subject)

	<-ctx.Done()

	drainErr := subscription.Drain()
	if drainErr != nil {
		return fmt.Errorf("drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	event, err := w.parseEvent(msg)
	if err != nil {
		w.log.Error("Failed to parse metadata ready event: %v", err)

		return
	}

	replyEvent, processErr := w.processListJob(ctx, event)
	if processErr != nil {
		w.log.Error(
			"Failed to build lists for workflow %s: %v",
			event.Header.WorkflowID,
			processErr,
		)

		return
	}

	err = w.publishReplyEvent(msg, replyEvent)
	if err != nil {
		w.log.Error(
			"Failed to publish lists created event for workflow %s: %v",
			event.Header.WorkflowID,
			err,
		)
	}
}

func (w *NatsWorker) parseEvent(msg *nats.Msg) (*MetadataReadyEvent, error) {
	var event MetadataReadyEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		return nil, fmt.Errorf("unmarshal metadata ready event: %w", err)
	}

	return &event, nil
}

// processListJob downloads the metadata table, builds both lists, and uploads
// them under a fresh job identifier.
func (w *NatsWorker) processListJob(
	ctx context.Context,
	event *MetadataReadyEvent,
) (*ListsCreatedEvent, error) {
	if strings.TrimSpace(event.MetadataKey) == "" {
		return nil, ErrMetadataKeyEmpty
	}

	tableData, err := w.metadataStore.Download(ctx, event.MetadataKey)
	if err != nil {
		return nil, fmt.Errorf("download metadata table '%s': %w", event.MetadataKey, err)
	}

	result, err := w.builder.Build(ctx, tableData, w.jobConfig(event))
	if err != nil {
		return nil, fmt.Errorf("build lists: %w", err)
	}

	jobID := uuid.NewString()
	trainKey := jobID + trainListSuffix
	validationKey := jobID + validationListSuffix

	err = w.listStore.Upload(ctx, trainKey, result.TrainList)
	if err != nil {
		return nil, fmt.Errorf("upload training list '%s': %w", trainKey, err)
	}

	err = w.listStore.Upload(ctx, validationKey, result.ValidationList)
	if err != nil {
		return nil, fmt.Errorf("upload validation list '%s': %w", validationKey, err)
	}

	w.log.Info(
		"Built lists for workflow %s: %d train rows, %d validation rows",
		event.Header.WorkflowID,
		result.Report.Train.Rows,
		result.Report.Validation.Rows,
	)

	return &ListsCreatedEvent{
		Header:            event.Header,
		TrainListKey:      trainKey,
		ValidationListKey: validationKey,
		TrainRows:         result.Report.Train.Rows,
		ValidationRows:    result.Report.Validation.Rows,
		TrainSeconds:      result.Report.Train.Seconds,
		ValidationSeconds: result.Report.Validation.Seconds,
		Categories:        categorySummaries(result.Report.Categories),
	}, nil
}

// jobConfig merges the event's job fields over the builder defaults. Fields
// the event leaves at their zero value keep the configured default.
func (w *NatsWorker) jobConfig(event *MetadataReadyEvent) core.ListJobConfig {
	cfg := w.builder.GetConfig()

	if strings.TrimSpace(event.TrainSplit) != "" {
		cfg.TrainSplit = event.TrainSplit
	}

	if strings.TrimSpace(event.ValidationSplit) != "" {
		cfg.ValidationSplit = event.ValidationSplit
	}

	if strings.TrimSpace(event.TextColumn) != "" {
		cfg.TextColumn = event.TextColumn
	}

	if strings.TrimSpace(event.CategoryColumn) != "" {
		cfg.CategoryColumn = event.CategoryColumn
	}

	if event.TargetSeconds != 0 {
		cfg.TargetSeconds = event.TargetSeconds
	}

	if strings.TrimSpace(event.Order) != "" {
		cfg.Order = event.Order
	}

	if event.Seed != 0 {
		cfg.Seed = event.Seed
	}

	return cfg
}

// publishReplyEvent broadcasts the lists created event and answers the reply
// inbox when the request expects one.
func (w *NatsWorker) publishReplyEvent(msg *nats.Msg, replyEvent *ListsCreatedEvent) error {
	replyData, err := json.Marshal(replyEvent)
	if err != nil {
		return fmt.Errorf("marshal lists created event: %w", err)
	}

	if w.publishSubject != "" {
		err = w.natsConnection.Publish(w.publishSubject, replyData)
		if err != nil {
			return fmt.Errorf("publish to subject '%s': %w", w.publishSubject, err)
		}
	}

	if msg.Reply == "" {
		return nil
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("respond with lists created event: %w", err)
	}

	return nil
}

func categorySummaries(reports []core.CategoryReport) []CategorySummary {
	summaries := make([]CategorySummary, 0, len(reports))
	for _, report := range reports {
		summaries = append(summaries, CategorySummary{
			Label:      report.Label,
			Candidates: report.Candidates,
			Selected:   report.Selected,
			Seconds:    report.Seconds,
		})
	}

	return summaries
}
