package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"training-os-be/internal/dto"
	"training-os-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	ImportReportJSON   = "fit_import_report.json"
	ImportFailuresText = "failed_fit_imports.txt"
)

// IConsumerService writes import reports from the outcome topic.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	reportsDir string
	logger     logger.ILogger

	mu   sync.Mutex
	runs map[string]*dto.ImportReport
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	reportsDir string,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:     pubSub,
		topicName:  topicName,
		reportsDir: reportsDir,
		logger:     logger,
		runs:       make(map[string]*dto.ImportReport),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.ImportMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("IMPORT", "Dropping unreadable import message", map[string]interface{}{"error": err})
		msg.Ack()
		return
	}

	cs.mu.Lock()
	report, ok := cs.runs[payload.RunId]
	if !ok {
		report = newImportReport("", 0)
		cs.runs[payload.RunId] = report
	}
	if payload.Kind != ImportMessageComplete {
		if payload.Outcome != nil {
			addOutcome(report, payload.Outcome)
		}
		cs.mu.Unlock()
		msg.Ack()
		return
	}
	delete(cs.runs, payload.RunId)
	cs.mu.Unlock()

	report.SourceDirectory = payload.SourceDirectory
	report.TotalFiles = payload.TotalFiles
	if err := WriteImportReport(cs.reportsDir, report); err != nil {
		cs.logger.Error("IMPORT", "Failed to write import report", map[string]interface{}{
			"run_id": payload.RunId,
			"error":  err,
		})
		// Redelivery would fail the same way.
		msg.Ack()
		return
	}

	cs.logger.Info("IMPORT", "Import report written", map[string]interface{}{
		"run_id": payload.RunId,
		"dir":    cs.reportsDir,
		"failed": report.Failed,
	})
	msg.Ack()
}

// WriteImportReport writes the JSON report and the tab-separated failure list.
func WriteImportReport(dir string, report *dto.ImportReport) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ImportReportJSON), body, 0o644); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total failed files: %d\n\n", len(report.Failures))
	for _, f := range report.Failures {
		fmt.Fprintf(&b, "%s\t%s\n", f.File, f.Reason)
	}
	return os.WriteFile(filepath.Join(dir, ImportFailuresText), []byte(b.String()), 0o644)
}
