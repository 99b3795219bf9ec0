package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"training-os-be/internal/dto"
	"training-os-be/internal/entity"
	"training-os-be/internal/pkg/logger"
	"training-os-be/pkg/events"
	"training-os-be/pkg/fitfile"

	"github.com/google/uuid"
)

const (
	ImportStatusSuccess = "success"
	ImportStatusSkipped = "skipped"
	ImportStatusFailed  = "failed"

	ImportMessageOutcome  = "outcome"
	ImportMessageComplete = "complete"
)

var ErrImportDirOutsideRoot = errors.New("import directory is outside the configured import root")

type IImportService interface {
	ImportFile(ctx context.Context, path string) (*dto.ImportFileOutcome, error)
	// ImportDir imports every supported file directly inside dir. Per-file decode
	// failures are reported, storage failures abort the run.
	ImportDir(ctx context.Context, dir string) (*dto.ImportReport, error)
	// ResolveDir confines a caller-supplied directory to the configured import root.
	// Relative paths are taken from the root; empty means the root itself.
	ResolveDir(dir string) (string, error)
}

type importService struct {
	decoder    fitfile.Decoder
	reconciler IReconcileService
	publisher  IPublisherService
	events     EventPublisher
	defaultDir string
	logger     logger.ILogger
}

func NewImportService(
	decoder fitfile.Decoder,
	reconciler IReconcileService,
	publisher IPublisherService,
	events EventPublisher,
	defaultDir string,
	logger logger.ILogger,
) IImportService {
	return &importService{
		decoder:    decoder,
		reconciler: reconciler,
		publisher:  publisher,
		events:     events,
		defaultDir: defaultDir,
		logger:     logger,
	}
}

func (s *importService) ImportFile(ctx context.Context, path string) (*dto.ImportFileOutcome, error) {
	if !fitfile.Supported(path) {
		return nil, &fitfile.DecodeError{Path: path, Primary: fitfile.ErrUnsupportedFormat}
	}
	return s.importOne(ctx, path)
}

// importOne returns an error only for failures that must stop a whole run.
func (s *importService) importOne(ctx context.Context, path string) (*dto.ImportFileOutcome, error) {
	outcome := &dto.ImportFileOutcome{File: filepath.Base(path)}

	activity, err := s.decoder.DecodeActivity(path)
	if err != nil {
		outcome.Status = ImportStatusFailed
		outcome.Reason = err.Error()
		s.logger.Warn("IMPORT", "Could not decode file", map[string]interface{}{
			"file":  outcome.File,
			"error": err.Error(),
		})
		return outcome, nil
	}
	outcome.Parser = activity.Parser

	candidate, err := activity.Candidate()
	if err != nil {
		outcome.Status = ImportStatusSkipped
		outcome.Reason = err.Error()
		return outcome, nil
	}

	result, err := s.reconciler.Merge(ctx, candidate)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidCandidate) {
			outcome.Status = ImportStatusFailed
			outcome.Reason = err.Error()
			return outcome, nil
		}
		return nil, fmt.Errorf("merge %s: %w", outcome.File, err)
	}

	outcome.Status = ImportStatusSuccess
	outcome.Action = string(result.Action)
	outcome.SessionId = result.SessionId.String()
	if result.DuplicateSuspect {
		outcome.Reason = "duplicate suspect of " + result.DuplicateOfId.String()
	}
	return outcome, nil
}

func (s *importService) ImportDir(ctx context.Context, dir string) (*dto.ImportReport, error) {
	if dir == "" {
		dir = s.defaultDir
	}
	files, err := listActivityFiles(dir)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	report := newImportReport(filepath.Base(filepath.Clean(dir)), len(files))
	s.logger.Info("IMPORT", "Import started", map[string]interface{}{
		"dir":    dir,
		"files":  len(files),
		"run_id": runID,
	})

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		outcome, err := s.importOne(ctx, path)
		if err != nil {
			return report, err
		}
		addOutcome(report, outcome)
		s.publish(ctx, &dto.ImportMessage{RunId: runID, Kind: ImportMessageOutcome, Outcome: outcome})
	}

	s.publish(ctx, &dto.ImportMessage{
		RunId:           runID,
		Kind:            ImportMessageComplete,
		SourceDirectory: report.SourceDirectory,
		TotalFiles:      report.TotalFiles,
	})

	s.logger.Info("IMPORT", "Import finished", map[string]interface{}{
		"imported": report.Imported,
		"updated":  report.Updated,
		"skipped":  report.Skipped,
		"failed":   report.Failed,
	})
	publishEvent(ctx, s.events, s.logger, events.TypeImportCompleted, map[string]interface{}{
		"source_directory": report.SourceDirectory,
		"imported":         report.Imported,
		"updated":          report.Updated,
		"skipped":          report.Skipped,
		"failed":           report.Failed,
	})
	return report, nil
}

func (s *importService) publish(ctx context.Context, msg *dto.ImportMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Warn("IMPORT", "Failed to publish import outcome", map[string]interface{}{
			"run_id": msg.RunId,
			"error":  err.Error(),
		})
	}
}

func (s *importService) ResolveDir(dir string) (string, error) {
	root, err := filepath.Abs(s.defaultDir)
	if err != nil {
		return "", err
	}
	if dir == "" {
		return root, nil
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	dir = filepath.Clean(dir)

	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrImportDirOutsideRoot, dir)
	}
	return dir, nil
}

func listActivityFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read import directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !fitfile.Supported(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func newImportReport(sourceDir string, total int) *dto.ImportReport {
	return &dto.ImportReport{
		SourceDirectory: sourceDir,
		TotalFiles:      total,
		Failures:        []dto.ImportReportFailure{},
		Outcomes:        []dto.ImportFileOutcome{},
	}
}

// addOutcome folds one file outcome into the report. Re-imports of unchanged files
// count as skipped.
func addOutcome(r *dto.ImportReport, o *dto.ImportFileOutcome) {
	r.Outcomes = append(r.Outcomes, *o)
	switch o.Status {
	case ImportStatusFailed:
		r.Failed++
		r.Failures = append(r.Failures, dto.ImportReportFailure{File: o.File, Reason: o.Reason})
	case ImportStatusSkipped:
		r.Skipped++
	case ImportStatusSuccess:
		switch entity.MergeAction(o.Action) {
		case entity.MergeInserted:
			r.Imported++
		case entity.MergeUpdated:
			r.Updated++
		default:
			r.Skipped++
		}
		if o.Reason != "" {
			r.DuplicateSuspects++
		}
	}
}
