// Package correction implements the two-stage correction pipeline:
// a vision model transcribes the test sheet, a text model grades the
// transcription, and the two outputs are reconciled into one report.
package correction

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/correggi-verifiche/api/internal/id"
	"github.com/correggi-verifiche/api/internal/llm"
	"github.com/correggi-verifiche/api/internal/model"
)

// defaultMaxScore applies when the request leaves maxScore unset.
const defaultMaxScore = 10

// ModelGateway is the slice of the AI gateway the pipeline needs.
// Tests substitute a canned implementation.
type ModelGateway interface {
	SendText(ctx context.Context, messages []llm.Message, temperature float32) (string, error)
	SendVision(ctx context.Context, imageDataURI, prompt string) (string, error)
}

// Service runs correction requests. Each run is fully sequential:
// evaluation needs the extraction output, so there is nothing to
// parallelize within a request.
type Service struct {
	gw  ModelGateway
	now func() time.Time
}

// New creates a correction service.
func New(gw ModelGateway) *Service {
	return &Service{gw: gw, now: time.Now}
}

// Correct processes one test-sheet image into a scored report.
// Validation happens before any network call; an extraction failure is
// terminal, while an unparseable evaluation degrades to default scores.
func (s *Service) Correct(ctx context.Context, req model.CorrectionRequest) (*model.CorrectionResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	maxScore := req.MaxScore
	if maxScore <= 0 {
		maxScore = defaultMaxScore
	}

	imageURI, err := llm.NormalizeImageDataURI(req.Image)
	if err != nil {
		slog.Warn("rejecting unusable image payload", "error", err)
		return nil, &ValidationError{Field: "image"}
	}

	extraction, err := s.extract(ctx, imageURI, req.Subject)
	if err != nil {
		return nil, err
	}
	slog.Info("extraction complete",
		"questions", len(extraction.Questions),
		"student", extraction.StudentName != "")

	eval, degraded, err := s.evaluate(ctx, extraction.Questions, req, maxScore)
	if err != nil {
		return nil, err
	}
	if degraded {
		slog.Warn("evaluation output unparseable, default scores applied",
			"questions", len(extraction.Questions))
	}

	result := Reconcile(ctx, extraction, eval, req.Subject, req.TestType, maxScore, id.Generate(), s.now())
	slog.Info("correction complete",
		"id", result.ID,
		"total", result.TotalScore,
		"percentage", result.Percentage,
		"grade", result.Grade)
	return result, nil
}

func validate(req model.CorrectionRequest) error {
	switch {
	case strings.TrimSpace(req.Image) == "":
		return &ValidationError{Field: "image"}
	case strings.TrimSpace(req.Subject) == "":
		return &ValidationError{Field: "subject"}
	case strings.TrimSpace(req.TestType) == "":
		return &ValidationError{Field: "testType"}
	}
	return nil
}
