package correction

import (
	"context"
	"fmt"

	"github.com/correggi-verifiche/api/internal/correction/prompts"
	appI18n "github.com/correggi-verifiche/api/internal/i18n"
	"github.com/correggi-verifiche/api/internal/jsonx"
	"github.com/correggi-verifiche/api/internal/llm"
	"github.com/correggi-verifiche/api/internal/model"
)

// evalTemperature keeps grading deterministic rather than creative.
const evalTemperature = 0.3

// evaluate asks the text model to score every transcribed answer.
// A transport or upstream failure is surfaced to the caller: silently
// grading without model input would misrepresent the system's
// confidence. Only an unparseable reply degrades to default scores.
func (s *Service) evaluate(ctx context.Context, questions []model.RawQuestion, req model.CorrectionRequest, maxScore float64) (model.Evaluation, bool, error) {
	perQuestion := maxScore / float64(len(questions))

	prompt, err := prompts.BuildEvaluationPrompt(prompts.EvaluationData{
		Subject:            req.Subject,
		TestType:           req.TestType,
		CustomInstructions: req.CustomInstructions,
		MaxScore:           maxScore,
		QuestionCount:      len(questions),
		PerQuestionCap:     perQuestion,
	}, questions)
	if err != nil {
		return model.Evaluation{}, false, fmt.Errorf("build evaluation prompt: %w", err)
	}

	raw, err := s.gw.SendText(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, evalTemperature)
	if err != nil {
		return model.Evaluation{}, false, &StageError{Stage: StageEvaluation, Err: err}
	}

	eval := jsonx.Extract(raw, model.Evaluation{})
	if len(eval.Entries) == 0 {
		return defaultEvaluation(ctx, questions, perQuestion), true, nil
	}
	return eval, false, nil
}

// defaultEvaluation scores every question at exactly half its cap.
// A middle score is the least damaging default: a grading-model outage
// must not zero out or max out a student's grade.
func defaultEvaluation(ctx context.Context, questions []model.RawQuestion, perQuestion float64) model.Evaluation {
	feedback := appI18n.T(ctx, "FallbackFeedback")
	entries := make([]model.RawEvaluationEntry, 0, len(questions))
	for _, q := range questions {
		entries = append(entries, model.RawEvaluationEntry{
			Number:    q.Number,
			Score:     perQuestion / 2,
			Feedback:  feedback,
			IsCorrect: false,
		})
	}
	return model.Evaluation{Entries: entries, OverallFeedback: feedback}
}
