package correction

import (
	"context"
	"fmt"
	"strings"

	"github.com/correggi-verifiche/api/internal/correction/prompts"
	appI18n "github.com/correggi-verifiche/api/internal/i18n"
	"github.com/correggi-verifiche/api/internal/jsonx"
	"github.com/correggi-verifiche/api/internal/model"
)

// extract transcribes the test sheet into structured question/answer
// pairs. A parse failure degrades to one catch-all question carrying the
// raw model text; zero questions after that is terminal.
func (s *Service) extract(ctx context.Context, imageDataURI, subject string) (model.RawExtraction, error) {
	prompt, err := prompts.BuildExtractionPrompt(subject)
	if err != nil {
		return model.RawExtraction{}, fmt.Errorf("build extraction prompt: %w", err)
	}

	raw, err := s.gw.SendVision(ctx, imageDataURI, prompt)
	if err != nil {
		return model.RawExtraction{}, &StageError{Stage: StageExtraction, Err: err}
	}

	fallback := model.RawExtraction{
		Questions: []model.RawQuestion{{
			Number:        1,
			Text:          appI18n.T(ctx, "FallbackQuestionText"),
			StudentAnswer: strings.TrimSpace(raw),
		}},
	}
	extraction := jsonx.Extract(raw, fallback)

	if len(extraction.Questions) == 0 {
		return model.RawExtraction{}, ErrNoQuestions
	}
	normalizeQuestions(extraction.Questions)
	return extraction, nil
}

// normalizeQuestions repairs model-supplied numbering: anything below 1
// is replaced with the question's position. Duplicates are left alone,
// reconciliation handles those positionally.
func normalizeQuestions(questions []model.RawQuestion) {
	for i := range questions {
		if questions[i].Number < 1 {
			questions[i].Number = i + 1
		}
		questions[i].Text = strings.TrimSpace(questions[i].Text)
		questions[i].StudentAnswer = strings.TrimSpace(questions[i].StudentAnswer)
	}
}
