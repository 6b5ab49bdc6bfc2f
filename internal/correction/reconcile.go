package correction

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/correggi-verifiche/api/internal/grade"
	appI18n "github.com/correggi-verifiche/api/internal/i18n"
	"github.com/correggi-verifiche/api/internal/model"
)

// correctThreshold decides isCorrect for synthesized entries: a score
// of at least 60% of the per-question cap counts as correct.
const correctThreshold = 0.6

var subjectCaser = cases.Title(language.Italian)

// Reconcile merges extraction and evaluation outputs into the final
// report. Evaluation entries are matched by question number first, then
// by position; questions left without an entry get a synthesized
// half-credit default. Scores are clamped into [0, maxScore/N].
//
// Deterministic for fixed inputs, except for the identifier and
// timestamp fields derived from reportID and now.
func Reconcile(ctx context.Context, extraction model.RawExtraction, eval model.Evaluation, subject, testType string, maxScore float64, reportID string, now time.Time) *model.CorrectionResult {
	perQuestion := maxScore / float64(len(extraction.Questions))

	byNumber := make(map[int]model.RawEvaluationEntry, len(eval.Entries))
	for _, e := range eval.Entries {
		if _, seen := byNumber[e.Number]; !seen {
			byNumber[e.Number] = e
		}
	}

	questions := make([]model.Question, 0, len(extraction.Questions))
	total := 0.0
	for i, q := range extraction.Questions {
		entry, matched := byNumber[q.Number]
		if !matched && i < len(eval.Entries) {
			entry, matched = eval.Entries[i], true
		}
		if !matched {
			entry = model.RawEvaluationEntry{
				Number:    q.Number,
				Score:     perQuestion / 2,
				Feedback:  appI18n.T(ctx, "FallbackFeedback"),
				IsCorrect: perQuestion/2 >= correctThreshold*perQuestion,
			}
		}

		score := clamp(entry.Score, 0, perQuestion)
		total += score

		questions = append(questions, model.Question{
			ID:            questionID(q.Number, i, now),
			Number:        q.Number,
			Text:          q.Text,
			StudentAnswer: q.StudentAnswer,
			CorrectAnswer: entry.CorrectAnswer,
			Score:         score,
			MaxScore:      perQuestion,
			Feedback:      entry.Feedback,
			IsCorrect:     entry.IsCorrect,
		})
	}

	totalScore := round1(total)
	percentage := 0.0
	if maxScore > 0 {
		percentage = round1(totalScore / maxScore * 100)
	}

	return &model.CorrectionResult{
		ID:              reportID,
		StudentName:     strings.TrimSpace(extraction.StudentName),
		Subject:         subjectCaser.String(strings.TrimSpace(subject)),
		TestType:        testType,
		TotalScore:      totalScore,
		MaxScore:        maxScore,
		Percentage:      percentage,
		Grade:           grade.Localized(ctx, percentage),
		Questions:       questions,
		OverallFeedback: eval.OverallFeedback,
		CreatedAt:       now,
	}
}

// questionID composes a per-report unique identifier from the question
// number and the report's generation time. The position disambiguates
// duplicate model-supplied numbers.
func questionID(number, position int, now time.Time) string {
	return fmt.Sprintf("%d-%d-%d", number, position+1, now.UnixMilli())
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
