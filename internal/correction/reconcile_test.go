package correction

import (
	"context"
	"reflect"
	"testing"
	"time"

	appI18n "github.com/correggi-verifiche/api/internal/i18n"
	"github.com/correggi-verifiche/api/internal/model"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	if err := appI18n.Init("it"); err != nil {
		t.Fatalf("i18n init: %v", err)
	}
	return appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer("it"))
}

func extractionOf(answers ...string) model.RawExtraction {
	ex := model.RawExtraction{StudentName: "Mario Rossi"}
	for i, a := range answers {
		ex.Questions = append(ex.Questions, model.RawQuestion{
			Number:        i + 1,
			Text:          "domanda",
			StudentAnswer: a,
		})
	}
	return ex
}

var reconcileTime = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func TestReconcileMatchByNumber(t *testing.T) {
	ctx := testCtx(t)
	extraction := extractionOf("a", "b")
	eval := model.Evaluation{
		Entries: []model.RawEvaluationEntry{
			// deliberately out of order
			{Number: 2, Score: 4, CorrectAnswer: "B", Feedback: "bene", IsCorrect: true},
			{Number: 1, Score: 3, CorrectAnswer: "A", Feedback: "quasi", IsCorrect: false},
		},
		OverallFeedback: "discreto lavoro",
	}

	result := Reconcile(ctx, extraction, eval, "matematica", "written", 10, "rep1", reconcileTime)

	if len(result.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(result.Questions))
	}
	if result.Questions[0].Score != 3 || result.Questions[1].Score != 4 {
		t.Errorf("scores = %v, %v; want 3, 4", result.Questions[0].Score, result.Questions[1].Score)
	}
	if result.Questions[0].CorrectAnswer != "A" {
		t.Errorf("question 1 matched wrong entry: %+v", result.Questions[0])
	}
	if result.TotalScore != 7.0 {
		t.Errorf("TotalScore = %v, want 7.0", result.TotalScore)
	}
	if result.Percentage != 70.0 {
		t.Errorf("Percentage = %v, want 70.0", result.Percentage)
	}
	if result.Grade != "7 discreto" {
		t.Errorf("Grade = %q, want '7 discreto'", result.Grade)
	}
	if result.Subject != "Matematica" {
		t.Errorf("Subject = %q, want 'Matematica'", result.Subject)
	}
	if result.OverallFeedback != "discreto lavoro" {
		t.Errorf("OverallFeedback = %q", result.OverallFeedback)
	}
	for _, q := range result.Questions {
		if q.Confirmed != nil {
			t.Errorf("question %s created with confirmed set", q.ID)
		}
		if q.MaxScore != 5 {
			t.Errorf("question %s MaxScore = %v, want 5", q.ID, q.MaxScore)
		}
	}
}

func TestReconcilePositionalFallback(t *testing.T) {
	ctx := testCtx(t)
	extraction := extractionOf("a", "b")
	// Numbers do not line up with the extraction at all.
	eval := model.Evaluation{Entries: []model.RawEvaluationEntry{
		{Number: 7, Score: 5, CorrectAnswer: "A"},
		{Number: 9, Score: 0, CorrectAnswer: "B"},
	}}

	result := Reconcile(ctx, extraction, eval, "storia", "written", 10, "rep1", reconcileTime)

	if result.Questions[0].CorrectAnswer != "A" || result.Questions[1].CorrectAnswer != "B" {
		t.Errorf("positional fallback failed: %+v", result.Questions)
	}
	if result.TotalScore != 5.0 {
		t.Errorf("TotalScore = %v, want 5.0", result.TotalScore)
	}
}

func TestReconcileSynthesizesMissingEntries(t *testing.T) {
	ctx := testCtx(t)
	extraction := extractionOf("a", "b", "c")
	// Only one entry for three questions.
	eval := model.Evaluation{Entries: []model.RawEvaluationEntry{
		{Number: 1, Score: 2, IsCorrect: true},
	}}

	result := Reconcile(ctx, extraction, eval, "scienze", "written", 12, "rep1", reconcileTime)

	if len(result.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(result.Questions))
	}
	// cap is 4; synthesized questions get 2 points and are not correct
	// (half the cap is below the 60% threshold).
	for _, q := range result.Questions[1:] {
		if q.Score != 2 {
			t.Errorf("synthesized score = %v, want 2", q.Score)
		}
		if q.IsCorrect {
			t.Errorf("synthesized entry marked correct")
		}
		if q.Feedback == "" {
			t.Errorf("synthesized entry has empty feedback")
		}
	}
}

func TestReconcileClampsScores(t *testing.T) {
	ctx := testCtx(t)
	extraction := extractionOf("a", "b")
	eval := model.Evaluation{Entries: []model.RawEvaluationEntry{
		{Number: 1, Score: 99},
		{Number: 2, Score: -3},
	}}

	result := Reconcile(ctx, extraction, eval, "inglese", "written", 10, "rep1", reconcileTime)

	if result.Questions[0].Score != 5 {
		t.Errorf("excess score not clamped to cap: %v", result.Questions[0].Score)
	}
	if result.Questions[1].Score != 0 {
		t.Errorf("negative score not clamped to zero: %v", result.Questions[1].Score)
	}
	for _, q := range result.Questions {
		if q.Score < 0 || q.Score > q.MaxScore {
			t.Errorf("score %v outside [0, %v]", q.Score, q.MaxScore)
		}
	}
}

func TestReconcileEmptyEvaluation(t *testing.T) {
	ctx := testCtx(t)
	extraction := extractionOf("a", "b", "c", "d")

	result := Reconcile(ctx, extraction, model.Evaluation{}, "arte", "written", 20, "rep1", reconcileTime)

	if len(result.Questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(result.Questions))
	}
	if result.TotalScore != 10.0 {
		t.Errorf("TotalScore = %v, want half of maxScore", result.TotalScore)
	}
}

func TestReconcileDeterministic(t *testing.T) {
	ctx := testCtx(t)
	extraction := extractionOf("a", "b")
	eval := model.Evaluation{Entries: []model.RawEvaluationEntry{
		{Number: 1, Score: 3, Feedback: "x"},
		{Number: 2, Score: 4, Feedback: "y"},
	}}

	first := Reconcile(ctx, extraction, eval, "musica", "oral", 10, "fixed", reconcileTime)
	second := Reconcile(ctx, extraction, eval, "musica", "oral", 10, "fixed", reconcileTime)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("reconciliation not deterministic for fixed inputs")
	}
}

func TestReconcileDuplicateNumbersGetUniqueIDs(t *testing.T) {
	ctx := testCtx(t)
	extraction := model.RawExtraction{Questions: []model.RawQuestion{
		{Number: 1, Text: "a"},
		{Number: 1, Text: "b"},
	}}

	result := Reconcile(ctx, extraction, model.Evaluation{}, "geo", "written", 10, "rep1", reconcileTime)

	if result.Questions[0].ID == result.Questions[1].ID {
		t.Errorf("duplicate question numbers produced duplicate IDs: %q", result.Questions[0].ID)
	}
}
