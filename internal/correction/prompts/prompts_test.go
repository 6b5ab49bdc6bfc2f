package prompts

import (
	"strings"
	"testing"

	"github.com/correggi-verifiche/api/internal/model"
)

func TestBuildExtractionPrompt(t *testing.T) {
	prompt, err := BuildExtractionPrompt("storia")
	if err != nil {
		t.Fatalf("BuildExtractionPrompt: %v", err)
	}
	if !strings.Contains(prompt, "storia") {
		t.Error("prompt should contain the subject")
	}
	if !strings.Contains(prompt, "studentName") || !strings.Contains(prompt, "questions") {
		t.Error("prompt should describe the expected JSON shape")
	}
}

func TestBuildEvaluationPrompt(t *testing.T) {
	questions := []model.RawQuestion{
		{Number: 1, Text: "Chi era Garibaldi?", StudentAnswer: "Un generale"},
		{Number: 2, Text: "In che anno l'unità d'Italia?", StudentAnswer: ""},
	}
	data := EvaluationData{
		Subject:            "storia",
		TestType:           "scritta",
		CustomInstructions: "Valuta con indulgenza gli errori di ortografia.",
		MaxScore:           10,
		QuestionCount:      2,
		PerQuestionCap:     5,
	}

	prompt, err := BuildEvaluationPrompt(data, questions)
	if err != nil {
		t.Fatalf("BuildEvaluationPrompt: %v", err)
	}
	if !strings.Contains(prompt, "Chi era Garibaldi?") {
		t.Error("prompt should contain question text")
	}
	if !strings.Contains(prompt, "Un generale") {
		t.Error("prompt should contain the student answer")
	}
	if !strings.Contains(prompt, "[nessuna risposta]") {
		t.Error("blank answers should be marked explicitly")
	}
	if !strings.Contains(prompt, "indulgenza") {
		t.Error("prompt should include custom instructions")
	}
	if !strings.Contains(prompt, "5.00") {
		t.Error("prompt should state the per-question cap")
	}
	if !strings.Contains(prompt, "overallFeedback") {
		t.Error("prompt should describe the expected JSON shape")
	}
}

func TestBuildEvaluationPromptWithoutCustomInstructions(t *testing.T) {
	prompt, err := BuildEvaluationPrompt(EvaluationData{
		Subject:        "storia",
		TestType:       "orale",
		MaxScore:       10,
		QuestionCount:  1,
		PerQuestionCap: 10,
	}, []model.RawQuestion{{Number: 1, Text: "q", StudentAnswer: "a"}})
	if err != nil {
		t.Fatalf("BuildEvaluationPrompt: %v", err)
	}
	if strings.Contains(prompt, "Istruzioni aggiuntive") {
		t.Error("prompt should omit the custom instructions section when empty")
	}
}
