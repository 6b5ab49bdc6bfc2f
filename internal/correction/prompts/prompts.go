// Package prompts renders the instruction text sent to the models.
// Templates live in embedded files so deployments can be rebuilt with
// adjusted wording without touching pipeline code.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"github.com/correggi-verifiche/api/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

var (
	loadOnce     sync.Once
	loadErr      error
	extractTmpl  *template.Template
	evaluateTmpl *template.Template
)

// ExtractionData holds template data for the vision transcription prompt.
type ExtractionData struct {
	Subject string
}

// EvaluationData holds template data for the grading prompt.
type EvaluationData struct {
	Subject            string
	TestType           string
	CustomInstructions string
	MaxScore           float64
	QuestionCount      int
	PerQuestionCap     float64
	Answers            string
}

func load() error {
	loadOnce.Do(func() {
		extractTmpl, loadErr = parse("templates/extract.txt")
		if loadErr != nil {
			return
		}
		evaluateTmpl, loadErr = parse("templates/evaluate.txt")
	})
	return loadErr
}

func parse(name string) (*template.Template, error) {
	content, err := templateFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read prompt template %s: %w", name, err)
	}
	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}
	return tmpl, nil
}

// BuildExtractionPrompt renders the vision transcription prompt.
func BuildExtractionPrompt(subject string) (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := extractTmpl.Execute(&buf, ExtractionData{Subject: subject}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildEvaluationPrompt renders the grading prompt embedding every
// transcribed question/answer pair.
func BuildEvaluationPrompt(data EvaluationData, questions []model.RawQuestion) (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	data.Answers = renderAnswers(questions)
	var buf bytes.Buffer
	if err := evaluateTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderAnswers(questions []model.RawQuestion) string {
	var sb strings.Builder
	for _, q := range questions {
		fmt.Fprintf(&sb, "Domanda %d: %s\n", q.Number, q.Text)
		answer := strings.TrimSpace(q.StudentAnswer)
		if answer == "" {
			answer = "[nessuna risposta]"
		}
		fmt.Fprintf(&sb, "Risposta dello studente: %s\n\n", answer)
	}
	return sb.String()
}
