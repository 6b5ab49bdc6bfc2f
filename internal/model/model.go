package model

import "time"

// CorrectionRequest is the inbound payload for a correction run.
// Image is a data URI or raw base64 of the photographed test sheet.
type CorrectionRequest struct {
	Image              string  `json:"image"`
	Subject            string  `json:"subject"`
	TestType           string  `json:"testType"`
	CustomInstructions string  `json:"customInstructions,omitempty"`
	MaxScore           float64 `json:"maxScore"`
}

// RawQuestion is a single question/answer pair transcribed from the image.
// Number is model-supplied and not guaranteed unique or contiguous.
type RawQuestion struct {
	Number        int    `json:"number"`
	Text          string `json:"text"`
	StudentAnswer string `json:"studentAnswer"`
}

// RawExtraction is the structured output of the vision stage.
type RawExtraction struct {
	StudentName string        `json:"studentName"`
	Questions   []RawQuestion `json:"questions"`
}

// RawEvaluationEntry is one per-question verdict from the grading model,
// keyed loosely to RawExtraction.Questions by Number.
type RawEvaluationEntry struct {
	Number        int     `json:"number"`
	Score         float64 `json:"score"`
	CorrectAnswer string  `json:"correctAnswer"`
	Feedback      string  `json:"feedback"`
	IsCorrect     bool    `json:"isCorrect"`
}

// Evaluation is the full output of the grading stage.
type Evaluation struct {
	Entries         []RawEvaluationEntry `json:"evaluations"`
	OverallFeedback string               `json:"overallFeedback"`
}

// Question is a fully reconciled question inside a correction report.
// Confirmed is a tri-state reserved for teacher review: nil means not
// reviewed yet. It is always nil when the report is created.
type Question struct {
	ID            string  `json:"id"`
	Number        int     `json:"number"`
	Text          string  `json:"text"`
	StudentAnswer string  `json:"studentAnswer"`
	CorrectAnswer string  `json:"correctAnswer"`
	Score         float64 `json:"score"`
	MaxScore      float64 `json:"maxScore"`
	Feedback      string  `json:"feedback"`
	IsCorrect     bool    `json:"isCorrect"`
	Confirmed     *bool   `json:"confirmed,omitempty"`
}

// CorrectionResult is the final scored report for one test sheet.
// It is assembled once per request and never mutated afterwards; the
// only later change is a teacher confirming individual questions.
type CorrectionResult struct {
	ID              string     `json:"id"`
	StudentName     string     `json:"studentName"`
	Subject         string     `json:"subject"`
	TestType        string     `json:"testType"`
	TotalScore      float64    `json:"totalScore"`
	MaxScore        float64    `json:"maxScore"`
	Percentage      float64    `json:"percentage"`
	Grade           string     `json:"grade"`
	Questions       []Question `json:"questions"`
	OverallFeedback string     `json:"overallFeedback"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// CorrectionSummary is a list row for stored reports.
type CorrectionSummary struct {
	ID          string    `json:"id"`
	StudentName string    `json:"studentName"`
	Subject     string    `json:"subject"`
	TotalScore  float64   `json:"totalScore"`
	MaxScore    float64   `json:"maxScore"`
	Percentage  float64   `json:"percentage"`
	Grade       string    `json:"grade"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	Addr           string
	Lang           string
	MaxBodyBytes   int64
	CORSOrigins    []string
	RequestTimeout time.Duration
}
