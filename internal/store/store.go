// Package store persists correction reports for history, review and
// export. The correction pipeline itself never reads it: a report is
// assembled entirely in-request and saved afterwards.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/correggi-verifiche/api/internal/model"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a correction or question does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS corrections (
		id TEXT PRIMARY KEY,
		student_name TEXT NOT NULL DEFAULT '',
		subject TEXT NOT NULL,
		test_type TEXT NOT NULL,
		total_score REAL NOT NULL,
		max_score REAL NOT NULL,
		percentage REAL NOT NULL,
		grade TEXT NOT NULL,
		overall_feedback TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS correction_questions (
		id TEXT NOT NULL,
		correction_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		number INTEGER NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		student_answer TEXT NOT NULL DEFAULT '',
		correct_answer TEXT NOT NULL DEFAULT '',
		score REAL NOT NULL,
		max_score REAL NOT NULL,
		feedback TEXT NOT NULL DEFAULT '',
		is_correct INTEGER NOT NULL DEFAULT 0,
		confirmed INTEGER,
		PRIMARY KEY (correction_id, id),
		FOREIGN KEY (correction_id) REFERENCES corrections(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save stores a finished correction report with its questions.
func (s *Store) Save(result *model.CorrectionResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO corrections (id, student_name, subject, test_type, total_score, max_score, percentage, grade, overall_feedback, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.StudentName, result.Subject, result.TestType,
		result.TotalScore, result.MaxScore, result.Percentage, result.Grade,
		result.OverallFeedback, result.CreatedAt,
	)
	if err != nil {
		return err
	}

	for i, q := range result.Questions {
		var confirmed *int
		if q.Confirmed != nil {
			v := 0
			if *q.Confirmed {
				v = 1
			}
			confirmed = &v
		}
		_, err = tx.Exec(
			`INSERT INTO correction_questions (id, correction_id, position, number, text, student_answer, correct_answer, score, max_score, feedback, is_correct, confirmed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ID, result.ID, i, q.Number, q.Text, q.StudentAnswer, q.CorrectAnswer,
			q.Score, q.MaxScore, q.Feedback, q.IsCorrect, confirmed,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List returns summary rows for all stored corrections, newest first.
func (s *Store) List() ([]model.CorrectionSummary, error) {
	rows, err := s.db.Query(
		`SELECT id, student_name, subject, total_score, max_score, percentage, grade, created_at
		 FROM corrections ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CorrectionSummary
	for rows.Next() {
		var c model.CorrectionSummary
		if err := rows.Scan(&c.ID, &c.StudentName, &c.Subject, &c.TotalScore, &c.MaxScore, &c.Percentage, &c.Grade, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get returns one stored correction with its questions.
func (s *Store) Get(correctionID string) (*model.CorrectionResult, error) {
	var result model.CorrectionResult
	err := s.db.QueryRow(
		`SELECT id, student_name, subject, test_type, total_score, max_score, percentage, grade, overall_feedback, created_at
		 FROM corrections WHERE id = ?`, correctionID,
	).Scan(&result.ID, &result.StudentName, &result.Subject, &result.TestType,
		&result.TotalScore, &result.MaxScore, &result.Percentage, &result.Grade,
		&result.OverallFeedback, &result.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	questions, err := s.questionsFor(correctionID)
	if err != nil {
		return nil, err
	}
	result.Questions = questions
	return &result, nil
}

func (s *Store) questionsFor(correctionID string) ([]model.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, number, text, student_answer, correct_answer, score, max_score, feedback, is_correct, confirmed
		 FROM correction_questions WHERE correction_id = ? ORDER BY position`, correctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Question
	for rows.Next() {
		var q model.Question
		var confirmed sql.NullInt64
		if err := rows.Scan(&q.ID, &q.Number, &q.Text, &q.StudentAnswer, &q.CorrectAnswer,
			&q.Score, &q.MaxScore, &q.Feedback, &q.IsCorrect, &confirmed); err != nil {
			return nil, err
		}
		if confirmed.Valid {
			v := confirmed.Int64 == 1
			q.Confirmed = &v
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// SetQuestionConfirmed records the teacher's review verdict for one
// question. The report itself stays immutable; confirmed is the only
// field a reviewer may set.
func (s *Store) SetQuestionConfirmed(correctionID, questionID string, confirmed bool) error {
	v := 0
	if confirmed {
		v = 1
	}
	res, err := s.db.Exec(
		`UPDATE correction_questions SET confirmed = ? WHERE correction_id = ? AND id = ?`,
		v, correctionID, questionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CorrectionCount returns the number of stored corrections.
func (s *Store) CorrectionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM corrections`).Scan(&count)
	return count, err
}
