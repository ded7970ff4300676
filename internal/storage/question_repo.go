package storage

import (
	"context"
	"fmt"

	"examflow/internal/models"
)

type QuestionRepo struct {
	db *DB
}

func NewQuestionRepo(db *DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// ReplaceQuestions swaps a task's question set atomically so reprocessing a
// task never leaves stale rows behind.
func (r *QuestionRepo) ReplaceQuestions(ctx context.Context, taskID string, questions []models.Question) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace questions: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE task_id=$1`, taskID); err != nil {
		return fmt.Errorf("delete old questions: %w", err)
	}
	for _, q := range questions {
		_, err := tx.Exec(ctx, `
INSERT INTO questions (question_id, task_id, merchant_id, ordinal, type, content, options, answer, explanation, difficulty, grade, subject)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8,''), NULLIF($9,''), NULLIF($10,''), $11, NULLIF($12,''))`,
			q.QuestionID, q.TaskID, q.MerchantID, q.Ordinal, q.Type, q.Content, q.Options, q.Answer, q.Explanation, q.Difficulty, q.Grade, q.Subject,
		)
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace questions: %w", err)
	}
	return nil
}

func (r *QuestionRepo) ListQuestionsByTask(ctx context.Context, taskID string) ([]models.Question, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT question_id, task_id, merchant_id, ordinal, type, content, COALESCE(options,'{}'),
       COALESCE(answer,''), COALESCE(explanation,''), COALESCE(difficulty,''), grade, COALESCE(subject,''), created_at
FROM questions
WHERE task_id=$1
ORDER BY ordinal ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	out := make([]models.Question, 0)
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.QuestionID, &q.TaskID, &q.MerchantID, &q.Ordinal, &q.Type, &q.Content, &q.Options, &q.Answer, &q.Explanation, &q.Difficulty, &q.Grade, &q.Subject, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}
