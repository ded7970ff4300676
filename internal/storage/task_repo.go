package storage

import (
	"context"
	"fmt"

	"examflow/internal/models"
)

type TaskRepo struct {
	db *DB
}

func NewTaskRepo(db *DB) *TaskRepo {
	return &TaskRepo{db: db}
}

func (r *TaskRepo) UpsertTask(ctx context.Context, t models.Task) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO tasks (task_id, merchant_id, file_id, file_url, filename, status, fail_reason, question_count)
VALUES ($1, $2, $3, $4, NULLIF($5,''), $6, NULLIF($7,''), $8)
ON CONFLICT (task_id)
DO UPDATE SET
  merchant_id = EXCLUDED.merchant_id,
  file_id = EXCLUDED.file_id,
  file_url = EXCLUDED.file_url,
  filename = COALESCE(EXCLUDED.filename, tasks.filename),
  status = EXCLUDED.status,
  fail_reason = EXCLUDED.fail_reason,
  question_count = EXCLUDED.question_count,
  updated_at = NOW()`,
		t.TaskID, t.MerchantID, t.FileID, t.FileURL, t.Filename, t.Status, t.FailReason, t.QuestionCount,
	)
	if err != nil {
		return fmt.Errorf("upsert task: %w", err)
	}
	return nil
}

func (r *TaskRepo) UpdateTaskStatus(ctx context.Context, taskID, status, failReason string, questionCount int) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE tasks SET status=$2, fail_reason=NULLIF($3,''), question_count=$4, updated_at=NOW()
WHERE task_id=$1`, taskID, status, failReason, questionCount)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return nil
}

func (r *TaskRepo) GetTask(ctx context.Context, taskID string) (models.Task, error) {
	var t models.Task
	err := r.db.Pool.QueryRow(ctx, `
SELECT task_id, merchant_id, file_id, file_url, COALESCE(filename,''), status,
       COALESCE(fail_reason,''), question_count, created_at, updated_at
FROM tasks
WHERE task_id=$1`, taskID).
		Scan(&t.TaskID, &t.MerchantID, &t.FileID, &t.FileURL, &t.Filename, &t.Status, &t.FailReason, &t.QuestionCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (r *TaskRepo) ListTasksByMerchant(ctx context.Context, merchantID string) ([]models.Task, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT task_id, merchant_id, file_id, file_url, COALESCE(filename,''), status,
       COALESCE(fail_reason,''), question_count, created_at, updated_at
FROM tasks
WHERE merchant_id=$1
ORDER BY created_at DESC`, merchantID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]models.Task, 0)
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.TaskID, &t.MerchantID, &t.FileID, &t.FileURL, &t.Filename, &t.Status, &t.FailReason, &t.QuestionCount, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}
