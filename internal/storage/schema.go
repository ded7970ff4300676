package storage

import (
	"context"
	"fmt"
)

// EnsureSchema creates the tables on startup so a fresh database works
// without a separate migration step.
func EnsureSchema(ctx context.Context, db *DB) error {
	ddl := `
CREATE TABLE IF NOT EXISTS tasks (
  task_id TEXT PRIMARY KEY,
  merchant_id TEXT NOT NULL,
  file_id TEXT NOT NULL DEFAULT '',
  file_url TEXT NOT NULL,
  filename TEXT,
  status TEXT NOT NULL CHECK (status IN ('pending','processing','succeeded','failed')),
  fail_reason TEXT,
  question_count INT NOT NULL DEFAULT 0,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_tasks_merchant ON tasks(merchant_id, created_at DESC);

CREATE TABLE IF NOT EXISTS questions (
  question_id TEXT PRIMARY KEY,
  task_id TEXT NOT NULL REFERENCES tasks(task_id) ON DELETE CASCADE,
  merchant_id TEXT NOT NULL,
  ordinal INT NOT NULL,
  type TEXT NOT NULL CHECK (type IN ('single-choice','multiple-choice','fill-in-blank','true-false','open-response')),
  content TEXT NOT NULL,
  options TEXT[],
  answer TEXT,
  explanation TEXT,
  difficulty TEXT,
  grade INT,
  subject TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_questions_task ON questions(task_id, ordinal);
`
	if _, err := db.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
