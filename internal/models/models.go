package models

import "time"

type Task struct {
	TaskID        string    `json:"task_id"`
	MerchantID    string    `json:"merchant_id"`
	FileID        string    `json:"file_id"`
	FileURL       string    `json:"file_url"`
	Filename      string    `json:"filename,omitempty"`
	Status        string    `json:"status"`
	FailReason    string    `json:"fail_reason,omitempty"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Question struct {
	QuestionID  string    `json:"question_id"`
	TaskID      string    `json:"task_id"`
	MerchantID  string    `json:"merchant_id"`
	Ordinal     int       `json:"ordinal"`
	Type        string    `json:"type"`
	Content     string    `json:"content"`
	Options     []string  `json:"options,omitempty"`
	Answer      string    `json:"answer,omitempty"`
	Explanation string    `json:"explanation,omitempty"`
	Difficulty  string    `json:"difficulty,omitempty"`
	Grade       *int      `json:"grade,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConvertResult is the terminal message delivered to the result-notification
// collaborator: exactly one per task.
type ConvertResult struct {
	TaskID    string           `json:"task_id"`
	Status    string           `json:"status"` // completed or failed
	Result    []ResultQuestion `json:"result,omitempty"`
	ErrorMsg  string           `json:"error_msg,omitempty"`
	ErrorCode string           `json:"error_code,omitempty"`
	Retryable bool             `json:"retryable,omitempty"`
}

type ResultQuestion struct {
	Type        string   `json:"type"`
	Content     string   `json:"content"`
	Options     []string `json:"options,omitempty"`
	Answer      string   `json:"answer,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Grade       *int     `json:"grade,omitempty"`
	Subject     string   `json:"subject,omitempty"`
}
