package activities

import (
	"examflow/internal/extract"
	"examflow/internal/models"
)

type FetchDocumentInput struct {
	TaskID  string `json:"task_id"`
	FileURL string `json:"file_url"`
}

type FetchDocumentOutput struct {
	LocalPath string `json:"local_path"`
	Filename  string `json:"filename"`
}

type ConvertDocumentInput struct {
	LocalPath string `json:"local_path"`
}

type ConvertDocumentOutput struct {
	Text string `json:"text"`
}

type ExtractQuestionsInput struct {
	Text string `json:"text"`
}

type ExtractQuestionsOutput struct {
	Questions []extract.Question `json:"questions"`
	Discards  map[string]int     `json:"discards,omitempty"`
}

type SaveQuestionsInput struct {
	TaskID     string             `json:"task_id"`
	MerchantID string             `json:"merchant_id"`
	Questions  []extract.Question `json:"questions"`
}

type SaveQuestionsOutput struct {
	Saved int `json:"saved"`
}

type UpdateTaskStatusInput struct {
	TaskID        string `json:"task_id"`
	MerchantID    string `json:"merchant_id"`
	FileID        string `json:"file_id"`
	FileURL       string `json:"file_url"`
	Filename      string `json:"filename,omitempty"`
	Status        string `json:"status"`
	FailReason    string `json:"fail_reason,omitempty"`
	QuestionCount int    `json:"question_count"`
}

type WriteResultArtifactInput struct {
	TaskID string               `json:"task_id"`
	Result models.ConvertResult `json:"result"`
}

type WriteResultArtifactOutput struct {
	Path string `json:"path"`
}

type NotifyResultInput struct {
	Result models.ConvertResult `json:"result"`
}

type CleanupDocumentInput struct {
	LocalPath string `json:"local_path"`
}

type ListDocumentsInput struct {
	InputDir string `json:"input_dir"`
}

type ListDocumentsOutput struct {
	Paths []string `json:"paths"`
}
