package workflows

type DocumentConvertInput struct {
	TaskID     string `json:"task_id"`
	MerchantID string `json:"merchant_id"`
	FileID     string `json:"file_id"`
	FileURL    string `json:"file_url"`
	// LocalPath short-circuits the fetch step; batch children use it for
	// files already on disk.
	LocalPath string `json:"local_path,omitempty"`
}

type TaskStatus struct {
	TaskID        string            `json:"task_id"`
	CurrentStep   string            `json:"current_step"`
	Status        string            `json:"status"`
	FailReason    string            `json:"fail_reason,omitempty"`
	QuestionCount int               `json:"question_count"`
	Discards      map[string]int    `json:"discards,omitempty"`
	Steps         map[string]string `json:"steps"`
}

type BatchConvertInput struct {
	BatchID               string `json:"batch_id"`
	MerchantID            string `json:"merchant_id"`
	InputDir              string `json:"input_dir"`
	MaxConcurrentChildren int    `json:"max_concurrent_children"`
}

type BatchConvertProgress struct {
	BatchID       string            `json:"batch_id"`
	Total         int               `json:"total"`
	Done          int               `json:"done"`
	Failed        int               `json:"failed"`
	PerTask       map[string]string `json:"per_task_status"`
	ChildWorkflow map[string]string `json:"child_workflow_ids,omitempty"`
}
