package workflows

import (
	"strings"
	"time"

	"examflow/internal/activities"
	"examflow/internal/convert"
	"examflow/internal/extract"
	"examflow/internal/models"
	"examflow/internal/util"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	QueryGetTaskStatus    = "GetTaskStatus"
	QueryGetBatchProgress = "GetBatchProgress"

	ResultStatusCompleted = "completed"
	ResultStatusFailed    = "failed"

	TaskStatusProcessing = "processing"
	TaskStatusSucceeded  = "succeeded"
	TaskStatusFailed     = "failed"
)

// DocumentConvertWorkflow drives a single task from file URL to stored
// questions. Upstream fetch and convert failures mark the task failed and
// still deliver exactly one terminal result message; extraction shortfalls
// never fail the task.
func DocumentConvertWorkflow(ctx workflow.Context, input DocumentConvertInput) (string, error) {
	status := TaskStatus{
		TaskID:      input.TaskID,
		CurrentStep: "init",
		Status:      TaskStatusProcessing,
		Steps:       map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetTaskStatus, func() (TaskStatus, error) {
		return status, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	_ = workflow.ExecuteActivity(ctx, "UpdateTaskStatusActivity", activities.UpdateTaskStatusInput{
		TaskID:     input.TaskID,
		MerchantID: input.MerchantID,
		FileID:     input.FileID,
		FileURL:    input.FileURL,
		Status:     TaskStatusProcessing,
	}).Get(ctx, nil)

	localPath := input.LocalPath
	filename := filepathBase(localPath)
	if localPath == "" {
		status.CurrentStep = "fetch"
		status.Steps[status.CurrentStep] = "processing"
		var fetchOut activities.FetchDocumentOutput
		if err := workflow.ExecuteActivity(ctx, "FetchDocumentActivity", activities.FetchDocumentInput{
			TaskID:  input.TaskID,
			FileURL: input.FileURL,
		}).Get(ctx, &fetchOut); err != nil {
			return failTask(ctx, &status, input, filename, "", err)
		}
		localPath = fetchOut.LocalPath
		filename = fetchOut.Filename
		status.Steps[status.CurrentStep] = "done"
	}

	status.CurrentStep = "convert_text"
	status.Steps[status.CurrentStep] = "processing"
	var convOut activities.ConvertDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "ConvertDocumentActivity", activities.ConvertDocumentInput{
		LocalPath: localPath,
	}).Get(ctx, &convOut); err != nil {
		return failTask(ctx, &status, input, filename, cleanupPath(input, localPath), err)
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "extract_questions"
	status.Steps[status.CurrentStep] = "processing"
	var extractOut activities.ExtractQuestionsOutput
	if err := workflow.ExecuteActivity(ctx, "ExtractQuestionsActivity", activities.ExtractQuestionsInput{
		Text: convOut.Text,
	}).Get(ctx, &extractOut); err != nil {
		return "", err
	}
	status.QuestionCount = len(extractOut.Questions)
	status.Discards = extractOut.Discards
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "save_questions"
	status.Steps[status.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "SaveQuestionsActivity", activities.SaveQuestionsInput{
		TaskID:     input.TaskID,
		MerchantID: input.MerchantID,
		Questions:  extractOut.Questions,
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	status.CurrentStep = "mark_succeeded"
	status.Steps[status.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "UpdateTaskStatusActivity", activities.UpdateTaskStatusInput{
		TaskID:        input.TaskID,
		MerchantID:    input.MerchantID,
		FileID:        input.FileID,
		FileURL:       input.FileURL,
		Filename:      filename,
		Status:        TaskStatusSucceeded,
		QuestionCount: len(extractOut.Questions),
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	status.Steps[status.CurrentStep] = "done"

	result := models.ConvertResult{
		TaskID: input.TaskID,
		Status: ResultStatusCompleted,
		Result: toResultQuestions(extractOut.Questions),
	}
	finishTask(ctx, &status, result, cleanupPath(input, localPath))

	status.CurrentStep = "done"
	status.Status = TaskStatusSucceeded
	return status.Status, nil
}

// failTask records an upstream failure and delivers the terminal result
// message. The workflow itself completes; the failure lives in the task row
// and the result, not in workflow history.
func failTask(ctx workflow.Context, status *TaskStatus, input DocumentConvertInput, filename, localPath string, cause error) (string, error) {
	code := convert.ClassifyMessage(cause.Error())
	status.Status = TaskStatusFailed
	status.FailReason = util.DisplaySnippet(cause.Error(), 300)
	status.Steps[status.CurrentStep] = "failed"

	_ = workflow.ExecuteActivity(ctx, "UpdateTaskStatusActivity", activities.UpdateTaskStatusInput{
		TaskID:     input.TaskID,
		MerchantID: input.MerchantID,
		FileID:     input.FileID,
		FileURL:    input.FileURL,
		Filename:   filename,
		Status:     TaskStatusFailed,
		FailReason: status.FailReason,
	}).Get(ctx, nil)

	result := models.ConvertResult{
		TaskID:    input.TaskID,
		Status:    ResultStatusFailed,
		ErrorMsg:  cause.Error(),
		ErrorCode: string(code),
		Retryable: code.Retryable(),
	}
	finishTask(ctx, status, result, localPath)
	return status.Status, nil
}

// finishTask runs the terminal steps shared by both outcomes: artifact,
// notification, temp file cleanup. All are best effort after their retries.
func finishTask(ctx workflow.Context, status *TaskStatus, result models.ConvertResult, localPath string) {
	logger := workflow.GetLogger(ctx)

	status.CurrentStep = "write_artifact"
	status.Steps[status.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "WriteResultArtifactActivity", activities.WriteResultArtifactInput{
		TaskID: result.TaskID,
		Result: result,
	}).Get(ctx, nil); err != nil {
		logger.Error("write result artifact", "task_id", result.TaskID, "error", err)
		status.Steps[status.CurrentStep] = "failed"
	} else {
		status.Steps[status.CurrentStep] = "done"
	}

	status.CurrentStep = "notify"
	status.Steps[status.CurrentStep] = "processing"
	if err := workflow.ExecuteActivity(ctx, "NotifyResultActivity", activities.NotifyResultInput{
		Result: result,
	}).Get(ctx, nil); err != nil {
		logger.Error("notify result", "task_id", result.TaskID, "error", err)
		status.Steps[status.CurrentStep] = "failed"
	} else {
		status.Steps[status.CurrentStep] = "done"
	}

	if localPath != "" {
		_ = workflow.ExecuteActivity(ctx, "CleanupDocumentActivity", activities.CleanupDocumentInput{
			LocalPath: localPath,
		}).Get(ctx, nil)
	}
}

// BatchConvertWorkflow fans a directory of documents out to child convert
// workflows, a bounded window at a time.
func BatchConvertWorkflow(ctx workflow.Context, input BatchConvertInput) (BatchConvertProgress, error) {
	progress := BatchConvertProgress{
		BatchID:       input.BatchID,
		PerTask:       map[string]string{},
		ChildWorkflow: map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetBatchProgress, func() (BatchConvertProgress, error) {
		return progress, nil
	}); err != nil {
		return progress, err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var listOut activities.ListDocumentsOutput
	if err := workflow.ExecuteActivity(ctx, "ListDocumentsActivity", activities.ListDocumentsInput{
		InputDir: input.InputDir,
	}).Get(ctx, &listOut); err != nil {
		return progress, err
	}
	paths := listOut.Paths
	progress.Total = len(paths)

	maxChildren := input.MaxConcurrentChildren
	if maxChildren <= 0 {
		maxChildren = 3
	}

	for i := 0; i < len(paths); i += maxChildren {
		end := i + maxChildren
		if end > len(paths) {
			end = len(paths)
		}
		futures := make([]workflow.ChildWorkflowFuture, 0, end-i)
		childTasks := make([]string, 0, end-i)
		for _, path := range paths[i:end] {
			taskID := "task-" + sanitizeID(input.BatchID) + "-" + sanitizeID(filepathBase(path))
			progress.PerTask[taskID] = TaskStatusProcessing
			workflowID := "convert-" + taskID
			childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{WorkflowID: workflowID})
			f := workflow.ExecuteChildWorkflow(childCtx, DocumentConvertWorkflow, DocumentConvertInput{
				TaskID:     taskID,
				MerchantID: input.MerchantID,
				FileID:     filepathBase(path),
				FileURL:    "file://" + path,
				LocalPath:  path,
			})
			futures = append(futures, f)
			childTasks = append(childTasks, taskID)
			progress.ChildWorkflow[taskID] = workflowID
		}

		for idx, f := range futures {
			var childStatus string
			err := f.Get(ctx, &childStatus)
			taskID := childTasks[idx]
			if err != nil {
				progress.Failed++
				progress.PerTask[taskID] = TaskStatusFailed
				continue
			}
			if childStatus == TaskStatusFailed {
				progress.Failed++
			}
			progress.Done++
			progress.PerTask[taskID] = childStatus
		}
	}
	return progress, nil
}

// cleanupPath returns the temp file to delete after the task finishes. Files
// handed in by a batch parent are not ours to remove.
func cleanupPath(input DocumentConvertInput, localPath string) string {
	if input.LocalPath != "" {
		return ""
	}
	return localPath
}

func filepathBase(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) == 0 {
		return path
	}
	return parts[len(parts)-1]
}

func sanitizeID(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "-")
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, "/", "-")
	return s
}

func toResultQuestions(questions []extract.Question) []models.ResultQuestion {
	out := make([]models.ResultQuestion, 0, len(questions))
	for _, q := range questions {
		var grade *int
		if q.Grade > 0 {
			g := q.Grade
			grade = &g
		}
		out = append(out, models.ResultQuestion{
			Type:        string(q.Type),
			Content:     q.Content,
			Options:     q.Options,
			Answer:      q.Answer,
			Explanation: q.Explanation,
			Difficulty:  q.Difficulty,
			Grade:       grade,
			Subject:     q.Subject,
		})
	}
	return out
}
