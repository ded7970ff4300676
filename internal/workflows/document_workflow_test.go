package workflows

import (
	"context"
	"errors"
	"testing"

	"examflow/internal/activities"
	"examflow/internal/extract"
	"examflow/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerConvertActivities(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "UpdateTaskStatusActivity", func(context.Context, activities.UpdateTaskStatusInput) error { return nil })
	registerActivityName(env, "FetchDocumentActivity", func(context.Context, activities.FetchDocumentInput) (activities.FetchDocumentOutput, error) {
		return activities.FetchDocumentOutput{}, nil
	})
	registerActivityName(env, "ConvertDocumentActivity", func(context.Context, activities.ConvertDocumentInput) (activities.ConvertDocumentOutput, error) {
		return activities.ConvertDocumentOutput{}, nil
	})
	registerActivityName(env, "ExtractQuestionsActivity", func(context.Context, activities.ExtractQuestionsInput) (activities.ExtractQuestionsOutput, error) {
		return activities.ExtractQuestionsOutput{}, nil
	})
	registerActivityName(env, "SaveQuestionsActivity", func(context.Context, activities.SaveQuestionsInput) (activities.SaveQuestionsOutput, error) {
		return activities.SaveQuestionsOutput{}, nil
	})
	registerActivityName(env, "WriteResultArtifactActivity", func(context.Context, activities.WriteResultArtifactInput) (activities.WriteResultArtifactOutput, error) {
		return activities.WriteResultArtifactOutput{}, nil
	})
	registerActivityName(env, "NotifyResultActivity", func(context.Context, activities.NotifyResultInput) error { return nil })
	registerActivityName(env, "CleanupDocumentActivity", func(context.Context, activities.CleanupDocumentInput) error { return nil })
}

func TestDocumentConvertWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentConvertWorkflow)
	registerConvertActivities(env)

	questions := []extract.Question{
		{Type: extract.SingleChoice, Content: "2+2=?", Options: []string{"3", "4"}, Answer: "B", Ordinal: 1},
		{Type: extract.TrueFalse, Content: "地球是圆的。", Answer: "true", Ordinal: 2},
	}

	env.OnActivity("UpdateTaskStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("FetchDocumentActivity", mock.Anything, activities.FetchDocumentInput{TaskID: "t1", FileURL: "http://files/exam.pdf"}).
		Return(activities.FetchDocumentOutput{LocalPath: "/tmp/exam.pdf", Filename: "exam.pdf"}, nil)
	env.OnActivity("ConvertDocumentActivity", mock.Anything, activities.ConvertDocumentInput{LocalPath: "/tmp/exam.pdf"}).
		Return(activities.ConvertDocumentOutput{Text: "raw exam text"}, nil)
	env.OnActivity("ExtractQuestionsActivity", mock.Anything, activities.ExtractQuestionsInput{Text: "raw exam text"}).
		Return(activities.ExtractQuestionsOutput{Questions: questions}, nil)
	env.OnActivity("SaveQuestionsActivity", mock.Anything, activities.SaveQuestionsInput{TaskID: "t1", MerchantID: "m1", Questions: questions}).
		Return(activities.SaveQuestionsOutput{Saved: 2}, nil)
	env.OnActivity("WriteResultArtifactActivity", mock.Anything, mock.MatchedBy(func(in activities.WriteResultArtifactInput) bool {
		return in.TaskID == "t1" && in.Result.Status == ResultStatusCompleted && len(in.Result.Result) == 2
	})).Return(activities.WriteResultArtifactOutput{Path: "/data/out/tasks/t1/result.json"}, nil)
	env.OnActivity("NotifyResultActivity", mock.Anything, mock.MatchedBy(func(in activities.NotifyResultInput) bool {
		return in.Result.Status == ResultStatusCompleted && in.Result.TaskID == "t1"
	})).Return(nil)
	env.OnActivity("CleanupDocumentActivity", mock.Anything, activities.CleanupDocumentInput{LocalPath: "/tmp/exam.pdf"}).Return(nil)

	env.ExecuteWorkflow(DocumentConvertWorkflow, DocumentConvertInput{
		TaskID: "t1", MerchantID: "m1", FileID: "f1", FileURL: "http://files/exam.pdf",
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, TaskStatusSucceeded, out)
}

func TestDocumentConvertWorkflowZeroQuestionsStillSucceeds(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentConvertWorkflow)
	registerConvertActivities(env)

	env.OnActivity("UpdateTaskStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("FetchDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.FetchDocumentOutput{LocalPath: "/tmp/prose.txt", Filename: "prose.txt"}, nil)
	env.OnActivity("ConvertDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.ConvertDocumentOutput{Text: "no questions here"}, nil)
	env.OnActivity("ExtractQuestionsActivity", mock.Anything, mock.Anything).
		Return(activities.ExtractQuestionsOutput{Discards: map[string]int{"no-question-pattern-matched": 2}}, nil)
	env.OnActivity("SaveQuestionsActivity", mock.Anything, mock.Anything).
		Return(activities.SaveQuestionsOutput{}, nil)
	env.OnActivity("WriteResultArtifactActivity", mock.Anything, mock.MatchedBy(func(in activities.WriteResultArtifactInput) bool {
		return in.Result.Status == ResultStatusCompleted && len(in.Result.Result) == 0
	})).Return(activities.WriteResultArtifactOutput{}, nil)
	env.OnActivity("NotifyResultActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("CleanupDocumentActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(DocumentConvertWorkflow, DocumentConvertInput{
		TaskID: "t2", MerchantID: "m1", FileID: "f2", FileURL: "http://files/prose.txt",
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, TaskStatusSucceeded, out)
}

func TestDocumentConvertWorkflowDownloadFailsGracefully(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentConvertWorkflow)
	registerConvertActivities(env)

	var notified models.ConvertResult

	env.OnActivity("UpdateTaskStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("FetchDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.FetchDocumentOutput{}, errors.New("document download failed: unexpected status 404"))
	env.OnActivity("WriteResultArtifactActivity", mock.Anything, mock.Anything).
		Return(activities.WriteResultArtifactOutput{}, nil)
	env.OnActivity("NotifyResultActivity", mock.Anything, mock.MatchedBy(func(in activities.NotifyResultInput) bool {
		notified = in.Result
		return true
	})).Return(nil)

	env.ExecuteWorkflow(DocumentConvertWorkflow, DocumentConvertInput{
		TaskID: "t3", MerchantID: "m1", FileID: "f3", FileURL: "http://files/missing.pdf",
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, TaskStatusFailed, out)

	require.Equal(t, ResultStatusFailed, notified.Status)
	require.Equal(t, "download", notified.ErrorCode)
	require.True(t, notified.Retryable)
}

func TestDocumentConvertWorkflowUnsupportedFormatNotRetryable(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(DocumentConvertWorkflow)
	registerConvertActivities(env)

	var notified models.ConvertResult

	env.OnActivity("UpdateTaskStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("FetchDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.FetchDocumentOutput{LocalPath: "/tmp/sheet.xlsx", Filename: "sheet.xlsx"}, nil)
	env.OnActivity("ConvertDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.ConvertDocumentOutput{}, errors.New("unsupported document format: .xlsx"))
	env.OnActivity("WriteResultArtifactActivity", mock.Anything, mock.Anything).
		Return(activities.WriteResultArtifactOutput{}, nil)
	env.OnActivity("NotifyResultActivity", mock.Anything, mock.MatchedBy(func(in activities.NotifyResultInput) bool {
		notified = in.Result
		return true
	})).Return(nil)
	env.OnActivity("CleanupDocumentActivity", mock.Anything, activities.CleanupDocumentInput{LocalPath: "/tmp/sheet.xlsx"}).Return(nil)

	env.ExecuteWorkflow(DocumentConvertWorkflow, DocumentConvertInput{
		TaskID: "t4", MerchantID: "m1", FileID: "f4", FileURL: "http://files/sheet.xlsx",
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, TaskStatusFailed, out)

	require.Equal(t, "unsupported-format", notified.ErrorCode)
	require.False(t, notified.Retryable)
}

func TestBatchConvertWorkflow(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(BatchConvertWorkflow)
	env.RegisterWorkflow(DocumentConvertWorkflow)
	registerConvertActivities(env)
	registerActivityName(env, "ListDocumentsActivity", func(context.Context, activities.ListDocumentsInput) (activities.ListDocumentsOutput, error) {
		return activities.ListDocumentsOutput{}, nil
	})

	env.OnActivity("ListDocumentsActivity", mock.Anything, activities.ListDocumentsInput{InputDir: "/data/in"}).
		Return(activities.ListDocumentsOutput{Paths: []string{"/data/in/a.pdf", "/data/in/b.txt"}}, nil)
	env.OnActivity("UpdateTaskStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("ConvertDocumentActivity", mock.Anything, mock.Anything).
		Return(activities.ConvertDocumentOutput{Text: "1.下列正确的是 A. x B. y 答案：A"}, nil)
	env.OnActivity("ExtractQuestionsActivity", mock.Anything, mock.Anything).
		Return(activities.ExtractQuestionsOutput{Questions: []extract.Question{
			{Type: extract.SingleChoice, Content: "下列正确的是", Options: []string{"x", "y"}, Answer: "A", Ordinal: 1},
		}}, nil)
	env.OnActivity("SaveQuestionsActivity", mock.Anything, mock.Anything).
		Return(activities.SaveQuestionsOutput{Saved: 1}, nil)
	env.OnActivity("WriteResultArtifactActivity", mock.Anything, mock.Anything).
		Return(activities.WriteResultArtifactOutput{}, nil)
	env.OnActivity("NotifyResultActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(BatchConvertWorkflow, BatchConvertInput{
		BatchID: "b1", MerchantID: "m1", InputDir: "/data/in", MaxConcurrentChildren: 2,
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var progress BatchConvertProgress
	require.NoError(t, env.GetWorkflowResult(&progress))
	require.Equal(t, 2, progress.Total)
	require.Equal(t, 2, progress.Done)
	require.Equal(t, 0, progress.Failed)
	require.Equal(t, TaskStatusSucceeded, progress.PerTask["task-b1-a-pdf"])
	require.Equal(t, TaskStatusSucceeded, progress.PerTask["task-b1-b-txt"])
}
