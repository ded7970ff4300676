package activities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"examflow/internal/config"
	"examflow/internal/convert"
	"examflow/internal/extract"
	"examflow/internal/models"
	"examflow/internal/storage"
	"examflow/internal/util"
)

type Activities struct {
	cfg          config.Config
	taskRepo     *storage.TaskRepo
	questionRepo *storage.QuestionRepo
	fetcher      convert.Fetcher
	converter    convert.Converter
	notifier     *http.Client
}

func New(cfg config.Config, db *storage.DB) *Activities {
	return &Activities{
		cfg:          cfg,
		taskRepo:     storage.NewTaskRepo(db),
		questionRepo: storage.NewQuestionRepo(db),
		fetcher:      convert.NewHTTPFetcher(cfg.TempFileDir, time.Duration(cfg.DownloadTimeoutSecs)*time.Second, cfg.MaxFileSizeBytes),
		converter:    convert.NewFileConverter(),
		notifier:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (a *Activities) FetchDocumentActivity(ctx context.Context, in FetchDocumentInput) (FetchDocumentOutput, error) {
	path, err := a.fetcher.Fetch(ctx, in.FileURL)
	if err != nil {
		return FetchDocumentOutput{}, err
	}
	return FetchDocumentOutput{LocalPath: path, Filename: filepath.Base(path)}, nil
}

func (a *Activities) ConvertDocumentActivity(ctx context.Context, in ConvertDocumentInput) (ConvertDocumentOutput, error) {
	_ = ctx
	text, err := a.converter.ToText(in.LocalPath)
	if err != nil {
		return ConvertDocumentOutput{}, err
	}
	return ConvertDocumentOutput{Text: text}, nil
}

func (a *Activities) ExtractQuestionsActivity(ctx context.Context, in ExtractQuestionsInput) (ExtractQuestionsOutput, error) {
	_ = ctx
	res := extract.Extract(in.Text)
	out := ExtractQuestionsOutput{Questions: res.Questions}
	if len(res.Discards) > 0 {
		out.Discards = make(map[string]int, len(res.Discards))
		for reason, n := range res.Discards {
			out.Discards[string(reason)] = n
		}
	}
	return out, nil
}

func (a *Activities) SaveQuestionsActivity(ctx context.Context, in SaveQuestionsInput) (SaveQuestionsOutput, error) {
	rows := make([]models.Question, 0, len(in.Questions))
	for _, q := range in.Questions {
		var grade *int
		if q.Grade > 0 {
			g := q.Grade
			grade = &g
		}
		rows = append(rows, models.Question{
			QuestionID:  questionID(in.TaskID, q.Ordinal),
			TaskID:      in.TaskID,
			MerchantID:  in.MerchantID,
			Ordinal:     q.Ordinal,
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
	if err := a.questionRepo.ReplaceQuestions(ctx, in.TaskID, rows); err != nil {
		return SaveQuestionsOutput{}, err
	}
	return SaveQuestionsOutput{Saved: len(rows)}, nil
}

// questionID is stable across reprocessing so downstream references to a
// question survive a task rerun.
func questionID(taskID string, ordinal int) string {
	return util.SHA256Hex([]byte(fmt.Sprintf("%s:%d", taskID, ordinal)))[:16]
}

func (a *Activities) UpdateTaskStatusActivity(ctx context.Context, in UpdateTaskStatusInput) error {
	return a.taskRepo.UpsertTask(ctx, models.Task{
		TaskID:        in.TaskID,
		MerchantID:    in.MerchantID,
		FileID:        in.FileID,
		FileURL:       in.FileURL,
		Filename:      in.Filename,
		Status:        in.Status,
		FailReason:    in.FailReason,
		QuestionCount: in.QuestionCount,
	})
}

func (a *Activities) WriteResultArtifactActivity(ctx context.Context, in WriteResultArtifactInput) (WriteResultArtifactOutput, error) {
	_ = ctx
	dir := util.SafeJoin(filepath.Join(a.cfg.DataOutRoot, "tasks"), in.TaskID)
	path := filepath.Join(dir, "result.json")
	if err := util.WriteJSONAtomic(path, in.Result); err != nil {
		return WriteResultArtifactOutput{}, err
	}
	if len(in.Result.Result) > 0 {
		rows := make([]any, 0, len(in.Result.Result))
		for _, q := range in.Result.Result {
			rows = append(rows, q)
		}
		if err := util.WriteJSONLinesAtomic(filepath.Join(dir, "questions.jsonl"), rows); err != nil {
			return WriteResultArtifactOutput{}, err
		}
	}
	return WriteResultArtifactOutput{Path: path}, nil
}

// NotifyResultActivity delivers the terminal result message to the configured
// callback. With no callback configured it is a no-op, which keeps single-box
// deployments working without a consumer on the other end.
func (a *Activities) NotifyResultActivity(ctx context.Context, in NotifyResultInput) error {
	if a.cfg.ResultCallbackURL == "" {
		return nil
	}
	body, err := json.Marshal(in.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.ResultCallbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.notifier.Do(req)
	if err != nil {
		return fmt.Errorf("notify result: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify result: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (a *Activities) CleanupDocumentActivity(ctx context.Context, in CleanupDocumentInput) error {
	_ = ctx
	util.RemoveQuiet(in.LocalPath)
	return nil
}

func (a *Activities) ListDocumentsActivity(ctx context.Context, in ListDocumentsInput) (ListDocumentsOutput, error) {
	_ = ctx
	entries, err := os.ReadDir(in.InputDir)
	if err != nil {
		return ListDocumentsOutput{}, fmt.Errorf("read input dir: %w", err)
	}
	paths := make([]string, 0)
	for _, e := range entries {
		if e.IsDir() || !convert.Supported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(in.InputDir, e.Name()))
	}
	sort.Strings(paths)
	return ListDocumentsOutput{Paths: paths}, nil
}
