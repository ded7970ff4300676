package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"examflow/internal/config"
	"examflow/internal/models"
	"examflow/internal/storage"
	"examflow/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

type Server struct {
	cfg          config.Config
	db           *storage.DB
	taskRepo     *storage.TaskRepo
	questionRepo *storage.QuestionRepo
	temporal     tclient.Client
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	if err := storage.EnsureSchema(ctx, db); err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	return &Server{
		cfg:          cfg,
		db:           db,
		taskRepo:     storage.NewTaskRepo(db),
		questionRepo: storage.NewQuestionRepo(db),
		temporal:     tc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/tasks/", s.handleTasksScoped)
	mux.HandleFunc("/batches", s.handleBatches)
	mux.HandleFunc("/batches/", s.handleBatchesScoped)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		merchantID := strings.TrimSpace(r.URL.Query().Get("merchant_id"))
		if merchantID == "" {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("merchant_id is required"))
			return
		}
		tasks, err := s.taskRepo.ListTasksByMerchant(r.Context(), merchantID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
	case http.MethodPost:
		var req struct {
			TaskID     string `json:"task_id"`
			MerchantID string `json:"merchant_id"`
			FileID     string `json:"file_id"`
			FileURL    string `json:"file_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
			return
		}
		req.MerchantID = strings.TrimSpace(req.MerchantID)
		req.FileURL = strings.TrimSpace(req.FileURL)
		if req.MerchantID == "" || req.FileURL == "" {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("merchant_id and file_url are required"))
			return
		}
		taskID := strings.TrimSpace(req.TaskID)
		if taskID == "" {
			taskID = uuid.NewString()
		}

		if err := s.taskRepo.UpsertTask(r.Context(), models.Task{
			TaskID:     taskID,
			MerchantID: req.MerchantID,
			FileID:     req.FileID,
			FileURL:    req.FileURL,
			Status:     "pending",
		}); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}

		we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
			ID:                                       "convert-" + taskID,
			TaskQueue:                                s.cfg.TemporalTaskQueue,
			WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
			WorkflowExecutionErrorWhenAlreadyStarted: true,
		}, workflows.DocumentConvertWorkflow, workflows.DocumentConvertInput{
			TaskID:     taskID,
			MerchantID: req.MerchantID,
			FileID:     req.FileID,
			FileURL:    req.FileURL,
		})
		if err != nil {
			writeErr(w, http.StatusConflict, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{
			"task_id":     taskID,
			"workflow_id": we.GetID(),
			"run_id":      we.GetRunID(),
		})
	default:
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	}
}

func (s *Server) handleTasksScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/tasks/"), "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	taskID := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		task, err := s.taskRepo.GetTask(r.Context(), taskID)
		if err != nil {
			writeErr(w, http.StatusNotFound, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
		return
	}
	if len(parts) == 2 && parts[1] == "status" {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		var status workflows.TaskStatus
		resp, err := s.temporal.QueryWorkflow(r.Context(), "convert-"+taskID, "", workflows.QueryGetTaskStatus)
		if err != nil {
			// No live workflow to query; fall back to the task row.
			task, tErr := s.taskRepo.GetTask(r.Context(), taskID)
			if tErr != nil {
				writeErr(w, http.StatusNotFound, tErr)
				return
			}
			writeJSON(w, http.StatusOK, workflows.TaskStatus{
				TaskID:        task.TaskID,
				Status:        task.Status,
				FailReason:    task.FailReason,
				QuestionCount: task.QuestionCount,
			})
			return
		}
		if err := resp.Get(&status); err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}
	if len(parts) == 2 && parts[1] == "questions" {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		questions, err := s.questionRepo.ListQuestionsByTask(r.Context(), taskID)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
		return
	}
	writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
}

func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		BatchID               string `json:"batch_id"`
		MerchantID            string `json:"merchant_id"`
		InputDir              string `json:"input_dir"`
		MaxConcurrentChildren int    `json:"max_concurrent_children"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.MerchantID = strings.TrimSpace(req.MerchantID)
	req.InputDir = strings.TrimSpace(req.InputDir)
	if req.MerchantID == "" || req.InputDir == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("merchant_id and input_dir are required"))
		return
	}
	batchID := strings.TrimSpace(req.BatchID)
	if batchID == "" {
		batchID = uuid.NewString()
	}
	maxChildren := req.MaxConcurrentChildren
	if maxChildren <= 0 {
		maxChildren = s.cfg.BatchMaxChildren
	}

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                                       "batch-" + batchID,
		TaskQueue:                                s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, workflows.BatchConvertWorkflow, workflows.BatchConvertInput{
		BatchID:               batchID,
		MerchantID:            req.MerchantID,
		InputDir:              req.InputDir,
		MaxConcurrentChildren: maxChildren,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"batch_id":    batchID,
		"workflow_id": we.GetID(),
		"run_id":      we.GetRunID(),
	})
}

func (s *Server) handleBatchesScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/batches/"), "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "progress" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	batchID := parts[0]

	var progress workflows.BatchConvertProgress
	resp, err := s.temporal.QueryWorkflow(r.Context(), "batch-"+batchID, "", workflows.QueryGetBatchProgress)
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	if err := resp.Get(&progress); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "EF-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "EF-DB-5001",
				Message: "Database schema is not initialized. Run migrations and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "EF-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "EF-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "EF-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "EF-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "EF-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "EF-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	if status >= 400 && status < 500 && err != nil {
		low := strings.ToLower(err.Error())
		switch {
		case strings.Contains(low, "merchant_id and file_url are required"):
			msg = "Both merchant_id and file_url are required."
		case strings.Contains(low, "merchant_id and input_dir are required"):
			msg = "Both merchant_id and input_dir are required."
		case strings.Contains(low, "merchant_id is required"):
			msg = "merchant_id is required."
		case strings.Contains(low, "invalid json"):
			msg = "Malformed JSON request body."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
