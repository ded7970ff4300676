package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.FetchDocumentActivity)
	w.RegisterActivity(a.ConvertDocumentActivity)
	w.RegisterActivity(a.ExtractQuestionsActivity)
	w.RegisterActivity(a.SaveQuestionsActivity)
	w.RegisterActivity(a.UpdateTaskStatusActivity)
	w.RegisterActivity(a.WriteResultArtifactActivity)
	w.RegisterActivity(a.NotifyResultActivity)
	w.RegisterActivity(a.CleanupDocumentActivity)
	w.RegisterActivity(a.ListDocumentsActivity)
}
