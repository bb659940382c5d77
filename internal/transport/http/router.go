package http

import (
	"net/http"

	"cohort-admin/internal/app"
	"github.com/sirupsen/logrus"
)

// Services bundles the application services served over HTTP.
type Services struct {
	Registrar *app.Registrar
	Bank      *app.QuestionBank
	Ledger    *app.ScoreLedger
	Agg       *app.Aggregator
	Projects  *app.ProjectRegistry
	Wallets   *app.WalletDirectory
	Feed      *app.QuizFeed
	Notes     *app.NoteBook
}

// API holds the REST handlers.
type API struct {
	svc Services
	log logrus.FieldLogger
}

func NewAPI(svc Services, log logrus.FieldLogger) *API {
	return &API{svc: svc, log: log}
}

// NewRouter wires every route, the quiz websocket and request logging.
func NewRouter(svc Services, log logrus.FieldLogger) http.Handler {
	api := NewAPI(svc, log)
	ws := NewWSHandler(svc.Feed, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	api.Routes(mux)
	mux.HandleFunc("GET /ws/quiz", ws.ServeWS)
	return withRequestLogging(mux, log)
}

// Routes registers the REST endpoints on mux.
func (a *API) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/registrations", a.createRegistration)
	mux.HandleFunc("GET /api/registrations", a.listRegistrations)
	mux.HandleFunc("GET /api/registrations/{id}", a.getRegistration)
	mux.HandleFunc("PATCH /api/registrations/{id}", a.updateRegistration)
	mux.HandleFunc("DELETE /api/registrations/{id}", a.deleteRegistration)
	mux.HandleFunc("PUT /api/registrations/{id}/approval", a.setApproval)

	mux.HandleFunc("GET /api/questions", a.listQuestions)
	mux.HandleFunc("POST /api/questions", a.createQuestions)
	mux.HandleFunc("GET /api/questions/public", a.listPublicQuestions)
	mux.HandleFunc("POST /api/questions/grade", a.gradeAnswers)
	mux.HandleFunc("PATCH /api/questions/{id}", a.updateQuestion)
	mux.HandleFunc("DELETE /api/questions/{id}", a.deleteQuestion)
	mux.HandleFunc("DELETE /api/tasks/{task}/questions", a.deleteTaskQuestions)

	mux.HandleFunc("POST /api/scores", a.recordScore)
	mux.HandleFunc("GET /api/scores", a.rawScores)
	mux.HandleFunc("PATCH /api/scores/{id}", a.updateScore)
	mux.HandleFunc("DELETE /api/scores/{id}", a.deleteScore)
	mux.HandleFunc("GET /api/students/{studentId}/scores", a.studentScores)
	mux.HandleFunc("GET /api/students/{studentId}/summary", a.studentSummary)
	mux.HandleFunc("POST /api/students/{studentId}/quiz", a.submitQuiz)
	mux.HandleFunc("GET /api/leaderboard", a.leaderboard)

	mux.HandleFunc("POST /api/projects", a.upsertProject)
	mux.HandleFunc("GET /api/projects", a.listProjects)
	mux.HandleFunc("GET /api/projects/latest", a.latestProject)
	mux.HandleFunc("GET /api/projects/{projectId}", a.getProject)
	mux.HandleFunc("DELETE /api/projects/{id}", a.deleteProject)
	mux.HandleFunc("POST /api/claims", a.addClaim)
	mux.HandleFunc("GET /api/claims", a.allClaims)
	mux.HandleFunc("DELETE /api/claims/{id}", a.deleteClaim)
	mux.HandleFunc("GET /api/students/{studentId}/claims", a.studentClaims)

	mux.HandleFunc("GET /api/notes", a.allNotes)
	mux.HandleFunc("GET /api/students/{studentId}/notes", a.studentNotes)
	mux.HandleFunc("POST /api/students/{studentId}/notes", a.addNote)
	mux.HandleFunc("PATCH /api/students/{studentId}/notes/{id}", a.updateNote)
	mux.HandleFunc("DELETE /api/students/{studentId}/notes/{id}", a.deleteNote)

	mux.HandleFunc("GET /api/auth/wallet/{address}", a.checkWallet)
}
