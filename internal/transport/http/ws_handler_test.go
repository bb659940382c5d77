package http

import (
	"context"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"cohort-admin/internal/app"
	"cohort-admin/internal/domain"
	"cohort-admin/internal/infra/memory"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

func TestWebSocketSubmitFlow(t *testing.T) {
	svc, studentID, questionIDs := newTestServices(t)
	server := httptest.NewServer(NewRouter(svc, quietLogger()))
	defer server.Close()

	conn := dial(t, server, studentID)
	defer conn.Close()

	if typ, _ := readNext(conn, t, "joined"); typ != "joined" {
		t.Fatalf("expected joined, got %s", typ)
	}

	submit := map[string]any{
		"type": "submit",
		"payload": map[string]any{
			"taskNumber": 1,
			"answers": map[string]string{
				itoa(questionIDs[0]): "A",
				itoa(questionIDs[1]): "C",
			},
		},
	}
	if err := conn.WriteJSON(submit); err != nil {
		t.Fatalf("write submit: %v", err)
	}

	_, graded := readNext(conn, t, "graded")
	if graded["score"] != float64(2) {
		t.Fatalf("expected score 2, got %v", graded["score"])
	}
	_, lb := readNext(conn, t, "leaderboard")
	entries, _ := lb["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected one leaderboard entry, got %v", lb["entries"])
	}
	top := entries[0].(map[string]any)
	if top["student_id"] != studentID || top["total_score"] != float64(2) {
		t.Fatalf("unexpected leaderboard entry %+v", top)
	}

	// Resubmitting overwrites the choice record instead of adding one.
	submit["payload"].(map[string]any)["answers"] = map[string]string{itoa(questionIDs[0]): "A"}
	if err := conn.WriteJSON(submit); err != nil {
		t.Fatalf("write resubmit: %v", err)
	}
	_, graded = readNext(conn, t, "graded")
	if graded["score"] != float64(1) || graded["updated"] != true {
		t.Fatalf("expected in-place update with score 1, got %+v", graded)
	}
}

func TestWebSocketBroadcastsToOtherStudents(t *testing.T) {
	svc, studentID, questionIDs := newTestServices(t)
	other := registerApproved(t, svc, "Bob")
	server := httptest.NewServer(NewRouter(svc, quietLogger()))
	defer server.Close()

	watcher := dial(t, server, other)
	defer watcher.Close()
	readNext(watcher, t, "joined")

	conn := dial(t, server, studentID)
	defer conn.Close()
	readNext(conn, t, "joined")

	if err := conn.WriteJSON(map[string]any{
		"type":    "submit",
		"payload": map[string]any{"taskNumber": 1, "answers": map[string]string{itoa(questionIDs[0]): "A"}},
	}); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	readNext(conn, t, "graded")

	_, lb := readNext(watcher, t, "leaderboard")
	entries, _ := lb["entries"].([]any)
	if len(entries) != 2 {
		t.Fatalf("expected two entries, got %v", lb["entries"])
	}
	if entries[0].(map[string]any)["student_id"] != studentID {
		t.Fatalf("expected submitter to lead, got %+v", entries[0])
	}
}

func TestWebSocketRejectsPendingStudent(t *testing.T) {
	svc, _, _ := newTestServices(t)
	pending, err := svc.Registrar.Register(context.Background(), domain.Registration{
		StudentName: "Carol", WechatID: "carol", WalletAddress: "0xcarol",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	server := httptest.NewServer(NewRouter(svc, quietLogger()))
	defer server.Close()

	conn := dial(t, server, pending.StudentID)
	defer conn.Close()
	_, payload := readNext(conn, t, "error")
	if payload["message"] != domain.ErrStudentNotApproved.Error() {
		t.Fatalf("unexpected error payload %+v", payload)
	}
}

func dial(t *testing.T, server *httptest.Server, studentID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws/quiz?studentId=" + studentID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

// newTestServices builds in-memory services with one approved student and a
// two-question task 1 (A and C correct, one point each).
func newTestServices(t *testing.T) (Services, string, []int64) {
	t.Helper()
	ctx := context.Background()
	regs := memory.NewRegistrationStore()
	questions := memory.NewQuestionStore()
	scores := memory.NewScoreStore()
	log := quietLogger()

	registrar := app.NewRegistrar(regs, app.IdentityOptions{}, log)
	bank := app.NewQuestionBank(questions, memory.NewAnswerKeyCache(questions, time.Minute), log)
	ledger := app.NewScoreLedger(scores, bank, log)
	agg := app.NewAggregator(scores, regs)
	svc := Services{
		Registrar: registrar,
		Bank:      bank,
		Ledger:    ledger,
		Agg:       agg,
		Projects:  app.NewProjectRegistry(memory.NewProjectStore(regs), log),
		Wallets:   app.NewWalletDirectory(memory.NewStaffStore(), regs, log),
		Feed:      app.NewQuizFeed(registrar, ledger, agg, log),
		Notes:     app.NewNoteBook(memory.NewNoteStore(), log),
	}

	var ids []int64
	for i, correct := range []string{"A", "C"} {
		id, err := bank.Add(ctx, domain.Question{
			TaskNumber:     1,
			QuestionNumber: i + 1,
			QuestionText:   "pick one",
			Options:        domain.Options{{ID: "A", Text: "a"}, {ID: "B", Text: "b"}, {ID: "C", Text: "c"}},
			CorrectOption:  correct,
			Points:         1,
		})
		if err != nil {
			t.Fatalf("add question: %v", err)
		}
		ids = append(ids, id)
	}
	return svc, registerApproved(t, svc, "Alice"), ids
}

func registerApproved(t *testing.T, svc Services, name string) string {
	t.Helper()
	ctx := context.Background()
	reg, err := svc.Registrar.Register(ctx, domain.Registration{
		StudentName:   name,
		WechatID:      name + "-wx",
		WalletAddress: "0x" + name,
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	if out := svc.Registrar.SetApproval(ctx, reg.ID, true); !out.Success {
		t.Fatalf("approve %s: %s", name, out.Error)
	}
	return reg.StudentID
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
