package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/memory"
)

func TestWebSocketQuizFlow(t *testing.T) {
	quiz, teacher, store := newServices(sampleQuestions())
	server := httptest.NewServer(NewRouter(NewAPIHandler(quiz, teacher, 0), NewWSHandler(quiz)))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?name=Alice&email=alice@example.com"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect started event first.
	_, payload := readNext(conn, t, "started")
	question, ok := payload["question"].(map[string]any)
	if !ok {
		t.Fatalf("expected first question in started payload, got %v", payload)
	}

	// Wrong answer first; the question comes back.
	writeAnswer(conn, t, "wrong")
	_, result := readNext(conn, t, "answerResult")
	if result["correct"] != false || result["correctAnswer"] != answers[question["text"].(string)] {
		t.Fatalf("unexpected answer result: %v", result)
	}
	_, question = readNext(conn, t, "question")

	for i := 0; i < 10; i++ {
		writeAnswer(conn, t, answers[question["text"].(string)])
		_, result = readNext(conn, t, "answerResult")
		if result["correct"] != true {
			t.Fatalf("expected correct answer, got %v", result)
		}
		if result["complete"] == true {
			break
		}
		_, question = readNext(conn, t, "question")
	}

	_, summary := readNext(conn, t, "complete")
	score := summary["score"].(map[string]any)
	if score["points"] != float64(3) || score["percentage"] != float64(100) {
		t.Fatalf("unexpected score: %v", score)
	}
	if len(store.Answers()) != 3 {
		t.Fatalf("expected 3 stored answers, got %d", len(store.Answers()))
	}
	entries, _ := store.ScoreHistory(context.Background(), 0)
	if len(entries) != 1 || entries[0].StudentName != "Alice" {
		t.Fatalf("unexpected score history: %+v", entries)
	}
}

func TestWebSocketRequiresIdentity(t *testing.T) {
	quiz, teacher, _ := newServices(sampleQuestions())
	server := httptest.NewServer(NewRouter(NewAPIHandler(quiz, teacher, 0), NewWSHandler(quiz)))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?name=Alice"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != 400 {
		t.Fatalf("expected 400 response, got %v", resp)
	}
}

func writeAnswer(conn *websocket.Conn, t *testing.T, answer string) {
	t.Helper()
	msg := map[string]any{
		"type":    "answer",
		"payload": map[string]any{"answer": answer},
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write answer: %v", err)
	}
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
		t.Fatalf("expected type %s, got %s (%v)", expect, msg.Type, msg.Payload)
	}
	return msg.Type, msg.Payload
}

var answers = map[string]string{
	"What is 2 + 2?":     "4",
	"Capital of France?": "Paris",
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Text: "What is 2 + 2?", CorrectAnswer: "4", Weight: 1, Active: true, Options: []string{"3", "4", "5"}},
		{Text: "Capital of France?", CorrectAnswer: "Paris", Weight: 2, Active: true},
	}
}

func newServices(questions []domain.Question) (*app.QuizService, *app.TeacherService, *memory.Store) {
	store := memory.NewStoreWithQuestions(questions)
	bank := memory.NewQuestionBank(store, time.Minute)
	quiz := app.NewQuizService(app.Dependencies{
		Sessions: memory.NewSessionStore(),
		Bank:     bank,
		Registry: app.NewStudentRegistry(store, domain.IdentityEmail),
		Gateway:  app.NewScoringGateway(store, store),
	})
	teacher := app.NewTeacherService(store, bank, nil, store)
	return quiz, teacher, store
}
