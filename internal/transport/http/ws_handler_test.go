package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestObserverReceivesLifecycleEvents(t *testing.T) {
	f := newFixture(t, &stubSolver{solveResult: "Réponse: 42"})

	u := "ws" + f.server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return f.hub.SubscriberCount() == 1 })

	resp := postJSON(t, f.server.URL+"/api/data", `{"data":{"generated":"Q1?"}}`)
	var rec map[string]json.RawMessage
	decodeBody(t, resp, &rec)
	var id string
	if err := json.Unmarshal(rec["id"], &id); err != nil {
		t.Fatalf("unmarshal id: %v", err)
	}

	// created event first, then the enrichment outcome
	event, payload := readEvent(t, conn)
	if event != "newData" {
		t.Fatalf("expected newData, got %s", event)
	}
	var created map[string]any
	if err := json.Unmarshal(payload, &created); err != nil {
		t.Fatalf("unmarshal newData payload: %v", err)
	}
	if created["id"] != id {
		t.Fatalf("newData payload id mismatch: %v vs %s", created["id"], id)
	}

	event, payload = readEvent(t, conn)
	if event != "aiSolution" {
		t.Fatalf("expected aiSolution, got %s", event)
	}
	var solved struct {
		ID         string `json:"id"`
		AISolution string `json:"aiSolution"`
	}
	if err := json.Unmarshal(payload, &solved); err != nil {
		t.Fatalf("unmarshal aiSolution payload: %v", err)
	}
	if solved.ID != id || solved.AISolution != "Réponse: 42" {
		t.Fatalf("unexpected aiSolution payload %+v", solved)
	}
}

func TestObserverReceivesExtractionEvents(t *testing.T) {
	f := newFixture(t, &stubSolver{extractResult: "Q1: A) ..."})

	u := "ws" + f.server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitFor(t, func() bool { return f.hub.SubscriberCount() == 1 })

	resp := postJSON(t, f.server.URL+"/api/extract-quiz", `{"html":"<div>qcm</div>"}`)
	resp.Body.Close()

	event, _ := readEvent(t, conn)
	if event != "newExtractedQuiz" {
		t.Fatalf("expected newExtractedQuiz, got %s", event)
	}
	event, payload := readEvent(t, conn)
	if event != "quizExtracted" {
		t.Fatalf("expected quizExtracted, got %s", event)
	}
	var update struct {
		ExtractedContent string `json:"extractedContent"`
		Status           string `json:"status"`
	}
	if err := json.Unmarshal(payload, &update); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if update.Status != "completed" || update.ExtractedContent != "Q1: A) ..." {
		t.Fatalf("unexpected payload %+v", update)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return msg.Event, msg.Payload
}
