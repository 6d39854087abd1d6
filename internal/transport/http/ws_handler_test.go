package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"incident-training-service/internal/domain"
)

func TestWebSocketAnswerFlow(t *testing.T) {
	server := newTestServer(t)
	fx := seedFixture(t, server)
	q := fx.scenario.Questions[0]

	u := "ws" + server.URL[len("http"):] + "/ws?incidentId=" + fx.incidentID + "&userId=" + fx.userID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect joined event first.
	_, raw := readNext(conn, t, "joined")
	var joined domain.IncidentBoard
	if err := json.Unmarshal(raw, &joined); err != nil {
		t.Fatalf("decode joined: %v", err)
	}
	if joined.IncidentID != fx.incidentID || len(joined.Outcomes) != 0 {
		t.Fatalf("unexpected joined board %+v", joined)
	}

	answer := map[string]any{
		"type": "answer",
		"payload": map[string]any{
			"questionId":     q.ID,
			"answerOptionId": q.Options[0].ID,
		},
	}
	if err := conn.WriteJSON(answer); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	// The initial board may still be in flight; keep reading until both the
	// answer result and a board carrying the new outcome have arrived.
	answerSeen := false
	resultsSeen := false
	for i := 0; i < 6 && !(answerSeen && resultsSeen); i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "answerResult":
			var detail domain.Detail
			if err := json.Unmarshal(payload, &detail); err != nil {
				t.Fatalf("decode answerResult: %v", err)
			}
			if detail.Points != 10 || detail.Verdict != domain.VerdictCorrect {
				t.Fatalf("unexpected answer result %+v", detail)
			}
			answerSeen = true
		case "results":
			var board domain.IncidentBoard
			if err := json.Unmarshal(payload, &board); err != nil {
				t.Fatalf("decode results: %v", err)
			}
			if len(board.Outcomes) == 1 && board.Outcomes[0].Score == 10 {
				resultsSeen = true
			}
		}
	}
	if !answerSeen || !resultsSeen {
		t.Fatalf("expected answerResult and results, got answerResult=%v results=%v", answerSeen, resultsSeen)
	}

	if err := conn.WriteJSON(map[string]any{"type": "dance"}); err != nil {
		t.Fatalf("write unsupported: %v", err)
	}
	for i := 0; i < 4; i++ {
		if typ, _ := readNext(conn, t, ""); typ == "error" {
			return
		}
	}
	t.Fatalf("expected an error message for unsupported type")
}

func TestWebSocketUnknownIncident(t *testing.T) {
	server := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws?incidentId=missing&userId=u1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, payload := readNext(conn, t, "error")
	var body errorPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if body.Message != domain.ErrIncidentNotFound.Error() {
		t.Fatalf("unexpected error message %q", body.Message)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, json.RawMessage) {
	t.Helper()
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
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
