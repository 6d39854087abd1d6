package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"incident-training-service/internal/app"
	"incident-training-service/internal/logger"
)

// WSHandler streams live incident results and accepts answers over a websocket.
type WSHandler struct {
	incidents *app.IncidentService
	feeds     *app.FeedService
	log       *logger.Logger
	upgrader  websocket.Upgrader
}

func NewWSHandler(incidents *app.IncidentService, feeds *app.FeedService, log *logger.Logger) *WSHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &WSHandler{
		incidents: incidents,
		feeds:     feeds,
		log:       log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"answerOptionId"`
	AnswerText string `json:"answerText"`
	RoleID     string `json:"roleId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

// ServeWS upgrades the request and binds the connection to one incident's feed.
// The client receives "joined" first, then a "results" board after every change.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	incidentID := r.URL.Query().Get("incidentId")
	userID := r.URL.Query().Get("userId")
	if incidentID == "" || userID == "" {
		http.Error(w, "missing incidentId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	log := h.log.With("incidentId", incidentID, "userId", userID)

	joined, err := h.feeds.Join(r.Context(), incidentID, userID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	defer h.feeds.Leave(r.Context(), incidentID, userID)

	updates, cancel, err := h.feeds.Subscribe(r.Context(), incidentID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// A single writer goroutine owns the connection's write side.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", "error", err)
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "joined", Payload: joined}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "results", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid answer payload")
				continue
			}
			detail, err := h.incidents.RecordResponse(r.Context(), app.Submission{
				IncidentID: incidentID,
				UserID:     userID,
				RoleID:     payload.RoleID,
				QuestionID: payload.QuestionID,
				OptionID:   payload.OptionID,
				AnswerText: payload.AnswerText,
			})
			if err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: detail}
		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
