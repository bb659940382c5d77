package http

import (
	"encoding/json"
	"net/http"

	"cohort-admin/internal/app"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WSHandler serves the live quiz channel: students submit task answers and
// every connected client receives the updated leaderboard.
type WSHandler struct {
	feed     *app.QuizFeed
	log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

func NewWSHandler(feed *app.QuizFeed, log logrus.FieldLogger) *WSHandler {
	return &WSHandler{
		feed: feed,
		log:  log,
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

type submitPayload struct {
	TaskNumber int              `json:"taskNumber"`
	Answers    map[int64]string `json:"answers"`
}

type gradedPayload struct {
	TaskNumber int   `json:"taskNumber"`
	Score      int   `json:"score"`
	RecordID   int64 `json:"recordId"`
	Updated    bool  `json:"updated"`
}

type joinedPayload struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and runs the submit loop for one student.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("studentId")
	if studentID == "" {
		http.Error(w, "missing studentId", http.StatusBadRequest)
		return
	}
	log := h.log.WithFields(logrus.Fields{"student_id": studentID, "request_id": RequestID(r.Context())})

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	reg, err := h.feed.Join(r.Context(), studentID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel := h.feed.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Single writer: gorilla connections do not allow concurrent writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write failed")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// emit gives up once the writer has stopped so the read loop never blocks on a dead connection.
	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	emit(outboundMessage[any]{Type: "joined", Payload: joinedPayload{StudentID: reg.StudentID, StudentName: reg.StudentName}})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "submit":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}})
				continue
			}
			result, update, err := h.feed.Submit(r.Context(), studentID, payload.TaskNumber, payload.Answers)
			if err != nil {
				log.WithError(err).WithField("task", payload.TaskNumber).Warn("quiz submission failed")
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
				continue
			}
			emit(outboundMessage[any]{Type: "graded", Payload: gradedPayload{
				TaskNumber: result.TaskNumber,
				Score:      result.Score,
				RecordID:   result.RecordID,
				Updated:    result.Updated,
			}})
			// The submitter gets graded then leaderboard in order; everyone else via the feed.
			emit(outboundMessage[any]{Type: "leaderboard", Payload: update})
			h.feed.Publish(update, updates)
		default:
			emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}})
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
