package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"student-analyzer/internal/domain"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string  `json:"questionId"`
	Option     *int    `json:"option"`
	Text       *string `json:"text"`
}

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

const writeWait = 10 * time.Second

// endOfStream makes the writer close the connection after the last update.
const endOfStream = "end"

// stream owns a websocket: one writer goroutine serialises every write.
type stream struct {
	conn       *websocket.Conn
	send       chan envelope
	closing    chan struct{}
	writerDone chan struct{}
}

func (a *API) openStream(w http.ResponseWriter, r *http.Request) (*stream, bool) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn().Err(err).Msg("ws upgrade failed")
		return nil, false
	}
	// the server's read and write timeouts must not end a long-lived stream
	_ = conn.SetReadDeadline(time.Time{})
	s := &stream{
		conn:       conn,
		send:       make(chan envelope, 16),
		closing:    make(chan struct{}),
		writerDone: make(chan struct{}),
	}
	go func() {
		defer close(s.writerDone)
		for msg := range s.send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if msg.Type == endOfStream {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream ended"))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				a.log.Debug().Err(err).Msg("ws write error")
				return
			}
		}
	}()
	return s, true
}

// emit queues msg unless the writer has already stopped.
func (s *stream) emit(msg envelope) {
	select {
	case s.send <- msg:
	case <-s.writerDone:
	}
}

func (s *stream) fail(err error) {
	_, msg := statusFor(err)
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		msg = verr.Message
	}
	s.emit(envelope{Type: "error", Payload: errorPayload{Message: msg}})
}

// forward relays updates until they end or the stream closes.
func forward[T any](s *stream, typ string, updates <-chan T) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					s.emit(envelope{Type: endOfStream})
					return
				}
				select {
				case s.send <- envelope{Type: typ, Payload: update}:
				case <-s.closing:
					return
				case <-s.writerDone:
					return
				}
			case <-s.closing:
				return
			}
		}
	}()
	return done
}

func (s *stream) shutdown(forwarderDone <-chan struct{}) {
	close(s.closing)
	<-forwarderDone
	close(s.send)
	<-s.writerDone
	s.conn.Close()
}

// attemptStream pushes attempt snapshots and accepts exam actions.
func (a *API) attemptStream(w http.ResponseWriter, r *http.Request) {
	uid, attemptID := caller(r).UID, chi.URLParam(r, "attemptID")
	snap, updates, cancel, err := a.svc.Exams.Subscribe(r.Context(), uid, attemptID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cancel()

	s, ok := a.openStream(w, r)
	if !ok {
		return
	}
	s.emit(envelope{Type: "attempt", Payload: snap})
	done := forward(s, "attempt", updates)

	ctx := r.Context()
	for {
		var in inboundMessage
		if err := s.conn.ReadJSON(&in); err != nil {
			break
		}
		if err := a.applyAction(ctx, uid, attemptID, in); err != nil {
			s.fail(err)
		}
	}
	s.shutdown(done)
}

// applyAction runs one exam action; the resulting snapshot reaches the
// client through the subscription.
func (a *API) applyAction(ctx context.Context, uid, attemptID string, in inboundMessage) error {
	exams := a.svc.Exams
	var err error
	switch in.Type {
	case "start":
		_, err = exams.Start(ctx, uid, attemptID)
	case "answer":
		var p answerPayload
		if jsonErr := json.Unmarshal(in.Payload, &p); jsonErr != nil {
			return domain.Invalid("payload", "", "invalid answer payload")
		}
		switch {
		case p.Option != nil:
			_, err = exams.Select(ctx, uid, attemptID, p.QuestionID, *p.Option)
		case p.Text != nil:
			_, err = exams.Draft(ctx, uid, attemptID, p.QuestionID, *p.Text)
		default:
			err = domain.Invalid("option", nil, "option or text required")
		}
	case "next":
		_, err = exams.Next(ctx, uid, attemptID)
	case "prev":
		_, err = exams.Prev(ctx, uid, attemptID)
	case "submit":
		_, err = exams.Submit(ctx, uid, attemptID)
	case "save":
		_, err = exams.Save(ctx, uid, attemptID)
	default:
		err = domain.Invalid("type", in.Type, "unsupported message type")
	}
	return err
}

// socialStream pushes the caller's friends and incoming requests until the
// client leaves or signs out.
func (a *API) socialStream(w http.ResponseWriter, r *http.Request) {
	ctx, stop := context.WithCancel(r.Context())
	defer stop()

	states, cancel, err := a.svc.Social.Subscribe(ctx, caller(r).UID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cancel()

	s, ok := a.openStream(w, r)
	if !ok {
		return
	}
	done := forward(s, "social", states)
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			break
		}
	}
	stop()
	s.shutdown(done)
}
