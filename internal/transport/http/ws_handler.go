package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

type Handler struct {
	quizzes    *app.QuizService
	history    *app.HistoryService
	log        *zap.Logger
	upgrader   websocket.Upgrader
	appendWait time.Duration
}

func NewHandler(quizzes *app.QuizService, history *app.HistoryService, log *zap.Logger) *Handler {
	return &Handler{
		quizzes: quizzes,
		history: history,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		appendWait: 5 * time.Second,
	}
}

// Routes wires every endpoint of the quiz server.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/history", h.ServeHistory)
	return mux
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Index int `json:"index"`
}

type finishPayload struct {
	Payload string `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type questionView struct {
	Index        int             `json:"index"`
	Total        int             `json:"total"`
	Question     string          `json:"question"`
	Choices      []domain.Choice `json:"choices"`
	Multiple     bool            `json:"multiple"`
	HasSelection bool            `json:"hasSelection"`
}

type answerLine struct {
	Question string `json:"question"`
	Answers  string `json:"answers"`
}

type summaryView struct {
	PlayerName string       `json:"playerName"`
	Answers    []answerLine `json:"answers"`
	Payload    string       `json:"payload"`
}

type finishedView struct {
	Saved   bool   `json:"saved"`
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func newQuestionView(state app.State) questionView {
	return questionView{
		Index:        state.Index,
		Total:        state.Total,
		Question:     state.Question.Text,
		Choices:      state.Question.Choices,
		Multiple:     state.Question.AllowsMultipleSelection,
		HasSelection: state.HasSelection,
	}
}

func newSummaryView(quiz domain.Quiz, payload string) summaryView {
	lines := make([]answerLine, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		lines = append(lines, answerLine{Question: q.Text, Answers: q.Answers()})
	}
	return summaryView{PlayerName: quiz.PlayerName, Answers: lines, Payload: payload}
}

func errorMessage(message string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: message}}
}

// ServeWS upgrades HTTP requests to websockets and drives one quiz session per connection.
//
// Client messages: select {index}, next, previous, abandon, finish {payload}.
// Server messages: question, summary, confirmAbandon, finished, error.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if !domain.ValidPlayerName(name) {
		http.Error(w, domain.ErrInvalidPlayerName.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.quizzes.StartQuiz(r.Context(), name)
	if err != nil {
		h.log.Error("start quiz failed", zap.Error(err))
		http.Error(w, "quiz unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.log.With(zap.String("conn", uuid.NewString()), zap.String("player", name))
	log.Info("quiz started")

	updates, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Warn("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case state, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage{Type: "question", Payload: newQuestionView(state)}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	flow := &quizFlow{handler: h, session: session, send: send, writerDone: writerDone, log: log}
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if done := flow.handle(r.Context(), inbound); done {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// quizFlow holds the per-connection navigation state around a session.
type quizFlow struct {
	handler    *Handler
	session    *app.Session
	send       chan<- outboundMessage
	writerDone <-chan struct{}
	log        *zap.Logger
	inSummary  bool
	// summary is the payload last handed to the client; finish must echo it back.
	summary string
}

// emit queues msg unless the writer already gave up on the connection.
func (f *quizFlow) emit(msg outboundMessage) {
	select {
	case f.send <- msg:
	case <-f.writerDone:
	}
}

// handle processes one client message and reports whether the conversation is over.
func (f *quizFlow) handle(ctx context.Context, inbound inboundMessage) bool {
	switch inbound.Type {
	case "select":
		if f.inSummary {
			f.emit(errorMessage("quiz complete, go back to change answers"))
			return false
		}
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			f.emit(errorMessage("invalid select payload"))
			return false
		}
		if _, err := f.session.Select(payload.Index); err != nil {
			f.emit(errorMessage(err.Error()))
		}
	case "next":
		if f.inSummary {
			f.emit(errorMessage("quiz complete"))
			return false
		}
		if !f.session.HasSelection() {
			f.emit(errorMessage("select at least one answer"))
			return false
		}
		if !f.session.Advance() {
			f.showSummary()
		}
	case "previous":
		if f.inSummary {
			f.inSummary = false
			f.emit(outboundMessage{Type: "question", Payload: newQuestionView(f.session.Snapshot())})
			return false
		}
		if !f.session.Retreat() {
			f.emit(outboundMessage{Type: "confirmAbandon", Payload: struct{}{}})
		}
	case "abandon":
		f.log.Info("quiz abandoned")
		return true
	case "finish":
		if !f.inSummary {
			f.emit(errorMessage("quiz not complete"))
			return false
		}
		var payload finishPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			f.emit(errorMessage(domain.ErrDeserialization.Error()))
			return false
		}
		quiz, err := app.DecodeHandoff(payload.Payload)
		if err == nil && payload.Payload != f.summary {
			err = fmt.Errorf("%w: payload does not match this session", domain.ErrDeserialization)
		}
		if err != nil {
			f.log.Warn("finish rejected", zap.Error(err))
			f.emit(errorMessage(domain.ErrDeserialization.Error()))
			return false
		}
		f.emit(outboundMessage{Type: "finished", Payload: f.store(ctx, quiz)})
		return true
	default:
		f.emit(errorMessage("unsupported message type"))
	}
	return false
}

func (f *quizFlow) showSummary() {
	quiz := f.session.Quiz()
	payload, err := app.EncodeHandoff(quiz)
	if err != nil {
		f.log.Error("encode summary failed", zap.Error(err))
		f.emit(errorMessage(err.Error()))
		return
	}
	f.inSummary = true
	f.summary = payload
	f.emit(outboundMessage{Type: "summary", Payload: newSummaryView(quiz, payload)})
}

// store queues the quiz and waits a bounded time for the id. History is
// best-effort, the player finishes either way.
func (f *quizFlow) store(ctx context.Context, quiz domain.Quiz) finishedView {
	pending := f.handler.history.AppendAsync(ctx, quiz)

	waitCtx, cancel := context.WithTimeout(ctx, f.handler.appendWait)
	defer cancel()
	stored, err := pending.Wait(waitCtx)
	switch {
	case err == nil:
		return finishedView{Saved: true, ID: stored.ID}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return finishedView{Message: "quiz history is still being saved"}
	default:
		return finishedView{Message: domain.ErrStorageUnavailable.Error()}
	}
}

// ServeHistory lists every stored quiz. An empty history is a 200 with an empty array.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	quizzes, err := h.history.ListAll(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		h.log.Error("list history failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(errorPayload{Message: "history unavailable"})
		return
	}
	_ = json.NewEncoder(w).Encode(quizzes)
}
