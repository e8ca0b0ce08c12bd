package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

const (
	actionStart      = "start"
	actionSelect     = "select"
	actionGoTo       = "goto"
	actionSubmit     = "submit"
	actionRequestOTP = "requestOtp"
	actionVerifyOTP  = "verifyOtp"
	actionSubmitLead = "submitLead"
)

type WSHandler struct {
	service  *app.QuizService
	loc      *time.Location
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, loc *time.Location) *WSHandler {
	return &WSHandler{
		service: service,
		loc:     loc,
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

type selectPayload struct {
	OptionIndex int `json:"optionIndex"`
}

type gotoPayload struct {
	QuestionIndex int `json:"questionIndex"`
}

type requestOTPPayload struct {
	Mobile string `json:"mobile"`
}

type verifyOTPPayload struct {
	Code string `json:"code"`
}

type submitLeadPayload struct {
	Name string `json:"name"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type startedPayload struct {
	VisitID string          `json:"visitId"`
	Quiz    quizView        `json:"quiz"`
	Current currentQuestion `json:"current"`
	State   string          `json:"state"`
}

type feedbackPayload struct {
	QuestionIndex int    `json:"questionIndex"`
	Selected      int    `json:"selected"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	AllAnswered   bool   `json:"allAnswered"`
}

type submittedPayload struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

type otpSentPayload struct {
	Mobile          string `json:"mobile"`
	ValidForSeconds int    `json:"validForSeconds"`
}

type otpVerifiedPayload struct {
	Verified bool `json:"verified"`
}

type leadSavedPayload struct {
	LeadID string `json:"leadId"`
	Score  int    `json:"score"`
	Total  int    `json:"total"`
}

// statusPayload reports a failed action inline; Action names the message that failed.
type statusPayload struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// ServeWS runs one visit over a websocket. Query: date=YYYY-MM-DD (default today) and
// visitId to resume a live visit. Every action of the visit is read on one loop;
// requestOtp and submitLead run in the background and are guarded by the visit.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	visitID := r.URL.Query().Get("visitId")
	day, err := parseDay(r.URL.Query().Get("date"), h.loc)
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	var visit *app.Visit
	if visitID != "" {
		visit, err = h.service.Resume(ctx, visitID)
	} else {
		visit, err = h.service.Start(ctx, day)
	}
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[statusPayload]{Type: "status", Payload: statusPayload{
			Action:  actionStart,
			Message: statusMessage(actionStart, err),
		}})
		return
	}
	visitID = visit.ID()
	defer h.service.Leave(ctx, visitID)

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	emit := func(typ string, payload any) {
		select {
		case send <- outboundMessage[any]{Type: typ, Payload: payload}:
		case <-writerDone:
		}
	}
	fail := func(action string, err error) {
		if !errors.Is(err, domain.ErrOperationInProgress) {
			log.Printf("visit %s: %s failed: %v", visitID, action, err)
		}
		emit("status", statusPayload{Action: action, Message: statusMessage(action, err)})
	}

	var background sync.WaitGroup

	emit("quiz", startedPayload{
		VisitID: visitID,
		Quiz:    toQuizView(visit.Quiz(), h.loc),
		Current: toCurrentQuestion(visit.Current()),
		State:   visit.State().String(),
	})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case actionSelect:
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("status", statusPayload{Action: actionSelect, Message: "invalid select payload"})
				continue
			}
			fb, err := h.service.SelectOption(ctx, visitID, payload.OptionIndex)
			if err != nil {
				fail(actionSelect, err)
				continue
			}
			emit("feedback", feedbackPayload{
				QuestionIndex: fb.QuestionIndex,
				Selected:      fb.Selected,
				Correct:       fb.Correct,
				CorrectAnswer: fb.CorrectAnswer,
				AllAnswered:   fb.AllAnswered,
			})
		case actionGoTo:
			var payload gotoPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("status", statusPayload{Action: actionGoTo, Message: "invalid goto payload"})
				continue
			}
			view, err := h.service.GoTo(ctx, visitID, payload.QuestionIndex)
			if err != nil {
				fail(actionGoTo, err)
				continue
			}
			emit("question", toCurrentQuestion(view))
		case actionSubmit:
			score, err := h.service.Submit(ctx, visitID)
			if err != nil {
				fail(actionSubmit, err)
				continue
			}
			emit("submitted", submittedPayload{Score: score, Total: len(visit.Quiz().Questions)})
		case actionRequestOTP:
			var payload requestOTPPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("status", statusPayload{Action: actionRequestOTP, Message: "invalid requestOtp payload"})
				continue
			}
			background.Add(1)
			go func() {
				defer background.Done()
				req, err := h.service.RequestOTP(ctx, visitID, payload.Mobile)
				if err != nil {
					fail(actionRequestOTP, err)
					return
				}
				emit("otpSent", otpSentPayload{
					Mobile:          maskMobile(req.MobileNumber),
					ValidForSeconds: int(h.service.OTPValidity().Seconds()),
				})
			}()
		case actionVerifyOTP:
			var payload verifyOTPPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("status", statusPayload{Action: actionVerifyOTP, Message: "invalid verifyOtp payload"})
				continue
			}
			ok, err := h.service.VerifyOTP(ctx, visitID, payload.Code)
			if err != nil {
				fail(actionVerifyOTP, err)
				continue
			}
			if !ok {
				emit("status", statusPayload{Action: actionVerifyOTP, Message: "Invalid or expired OTP."})
				continue
			}
			emit("otpVerified", otpVerifiedPayload{Verified: true})
		case actionSubmitLead:
			var payload submitLeadPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emit("status", statusPayload{Action: actionSubmitLead, Message: "invalid submitLead payload"})
				continue
			}
			background.Add(1)
			go func() {
				defer background.Done()
				lead, err := h.service.SubmitLead(ctx, visitID, payload.Name)
				if err != nil {
					fail(actionSubmitLead, err)
					return
				}
				emit("leadSaved", leadSavedPayload{LeadID: lead.ID, Score: lead.Score, Total: lead.TotalQuestions})
			}()
		default:
			emit("status", statusPayload{Action: inbound.Type, Message: "unsupported message type"})
		}
	}

	background.Wait()
	close(send)
	<-writerDone
}

// maskMobile keeps the last four digits.
func maskMobile(mobile string) string {
	if len(mobile) <= 4 {
		return mobile
	}
	masked := make([]byte, len(mobile))
	for i := range masked {
		if i < len(mobile)-4 {
			masked[i] = '*'
		} else {
			masked[i] = mobile[i]
		}
	}
	return string(masked)
}
