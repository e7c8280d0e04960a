package handler

import (
	"encoding/xml"
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"trader-bot/internal/usecase"
)

// twimlResponse is the messaging gateway's markup reply.
type twimlResponse struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message"`
}

// webhook always answers 200 with TwiML, whatever happens downstream.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("panic while handling webhook",
				zap.Any("panic", rec),
				zap.String("requestID", chimiddleware.GetReqID(r.Context())),
				zap.ByteString("stack", debug.Stack()),
			)
			h.writeTwiML(w, []string{usecase.ApologyText})
		}
	}()

	// A malformed form yields empty fields, which route as an unregistered
	// sender.
	_ = r.ParseForm()
	out := h.replies.Reply(r.Context(), usecase.ReplyInput{
		Body: r.PostForm.Get("Body"),
		From: r.PostForm.Get("From"),
	})
	h.writeTwiML(w, out.Messages)
}

func (h *Handler) writeTwiML(w http.ResponseWriter, messages []string) {
	body, err := xml.Marshal(twimlResponse{Messages: messages})
	if err != nil {
		h.logger.Error("encode twiml", zap.Error(err))
		body = []byte("<Response></Response>")
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(body)
}
