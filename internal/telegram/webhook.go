package telegram

import (
	"bytes"
	"encoding/json"
	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
	"io"
	"net/http"
)

const maxUpdateSize = 1 << 20

// Webhook receives updates pushed by telegram on /webhook/{token} and hands
// them to the same loop that serves long polling.
type Webhook struct {
	token   string
	updates chan tgbotapi.Update
}

type webhookReply struct {
	Message string `json:"message"`
}

func NewWebhook(token string, buffer int) *Webhook {
	return &Webhook{
		token:   token,
		updates: make(chan tgbotapi.Update, buffer),
	}
}

func (wh *Webhook) Updates() tgbotapi.UpdatesChannel {
	return wh.updates
}

// Close stops the update stream. No request may be served afterwards.
func (wh *Webhook) Close() {
	close(wh.updates)
}

// ServeHTTP must be mounted on a chi route carrying the {token} parameter.
// Every outcome is answered with 200 so telegram does not redeliver.
func (wh *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "token") != wh.token {
		log.Warn("webhook called with invalid token in path")
		writeJSON(w, "Invalid token")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateSize))
	if err != nil {
		log.Errorf("failed to read webhook body: %v", err)
		writeJSON(w, "Error processing update")
		return
	}

	var fields map[string]json.RawMessage
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &fields) != nil || len(fields) == 0 {
		writeJSON(w, "No update received")
		return
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		log.Errorf("failed to decode update: %v", err)
		writeJSON(w, "Error processing update")
		return
	}

	select {
	case wh.updates <- update:
		writeJSON(w, "OK")
	case <-r.Context().Done():
		writeJSON(w, "Error processing update")
	}
}

func writeJSON(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(webhookReply{Message: message}); err != nil {
		log.Errorf("failed to write JSON response: %v", err)
	}
}
