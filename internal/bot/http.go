package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// WebhookPath is where Telegram delivers updates in webhook mode
const WebhookPath = "/telegram-webhook"

// HTTPServer serves health checks and, in webhook mode, Telegram updates
type HTTPServer struct {
	bot         *Bot
	ctx         context.Context
	webhookMode bool
}

// NewHTTPServer creates the HTTP handlers. Updates received by the webhook
// are handled with ctx, so they stop when it is cancelled.
func NewHTTPServer(ctx context.Context, bot *Bot, webhookMode bool) *HTTPServer {
	return &HTTPServer{
		bot:         bot,
		ctx:         ctx,
		webhookMode: webhookMode,
	}
}

// RegisterRoutes registers the bot routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/", hs.handleIndex)
	mux.HandleFunc(WebhookPath, hs.handleWebhook)
}

func (hs *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (hs *HTTPServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	mode := "polling"
	if hs.webhookMode {
		mode = "webhook"
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Remnawave admin bot is running (mode: %s)", mode)
}

// handleWebhook acknowledges the update at once and handles it in the
// background. Updates from one chat are still serialized by the session lock.
func (hs *HTTPServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if !hs.webhookMode {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		hs.bot.logger.Warn("Failed to decode webhook update", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	hs.bot.dispatch(hs.ctx, update)

	w.WriteHeader(http.StatusOK)
}
