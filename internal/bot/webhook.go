package bot

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hklin/foodbot/internal/line"
)

// WebhookHandler exposes the platform callback endpoint and the health
// check over HTTP.
type WebhookHandler struct {
	logger     *slog.Logger
	parser     line.Parser
	dispatcher *Dispatcher
}

// NewWebhookHandler creates the webhook handler.
func NewWebhookHandler(logger *slog.Logger, parser line.Parser, dispatcher *Dispatcher) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{
		logger:     logger.With("component", "webhook"),
		parser:     parser,
		dispatcher: dispatcher,
	}
}

// Register registers the webhook routes.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST("/callback", h.HandleCallback)
	e.GET("/healthz", h.HandleHealth)
}

// HandleCallback verifies and parses a webhook delivery, then processes its
// events sequentially. Signature or parse failures return 400 and no reply
// is sent; once parsing succeeds the platform always gets 200 "OK", since
// per-event failures are contained by the dispatcher.
func (h *WebhookHandler) HandleCallback(c echo.Context) error {
	req := c.Request()

	events, err := h.parser.Parse(req)
	if err != nil {
		if errors.Is(err, line.ErrInvalidSignature) {
			h.logger.WarnContext(req.Context(), "Rejected webhook with invalid signature")
			return echo.NewHTTPError(http.StatusBadRequest, "invalid signature")
		}
		h.logger.WarnContext(req.Context(), "Rejected unparseable webhook", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.logger.DebugContext(req.Context(), "Webhook delivery accepted", "events", len(events))
	h.dispatcher.Dispatch(req.Context(), events)

	return c.String(http.StatusOK, "OK")
}

// HandleHealth reports liveness. No auth, no side effects.
func (h *WebhookHandler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
