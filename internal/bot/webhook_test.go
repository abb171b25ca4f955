package bot

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hklin/foodbot/internal/line"
	"github.com/hklin/foodbot/internal/nutrition"
)

type fakeParser struct {
	events []line.Event
	err    error
}

func (p *fakeParser) Parse(req *http.Request) ([]line.Event, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.events, nil
}

func newTestWebhook(parser line.Parser, messenger *fakeMessenger, store nutrition.Store) *WebhookHandler {
	deps := testDeps(store, &fakeClassifier{}, &fakeChat{reply: "chat output"}, messenger)
	return NewWebhookHandler(deps.Logger, parser, NewDispatcher(deps))
}

func performCallback(t *testing.T, h *WebhookHandler) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(`{"events":[]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	return rec, h.HandleCallback(c)
}

func TestHandleCallbackInvalidSignature(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	h := newTestWebhook(&fakeParser{err: line.ErrInvalidSignature}, messenger, &fakeStore{})

	_, err := performCallback(t, h)

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", he.Code, http.StatusBadRequest)
	}
	if len(messenger.replies) != 0 {
		t.Errorf("no reply may be sent for a forged delivery, got %d", len(messenger.replies))
	}
}

func TestHandleCallbackParseError(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	h := newTestWebhook(&fakeParser{err: errors.New("malformed payload")}, messenger, &fakeStore{})

	_, err := performCallback(t, h)

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", he.Code, http.StatusBadRequest)
	}
	if len(messenger.replies) != 0 {
		t.Errorf("no reply may be sent for an unparseable delivery, got %d", len(messenger.replies))
	}
}

func TestHandleCallbackDispatchesEvents(t *testing.T) {
	t.Parallel()

	parser := &fakeParser{events: []line.Event{
		{Kind: line.EventText, ReplyToken: "tok-1", Text: "叉燒飯"},
	}}
	messenger := &fakeMessenger{}
	store := &fakeStore{foods: map[string]*nutrition.Food{"叉燒飯": charsiuRice()}}
	h := newTestWebhook(parser, messenger, store)

	rec, err := performCallback(t, h)
	if err != nil {
		t.Fatalf("HandleCallback returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", rec.Body.String())
	}
	if len(messenger.replies) != 1 || messenger.replies[0].token != "tok-1" {
		t.Errorf("expected one reply to tok-1, got %v", messenger.replies)
	}
}

func TestHandleCallbackEmptyDelivery(t *testing.T) {
	t.Parallel()

	messenger := &fakeMessenger{}
	h := newTestWebhook(&fakeParser{}, messenger, &fakeStore{})

	rec, err := performCallback(t, h)
	if err != nil {
		t.Fatalf("HandleCallback returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if len(messenger.replies) != 0 {
		t.Errorf("expected no replies for an empty delivery, got %d", len(messenger.replies))
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	h := newTestWebhook(&fakeParser{}, &fakeMessenger{}, &fakeStore{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.HandleHealth(c); err != nil {
		t.Fatalf("HandleHealth returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"ok":true}` {
		t.Errorf("body = %q, want {\"ok\":true}", got)
	}
}
