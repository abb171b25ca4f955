// Package bot implements the webhook dispatcher, HTTP surface, scheduled
// tasks, and lifecycle orchestration for the foodbot service.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hklin/foodbot/internal/line"
	"github.com/hklin/foodbot/internal/nutrition"
)

const (
	mediaDownloadTimeout = 30 * time.Second
	lookupTimeout        = 5 * time.Second
	replySendTimeout     = 10 * time.Second
)

// Dispatcher routes inbound events to a response strategy and sends exactly
// one reply per event.
type Dispatcher struct {
	deps HandlerDeps
	log  *slog.Logger
}

// NewDispatcher creates a dispatcher over the given dependencies.
func NewDispatcher(deps HandlerDeps) *Dispatcher {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		deps: deps,
		log:  logger.With("component", "dispatcher"),
	}
}

// Dispatch processes the events of one webhook delivery sequentially, in
// arrival order. A failure while handling one event never aborts the rest of
// the batch.
func (d *Dispatcher) Dispatch(ctx context.Context, events []line.Event) {
	for i, ev := range events {
		d.dispatchOne(ctx, i, ev)
	}
}

func (d *Dispatcher) dispatchOne(ctx context.Context, index int, ev line.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.ErrorContext(ctx, "Panic while handling event, continuing batch",
				"event_index", index, "event_kind", ev.Kind, "panic", r)
		}
	}()

	switch ev.Kind {
	case line.EventText:
		d.handleText(ctx, ev)
	case line.EventImage:
		d.handleImage(ctx, ev)
	default:
		d.log.DebugContext(ctx, "Ignoring event with unknown kind", "event_kind", ev.Kind)
	}
}

// handleText answers a text message with a nutrition fact card when the text
// resolves in the lookup table, and with the conversational fallback
// otherwise. A chat provider failure degrades to the apology message.
func (d *Dispatcher) handleText(ctx context.Context, ev line.Event) {
	food := d.lookup(ctx, ev.Text)
	if food != nil {
		d.sendReply(ctx, ev.ReplyToken, d.composeFactCard(food))
		return
	}

	chatCtx, cancel := context.WithTimeout(ctx, d.deps.Config.AI.Timeout)
	defer cancel()

	reply, err := d.deps.Chat.Reply(chatCtx, ev.Text)
	if err != nil {
		d.log.WarnContext(ctx, "Chat fallback failed, sending apology", "error", err)
		reply = d.deps.Config.Messages.ChatApology
	}
	d.sendReply(ctx, ev.ReplyToken, reply)
}

// handleImage downloads the image to a temporary file, classifies it, and
// answers with a fact card, an unknown-food message, or a degraded error
// message. The temporary file is removed on every exit path.
func (d *Dispatcher) handleImage(ctx context.Context, ev line.Event) {
	imagePath, err := d.downloadMedia(ctx, ev.MessageID)
	if err != nil {
		d.log.ErrorContext(ctx, "Media download failed", "error", err, "message_id", ev.MessageID)
		d.sendReply(ctx, ev.ReplyToken, d.deps.Config.Messages.ImageError)
		return
	}
	defer func() {
		if removeErr := os.Remove(imagePath); removeErr != nil {
			d.log.WarnContext(ctx, "Failed to remove temporary image", "error", removeErr, "path", imagePath)
		}
	}()

	label := d.deps.Classifier.Classify(ctx, imagePath)
	if label == "" {
		d.sendReply(ctx, ev.ReplyToken, d.deps.Config.Messages.UnreadableImage)
		return
	}

	if food := d.lookup(ctx, label); food != nil {
		d.sendReply(ctx, ev.ReplyToken, d.composeFactCard(food))
		return
	}

	d.sendReply(ctx, ev.ReplyToken, fmt.Sprintf(d.deps.Config.Messages.UnknownFood, label))
}

// lookup resolves a query in the nutrition table. Infrastructure errors are
// logged and treated as a miss so the event still gets a reply.
func (d *Dispatcher) lookup(ctx context.Context, query string) *nutrition.Food {
	lookupCtx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	food, err := d.deps.Store.Lookup(lookupCtx, query)
	if err != nil {
		d.log.ErrorContext(ctx, "Nutrition lookup failed, treating as miss", "error", err, "query", query)
		return nil
	}
	return food
}

// downloadMedia streams the message content into a temporary file and
// returns its path. The caller owns removal of the file.
func (d *Dispatcher) downloadMedia(ctx context.Context, messageID string) (string, error) {
	downloadCtx, cancel := context.WithTimeout(ctx, mediaDownloadTimeout)
	defer cancel()

	content, err := d.deps.Messenger.DownloadContent(downloadCtx, messageID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch media content: %w", err)
	}
	defer content.Close()

	tmp, err := os.CreateTemp("", "foodbot-image-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write media content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close temporary file: %w", err)
	}

	return tmp.Name(), nil
}

// sendReply performs the single outbound reply call for an event. Delivery
// failures are logged only: the reply token is already consumed or expired
// and a retry cannot succeed.
func (d *Dispatcher) sendReply(ctx context.Context, replyToken, text string) {
	sendCtx, cancel := context.WithTimeout(ctx, replySendTimeout)
	defer cancel()

	if err := d.deps.Messenger.Reply(sendCtx, replyToken, text); err != nil {
		d.log.ErrorContext(ctx, "Reply delivery failed", "error", err)
		return
	}
	d.log.InfoContext(ctx, "Sent reply", "text_len", len(text))
}

func (d *Dispatcher) composeFactCard(food *nutrition.Food) string {
	return fmt.Sprintf(d.deps.Config.Messages.FoodFact,
		food.Name, food.Kcal, food.Protein, food.Fat, food.Advice)
}
