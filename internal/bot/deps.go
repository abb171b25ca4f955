package bot

import (
	"log/slog"

	"github.com/hklin/foodbot/internal/chat"
	"github.com/hklin/foodbot/internal/classifier"
	"github.com/hklin/foodbot/internal/config"
	"github.com/hklin/foodbot/internal/line"
	"github.com/hklin/foodbot/internal/nutrition"
)

// HandlerDeps provides the capability set the dispatcher works against:
// lookup, classify, chat, and reply, plus configuration and logging.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Store      nutrition.Store
	Classifier classifier.Classifier
	Chat       chat.Client
	Messenger  line.Messenger
}
