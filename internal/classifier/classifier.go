// Package classifier implements the food image classifier integration with
// two swappable backends: the Spoonacular classification API and a hosted
// Gemini vision model. Classification is fail-soft by contract: a backend
// never returns an error, it returns an empty label.
package classifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hklin/foodbot/internal/config"
)

// Classifier labels the food in an image file.
type Classifier interface {
	// Classify returns the display label for the food in the image at
	// imagePath, after label mapping. An empty string means the image could
	// not be classified; callers must treat that as "unknown food", never as
	// a failure to report.
	Classify(ctx context.Context, imagePath string) string
}

// New selects and builds the classifier backend named in the configuration.
// Exactly one backend is active per deployment.
func New(ctx context.Context, cfg config.ClassifierConfig, labels LabelMap, log *slog.Logger) (Classifier, error) {
	if log == nil {
		log = slog.Default()
	}

	switch cfg.Backend {
	case "spoonacular":
		return newSpoonacularClassifier(cfg, labels, log), nil
	case "gemini":
		return newGeminiClassifier(ctx, cfg, labels, log)
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", cfg.Backend)
	}
}
