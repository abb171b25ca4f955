package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/hklin/foodbot/internal/config"
)

// labelInstruction pins the vision model to single-label output so the
// answer can feed the nutrition lookup directly.
const labelInstruction = "You are a food image classifier. Name the single " +
	"dish shown in the photo. Answer with only the dish name in lowercase " +
	"English, words joined by underscores (for example: fried_rice). If no " +
	"food is visible, answer exactly: unknown"

type geminiClassifier struct {
	genaiClient *genai.Client
	modelName   string
	labels      LabelMap
	logger      *slog.Logger
}

func newGeminiClassifier(ctx context.Context, cfg config.ClassifierConfig, labels LabelMap, log *slog.Logger) (Classifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini classifier API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiClassifier{
		genaiClient: gi,
		modelName:   cfg.Model,
		labels:      labels,
		logger:      log.With("component", "gemini_classifier"),
	}, nil
}

// Classify runs one inference call for the image and returns the mapped
// label. Any API or parse failure degrades to an empty label.
func (c *geminiClassifier) Classify(ctx context.Context, imagePath string) string {
	label, err := c.classify(ctx, imagePath)
	if err != nil {
		c.logger.WarnContext(ctx, "Classification failed, degrading to unknown food", "error", err, "image_path", imagePath)
		return ""
	}
	if label == "" || label == "unknown" {
		return ""
	}
	return c.labels.Display(label)
}

func (c *geminiClassifier) classify(ctx context.Context, imagePath string) (string, error) {
	imgData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image file: %w", err)
	}
	if len(imgData) == 0 {
		return "", fmt.Errorf("image file %s is empty", imagePath)
	}

	mimeType := http.DetectContentType(imgData)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(imgData, mimeType),
			{Text: "What dish is this?"},
		}, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: labelInstruction}}},
	}

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini inference failed: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		return "", fmt.Errorf("gemini request blocked: %v", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no content")
	}

	return normalizeLabel(resp.Text()), nil
}

// normalizeLabel collapses a model answer to a bare classifier label: first
// line only, lowercased, trimmed of punctuation wrappers, spaces joined by
// underscores.
func normalizeLabel(answer string) string {
	label := strings.TrimSpace(answer)
	if i := strings.IndexByte(label, '\n'); i >= 0 {
		label = label[:i]
	}
	label = strings.ToLower(strings.TrimSpace(label))
	label = strings.Trim(label, `"'.`)
	label = strings.Join(strings.Fields(label), "_")
	return label
}
