package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hklin/foodbot/internal/config"
)

type spoonacularClassifier struct {
	apiKey  string
	baseURL string
	client  *http.Client
	labels  LabelMap
	logger  *slog.Logger
}

type spoonacularResponse struct {
	Status     string `json:"status"`
	Classified []struct {
		Name        string  `json:"name"`
		Probability float64 `json:"probability"`
	} `json:"classified"`
}

func newSpoonacularClassifier(cfg config.ClassifierConfig, labels LabelMap, log *slog.Logger) Classifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &spoonacularClassifier{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
		labels:  labels,
		logger:  log.With("component", "spoonacular_classifier"),
	}
}

// Classify uploads the image as multipart form data and returns the
// highest-probability label. Any transport, HTTP, or parse failure degrades
// to an empty label.
func (c *spoonacularClassifier) Classify(ctx context.Context, imagePath string) string {
	label, err := c.classify(ctx, imagePath)
	if err != nil {
		c.logger.WarnContext(ctx, "Classification failed, degrading to unknown food", "error", err, "image_path", imagePath)
		return ""
	}
	return c.labels.Display(label)
}

func (c *spoonacularClassifier) classify(ctx context.Context, imagePath string) (string, error) {
	imgData, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image file: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create multipart field: %w", err)
	}
	if _, err := part.Write(imgData); err != nil {
		return "", fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	reqURL := c.baseURL + "?" + url.Values{"apiKey": {c.apiKey}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create classification request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("classification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("unexpected status %d from classifier API: %s", resp.StatusCode, string(detail))
	}

	var parsed spoonacularResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode classifier response: %w", err)
	}
	if len(parsed.Classified) == 0 {
		return "", fmt.Errorf("classifier returned no candidates (status %q)", parsed.Status)
	}

	top := parsed.Classified[0]
	for _, candidate := range parsed.Classified[1:] {
		if candidate.Probability > top.Probability {
			top = candidate
		}
	}

	return strings.ToLower(top.Name), nil
}
