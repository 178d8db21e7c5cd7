package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"CitationWatch/internal/config"
	"CitationWatch/internal/ports"
)

// Summarizer implements ports.Summarizer backed by the Gemini generateContent API.
type Summarizer struct {
	endpoint   string
	model      string
	apiKey     string
	prompt     string
	httpClient *http.Client
}

var _ ports.Summarizer = (*Summarizer)(nil)

// NewSummarizer builds a client from configuration.
func NewSummarizer(cfg config.GeminiConfig) *Summarizer {
	return &Summarizer{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		prompt:   cfg.Prompt,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Summarize sends the abstract to Gemini and returns the generated summary.
func (s *Summarizer) Summarize(ctx context.Context, abstract string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("gemini summarizer is nil")
	}
	if s.apiKey == "" || s.endpoint == "" || s.model == "" {
		return "", fmt.Errorf("gemini summarizer misconfigured")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{
			{Parts: []part{{Text: safePrompt(s.prompt) + "\n\n" + abstract}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal gemini payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimSuffix(s.endpoint, "/"), s.model, url.QueryEscape(s.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarize abstract: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("gemini error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	for _, candidate := range result.Candidates {
		for _, p := range candidate.Content.Parts {
			if text := strings.TrimSpace(p.Text); text != "" {
				return text, nil
			}
		}
	}

	return "", fmt.Errorf("gemini returned no candidates")
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "Summarize the following biomedical abstract in two or three sentences."
	}
	return prompt
}
