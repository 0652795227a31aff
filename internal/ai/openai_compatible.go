package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var aiCalls = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ai_requests_total",
		Help: "Total number of outbound AI API calls.",
	},
	[]string{"kind", "outcome"},
)

func init() {
	prometheus.MustRegister(aiCalls)
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type TranscribeConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Complete issues one non-streaming chat completion against any
// OpenAI-compatible endpoint and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, cfg ChatConfig, messages []ChatMessage) (string, error) {
	if cfg.APIKey == "" {
		return "", fmt.Errorf("missing llm api key")
	}

	reqBody := map[string]interface{}{
		"model":    cfg.Model,
		"messages": messages,
		"stream":   false,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal llm request failed: %w", err)
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		aiCalls.WithLabelValues("completion", "error").Inc()
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		aiCalls.WithLabelValues("completion", "error").Inc()
		return "", fmt.Errorf("read llm response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		aiCalls.WithLabelValues("completion", "error").Inc()
		return "", fmt.Errorf("llm response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		aiCalls.WithLabelValues("completion", "error").Inc()
		return "", fmt.Errorf("parse llm json failed: %w", err)
	}
	if len(parsed.Choices) == 0 {
		aiCalls.WithLabelValues("completion", "error").Inc()
		return "", fmt.Errorf("empty llm choices")
	}

	aiCalls.WithLabelValues("completion", "ok").Inc()
	return parsed.Choices[0].Message.Content, nil
}

// Transcribe downloads the recording at audioURL and sends it to the
// transcription endpoint as a multipart upload. The filename extension
// hints the decoder at the container format.
func (c *Client) Transcribe(ctx context.Context, cfg TranscribeConfig, audioURL string) (string, error) {
	if cfg.APIKey == "" {
		return "", fmt.Errorf("missing transcription api key")
	}

	audioReq, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("build audio download request failed: %w", err)
	}
	audioResp, err := c.httpClient.Do(audioReq)
	if err != nil {
		aiCalls.WithLabelValues("transcription", "error").Inc()
		return "", fmt.Errorf("download audio failed: %w", err)
	}
	defer audioResp.Body.Close()
	if audioResp.StatusCode >= 300 {
		aiCalls.WithLabelValues("transcription", "error").Inc()
		return "", fmt.Errorf("download audio status %d", audioResp.StatusCode)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "recording.webm")
	if err != nil {
		return "", fmt.Errorf("build multipart form failed: %w", err)
	}
	if _, err := io.Copy(part, audioResp.Body); err != nil {
		return "", fmt.Errorf("copy audio into form failed: %w", err)
	}
	if err := writer.WriteField("model", cfg.Model); err != nil {
		return "", fmt.Errorf("write model field failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart form failed: %w", err)
	}

	url := strings.TrimRight(cfg.BaseURL, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("build transcription request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		aiCalls.WithLabelValues("transcription", "error").Inc()
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		aiCalls.WithLabelValues("transcription", "error").Inc()
		return "", fmt.Errorf("read transcription response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		aiCalls.WithLabelValues("transcription", "error").Inc()
		return "", fmt.Errorf("transcription status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		aiCalls.WithLabelValues("transcription", "error").Inc()
		return "", fmt.Errorf("parse transcription json failed: %w", err)
	}

	aiCalls.WithLabelValues("transcription", "ok").Inc()
	return parsed.Text, nil
}
