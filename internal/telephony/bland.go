package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"retail-crm/internal/apperr"
	"retail-crm/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxErrorBody = 64 << 10

// BlandClient talks to the Bland voice API.
type BlandClient struct {
	baseURL       string
	apiKey        string
	webhookURL    string
	voice         string
	task          string
	firstSentence string

	http *http.Client
	log  *slog.Logger
}

var _ Provider = (*BlandClient)(nil)

// NewBlandClient builds a client from validated config. hc may be nil, in
// which case a traced client with the configured timeout is used.
func NewBlandClient(cfg config.BlandConfig, hc *http.Client, log *slog.Logger) (*BlandClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("bland: api key is required")
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("bland: base url is required")
	}
	if hc == nil {
		hc = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if log == nil {
		log = slog.Default()
	}
	return &BlandClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		webhookURL:    cfg.WebhookURL,
		voice:         cfg.Voice,
		task:          cfg.Task,
		firstSentence: cfg.FirstSentence,
		http:          hc,
		log:           log.With("component", "bland"),
	}, nil
}

type placeCallBody struct {
	PhoneNumber     string         `json:"phone_number"`
	PathwayID       string         `json:"pathway_id,omitempty"`
	Task            string         `json:"task,omitempty"`
	Voice           string         `json:"voice"`
	FirstSentence   string         `json:"first_sentence,omitempty"`
	WaitForGreeting bool           `json:"wait_for_greeting"`
	Record          bool           `json:"record"`
	Metadata        map[string]any `json:"metadata"`
	Webhook         string         `json:"webhook,omitempty"`
}

func (c *BlandClient) PlaceCall(ctx context.Context, req CallRequest) (CallResponse, error) {
	if strings.TrimSpace(req.Phone) == "" {
		return CallResponse{}, apperr.Invalid("phone number is required")
	}
	body := placeCallBody{
		PhoneNumber:     req.Phone,
		PathwayID:       req.PathwayID,
		Task:            firstNonEmpty(req.Task, c.task),
		Voice:           firstNonEmpty(req.Voice, c.voice),
		FirstSentence:   firstNonEmpty(req.FirstSentence, c.firstSentence),
		WaitForGreeting: true,
		Record:          true,
		Metadata:        req.Metadata,
		Webhook:         firstNonEmpty(req.Webhook, c.webhookURL),
	}
	if body.Metadata == nil {
		body.Metadata = map[string]any{}
	}

	var out CallResponse
	if err := c.do(ctx, http.MethodPost, "/calls", body, &out); err != nil {
		return CallResponse{}, err
	}
	if out.CallID == "" {
		return CallResponse{}, apperr.Upstream(errors.New("bland: response missing call_id"))
	}
	if out.Status == "" {
		out.Status = "queued"
	}
	c.log.Info("call placed", "bland_call_id", out.CallID, "status", out.Status)
	return out, nil
}

type callDetailsBody struct {
	Status                 string          `json:"status"`
	Transcripts            json.RawMessage `json:"transcripts"`
	Transcript             json.RawMessage `json:"transcript"`
	ConcatenatedTranscript string          `json:"concatenated_transcript"`
	RecordingURL           *string         `json:"recording_url"`
	Summary                *string         `json:"summary"`
	CallLength             *float64        `json:"call_length"`
	Completed              bool            `json:"completed"`
	EndAt                  string          `json:"end_at"`
	EndTime                string          `json:"end_time"`
}

func (c *BlandClient) GetCallDetails(ctx context.Context, providerCallID string) (CallDetails, error) {
	if providerCallID == "" {
		return CallDetails{}, apperr.Invalid("provider call id is required")
	}
	var body callDetailsBody
	if err := c.do(ctx, http.MethodGet, "/calls/"+url.PathEscape(providerCallID), nil, &body); err != nil {
		return CallDetails{}, err
	}

	d := CallDetails{
		Status:                 body.Status,
		ConcatenatedTranscript: body.ConcatenatedTranscript,
		RecordingURL:           nonEmpty(body.RecordingURL),
		Summary:                nonEmpty(body.Summary),
		CallLength:             body.CallLength,
		Completed:              body.Completed,
	}
	switch {
	case !isJSONNull(body.Transcripts):
		d.Transcript = body.Transcripts
	case !isJSONNull(body.Transcript):
		d.Transcript = body.Transcript
	}
	if t, ok := ParseTimestamp(firstNonEmpty(body.EndAt, body.EndTime)); ok {
		d.EndTime = &t
	}
	return d, nil
}

func (c *BlandClient) EndCall(ctx context.Context, providerCallID string) error {
	if providerCallID == "" {
		return apperr.Invalid("provider call id is required")
	}
	if err := c.do(ctx, http.MethodPost, "/calls/"+url.PathEscape(providerCallID)+"/stop", nil, nil); err != nil {
		return err
	}
	c.log.Info("call stopped", "bland_call_id", providerCallID)
	return nil
}

type batchCallBody struct {
	Calls []placeCallBody `json:"calls"`
}

func (c *BlandClient) PlaceBatchCalls(ctx context.Context, entries []BatchEntry, pathwayID, task string) (BatchResponse, error) {
	if len(entries) == 0 {
		return nil, apperr.Invalid("batch has no entries")
	}
	body := batchCallBody{Calls: make([]placeCallBody, 0, len(entries))}
	for _, e := range entries {
		meta := e.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		body.Calls = append(body.Calls, placeCallBody{
			PhoneNumber:     e.Phone,
			PathwayID:       pathwayID,
			Task:            firstNonEmpty(task, c.task),
			Voice:           c.voice,
			WaitForGreeting: true,
			Record:          true,
			Metadata:        meta,
			Webhook:         c.webhookURL,
		})
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/calls/batch", body, &raw); err != nil {
		return nil, err
	}
	c.log.Info("batch placed", "calls", len(entries))
	return BatchResponse(raw), nil
}

// do sends one request. Non-2xx replies become apperr.ErrUpstream carrying
// the provider's message; transport failures are upstream failures too.
func (c *BlandClient) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("bland: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("bland: build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("bland request failed", "method", method, "path", path, "err", err)
		return apperr.Upstream(fmt.Errorf("bland %s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	c.log.Debug("bland response", "method", method, "path", path, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := providerMessage(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Error("bland api error", "method", method, "path", path, "status", resp.StatusCode, "message", msg)
		return apperr.Upstream(fmt.Errorf("bland %s %s: status %d: %s", method, path, resp.StatusCode, msg))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Upstream(fmt.Errorf("bland %s %s: decode response: %w", method, path, err))
	}
	return nil
}

func providerMessage(r io.Reader) string {
	raw, err := io.ReadAll(r)
	if err != nil || len(raw) == 0 {
		return "no error message"
	}
	var body struct {
		Message string   `json:"message"`
		Error   string   `json:"error"`
		Errors  []string `json:"errors"`
	}
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Message != "":
			return body.Message
		case body.Error != "":
			return body.Error
		case len(body.Errors) > 0:
			return strings.Join(body.Errors, "; ")
		}
	}
	return strings.TrimSpace(string(raw))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func isJSONNull(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}
