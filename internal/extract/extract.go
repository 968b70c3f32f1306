// Package extract turns unstructured bank statement text into candidate
// ledger records by asking an OpenAI-compatible chat completions API.
//
// The assistant's output is never trusted: callers pass the returned
// candidates through core.ValidateCandidates before storing anything.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"housebudget/internal/core"
	"housebudget/internal/loader"
)

const systemPrompt = `You are a helpful assistant that extracts financial transactions from raw bank statements.
Each transaction should be an object with:
- bank_name (string)
- month (YYYY-MM)
- receiver (string)
- category (string, guess if not present)
- amount (number, negative for expenses, positive for income)

Output a JSON array of objects. Only valid structured data, no explanation.`

const (
	DefaultModel       = "gpt-4"
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultMaxChars    = 4000
	DefaultTemperature = 0.2
)

var (
	ErrNoAPIKey   = errors.New("extraction assistant API key not configured")
	ErrEmptyReply = errors.New("assistant returned no choices")
	ErrUpstream   = errors.New("assistant request failed")
	ErrNotAList   = errors.New("assistant output is not a list of records")
)

// Extractor produces candidate records from statement text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]core.Candidate, error)
}

// Client talks to a chat completions endpoint.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxChars    int
	temperature float64
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithModel(m string) Option {
	return func(c *Client) {
		if m != "" {
			c.model = m
		}
	}
}

// WithMaxChars sets how many characters of input are sent.
func WithMaxChars(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxChars = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
		model:       DefaultModel,
		maxChars:    DefaultMaxChars,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Extractor = (*Client)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Extract sends the (truncated) text and parses the reply into candidates.
// Blank input short-circuits without a request.
func (c *Client) Extract(ctx context.Context, text string) ([]core.Candidate, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	text = Truncate(strings.TrimSpace(text), c.maxChars)
	if text == "" {
		return nil, nil
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, ErrEmptyReply
	}
	return ParseReply(out.Choices[0].Message.Content)
}

// ParseReply decodes an assistant reply. Markdown code fences around the
// payload are tolerated.
func ParseReply(content string) ([]core.Candidate, error) {
	content = stripFences(strings.TrimSpace(content))
	if content == "" {
		return nil, nil
	}
	if !strings.HasPrefix(content, "[") {
		return nil, ErrNotAList
	}
	var candidates []core.Candidate
	dec := json.NewDecoder(strings.NewReader(content))
	dec.UseNumber()
	if err := dec.Decode(&candidates); err == nil {
		return candidates, nil
	}
	// Single-quoted, literal-style lists are still valid YAML flow sequences.
	candidates, err := loader.ParseCandidates([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAList, err)
	}
	return candidates, nil
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Truncate keeps at most n characters of s without splitting a rune.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
