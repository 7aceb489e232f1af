package catalog

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
	"strconv"
	"strings"
	"time"

	"taglift/internal/logging"
)

const (
	nextPendingPath    = "/extracao/proxima"
	saveOutcomePath    = "/extracao/salvar"
	statsPath          = "/extracao/stats"
	cleanStatementPath = "/extracao/limpar-enunciado"
)

// ClientOption customises Client construction.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for service calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// Client talks to the local extraction service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds an extraction service client.
func NewClient(baseURL string, logger *slog.Logger, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("catalog base URL is empty")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With(logging.String(logging.FieldComponent, "catalog")),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return c, nil
}

// NextPending returns the next question awaiting extraction for a category,
// or nil when the category has none left.
func (c *Client) NextPending(ctx context.Context, categoryID, yearID int64) (*Question, error) {
	query := url.Values{}
	query.Set("disciplina_id", strconv.FormatInt(categoryID, 10))
	query.Set("ano_id", strconv.FormatInt(yearID, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+nextPendingPath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("next pending: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("next pending: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("next pending: service returned HTTP %d", resp.StatusCode)
	}

	var question Question
	if err := json.NewDecoder(resp.Body).Decode(&question); err != nil {
		return nil, fmt.Errorf("next pending: decode response: %w", err)
	}
	return &question, nil
}

type saveResponse struct {
	Success bool `json:"success"`
}

// SaveOutcome reports an extraction result. The service treats the empty
// classification list as "searched, nothing found", so nil slices are sent
// as empty arrays rather than omitted.
func (c *Client) SaveOutcome(ctx context.Context, outcome Outcome) error {
	if outcome.Paths == nil {
		outcome.Paths = []string{}
	}
	if outcome.LowConfidencePaths == nil {
		outcome.LowConfidencePaths = []string{}
	}

	var resp saveResponse
	if err := c.postJSON(ctx, saveOutcomePath, outcome, &resp, "save outcome"); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("save outcome: service rejected question %d", outcome.QuestionID)
	}
	return nil
}

// Stats fetches extraction progress counters.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statsPath, nil)
	if err != nil {
		return nil, fmt.Errorf("stats: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("stats: service returned HTTP %d", resp.StatusCode)
	}

	var stats Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("stats: decode response: %w", err)
	}
	return &stats, nil
}

type cleanRequest struct {
	Statement string `json:"enunciado"`
}

type cleanResponse struct {
	Success   bool   `json:"sucesso"`
	Statement string `json:"enunciado_limpo"`
}

// CleanStatement asks the service's assisted cleanup to recover the real
// statement from image-heavy markup. An empty result means the cleanup
// could not help; the caller keeps the original.
func (c *Client) CleanStatement(ctx context.Context, statement string) (string, error) {
	var resp cleanResponse
	if err := c.postJSON(ctx, cleanStatementPath, cleanRequest{Statement: statement}, &resp, "clean statement"); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", nil
	}
	return resp.Statement, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any, op string) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: service returned HTTP %d", op, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
