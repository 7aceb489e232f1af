package bank

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

	"taglift/internal/credential"
	"taglift/internal/logging"
	"taglift/internal/textnorm"
)

const (
	searchPath    = "/v2/spro-bco-questao-memory"
	specificsPath = "/v2/spro-bco-questao/specifics"

	// maxCandidates bounds how many search hits are scored per strategy.
	maxCandidates = 15
)

// Cache stores bank responses so repeated runs over the same questions skip
// the network. A nil Cache disables caching.
type Cache interface {
	SearchResult(key string) ([]int64, bool)
	StoreSearchResult(key string, ids []int64)
	Question(id int64) (Record, bool)
	StoreQuestion(rec Record)
}

// Option customises Client construction.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for bank calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache attaches a response cache.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithRetryPolicy overrides the retry policy (used in tests).
func WithRetryPolicy(p Policy) Option {
	return func(c *Client) { c.retry = p }
}

// WithMinSimilarity overrides the acceptance threshold for matches.
func WithMinSimilarity(min float64) Option {
	return func(c *Client) { c.minSimilarity = min }
}

// Client is the question bank API client.
type Client struct {
	baseURL       string
	teachingType  string
	minSimilarity float64

	httpClient *http.Client
	creds      *credential.Manager
	logger     *slog.Logger
	retry      Policy
	cache      Cache
}

// NewClient builds a bank client. creds supplies and renews the bearer
// token; a 401 from the bank forces a refresh and a single replay.
func NewClient(baseURL, teachingType string, creds *credential.Manager, logger *slog.Logger, opts ...Option) (*Client, error) {
	if creds == nil {
		return nil, errors.New("credential manager is nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	c := &Client{
		baseURL:       strings.TrimRight(baseURL, "/"),
		teachingType:  teachingType,
		minSimilarity: 0.35,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		creds:         creds,
		logger:        logger.With(logging.String(logging.FieldComponent, "bank")),
		retry:         DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return c, nil
}

type searchDiscipline struct {
	SubjectID  string `json:"ID_MATERIA"`
	DivisionID int    `json:"ID_DIVISAO"`
	TopicID    int    `json:"ID_TOPICO"`
	ItemID     int    `json:"ID_ITEM"`
	SubItemID  int    `json:"ID_SUBITEM"`
}

type searchRequest struct {
	LatterQuestions        bool               `json:"latter_questions"`
	Disciplines            []searchDiscipline `json:"disciplines"`
	TeachingType           string             `json:"teaching_type"`
	TextToSearch           string             `json:"text_to_search"`
	TextQuestionEnunciated bool               `json:"text_question_enunciated"`
	TextSearchType         string             `json:"text_search_type"`
}

type searchResponse struct {
	QuestionIDs []int64 `json:"QUESTION_IDS"`
}

type wireQuestion struct {
	ID              int64            `json:"ID_BCO_QUESTAO"`
	AltID           int64            `json:"id"`
	Text            string           `json:"TEXTO_QUESTAO"`
	Classifications []map[string]any `json:"CLASSIFICACAO_QUESTAO"`
}

type specificsResponse struct {
	Questions []wireQuestion `json:"QUESTIONS"`
}

// SearchQuestions runs one text search against the bank and returns the
// matching question IDs, best first. subjectID 0 searches every subject.
func (c *Client) SearchQuestions(ctx context.Context, text string, subjectID int64, mode string) ([]int64, error) {
	cacheKey := fmt.Sprintf("%s|%d|%s|%s", c.teachingType, subjectID, mode, text)
	if c.cache != nil {
		if ids, ok := c.cache.SearchResult(cacheKey); ok {
			return ids, nil
		}
	}

	disciplines := []searchDiscipline{}
	if subjectID != 0 {
		disciplines = append(disciplines, searchDiscipline{
			SubjectID: strconv.FormatInt(subjectID, 10),
		})
	}

	// Normalized again here even though callers already clean their input:
	// a single exotic rune in the search text earns an opaque 500.
	body := searchRequest{
		LatterQuestions:        true,
		Disciplines:            disciplines,
		TeachingType:           c.teachingType,
		TextToSearch:           textnorm.Normalize(text),
		TextQuestionEnunciated: true,
		TextSearchType:         mode,
	}

	var resp searchResponse
	if err := c.call(ctx, http.MethodPost, c.baseURL+searchPath, body, &resp, "search"); err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.StoreSearchResult(cacheKey, resp.QuestionIDs)
	}
	return resp.QuestionIDs, nil
}

// GetSpecifics fetches full records, including classifications, for the
// given question IDs.
func (c *Client) GetSpecifics(ctx context.Context, ids []int64) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	records := make([]Record, 0, len(ids))
	var missing []int64
	if c.cache != nil {
		for _, id := range ids {
			if rec, ok := c.cache.Question(id); ok {
				records = append(records, rec)
			} else {
				missing = append(missing, id)
			}
		}
		if len(missing) == 0 {
			return records, nil
		}
	} else {
		missing = ids
	}

	query := url.Values{}
	for _, id := range missing {
		query.Add("question_ids[]", strconv.FormatInt(id, 10))
	}

	var resp specificsResponse
	endpoint := c.baseURL + specificsPath + "?" + query.Encode()
	if err := c.call(ctx, http.MethodGet, endpoint, nil, &resp, "specifics"); err != nil {
		return nil, err
	}

	for _, q := range resp.Questions {
		rec := Record{
			ID:    q.ID,
			Text:  q.Text,
			Paths: classificationPaths(q.Classifications),
		}
		if rec.ID == 0 {
			rec.ID = q.AltID
		}
		if c.cache != nil {
			c.cache.StoreQuestion(rec)
		}
		records = append(records, rec)
	}
	return records, nil
}

// call issues one API request under the retry policy. A 401 triggers a
// credential refresh and a single replay outside the retry budget.
func (c *Client) call(ctx context.Context, method, endpoint string, body, out any, op string) error {
	return c.retry.Do(ctx, c.logger, op, func() error {
		err := c.send(ctx, method, endpoint, body, out, op)
		if IsAuthError(err) {
			c.logger.Warn("bank rejected credential, refreshing", logging.String("operation", op))
			if _, rerr := c.creds.ForceRefresh(ctx); rerr != nil {
				return rerr
			}
			err = c.send(ctx, method, endpoint, body, out, op)
		}
		return err
	})
}

func (c *Client) send(ctx context.Context, method, endpoint string, body, out any, op string) error {
	token, err := c.creds.EnsureValid(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	for key, value := range c.creds.Headers(token) {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Operation: op}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
