package bank

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"taglift/internal/credential"
)

type stubAuthenticator struct {
	calls atomic.Int64
}

func (s *stubAuthenticator) Authenticate(ctx context.Context) (credential.State, error) {
	s.calls.Add(1)
	return credential.State{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) (*Client, *stubAuthenticator) {
	t.Helper()
	auth := &stubAuthenticator{}
	store := credential.NewFileStore(filepath.Join(t.TempDir(), "credential.json"))
	creds, err := credential.NewManager(store, auth, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	opts = append([]Option{WithRetryPolicy(Policy{MaxAttempts: 1})}, opts...)
	client, err := NewClient(baseURL, "MEDIO", creds, nil, opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, auth
}

const longStatement = "A Revolução Industrial transformou profundamente as relações de trabalho " +
	"na Europa do século XIX. Sobre esse processo, assinale a alternativa correta."

func TestFindAndClassifyShortStatementSkipsNetwork(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	match, err := client.FindAndClassify(context.Background(), "x = 2?", 9)
	if err != nil {
		t.Fatalf("FindAndClassify: %v", err)
	}
	if match.Found {
		t.Fatal("expected no match")
	}
	if requests.Load() != 0 {
		t.Fatalf("short statement must not hit the network, got %d requests", requests.Load())
	}
}

func TestFindAndClassifyMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		switch r.URL.Path {
		case searchPath:
			var req searchRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode search request: %v", err)
			}
			if req.TextSearchType != ModeEvery || !req.LatterQuestions {
				t.Errorf("unexpected search request: %+v", req)
			}
			json.NewEncoder(w).Encode(map[string]any{"QUESTION_IDS": []int64{101, 102}})
		case specificsPath:
			json.NewEncoder(w).Encode(map[string]any{"QUESTIONS": []map[string]any{
				{
					"ID_BCO_QUESTAO": 101,
					"TEXTO_QUESTAO":  longStatement,
					"CLASSIFICACAO_QUESTAO": []map[string]any{
						{"MATERIA": []map[string]any{{"MATERIA": "História"}}},
					},
				},
				{
					"ID_BCO_QUESTAO": 102,
					"TEXTO_QUESTAO":  "Questão completamente diferente sobre fotossíntese e cloroplastos.",
				},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	match, err := client.FindAndClassify(context.Background(), longStatement, 9)
	if err != nil {
		t.Fatalf("FindAndClassify: %v", err)
	}
	if !match.Found {
		t.Fatal("expected a match")
	}
	if match.RemoteID != 101 {
		t.Fatalf("RemoteID = %d", match.RemoteID)
	}
	if match.Similarity < 0.99 {
		t.Fatalf("Similarity = %v", match.Similarity)
	}
	if match.Strategy != "subject+sentence" {
		t.Fatalf("Strategy = %q", match.Strategy)
	}
	if len(match.Paths) != 1 || match.Paths[0] != "História" {
		t.Fatalf("Paths = %v", match.Paths)
	}
}

func TestFindAndClassifyNoMatchBelowThreshold(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case searchPath:
			json.NewEncoder(w).Encode(map[string]any{"QUESTION_IDS": []int64{7}})
		case specificsPath:
			json.NewEncoder(w).Encode(map[string]any{"QUESTIONS": []map[string]any{
				{"ID_BCO_QUESTAO": 7, "TEXTO_QUESTAO": strings.Repeat("z", 100)},
			}})
		}
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	match, err := client.FindAndClassify(context.Background(), longStatement, 9)
	if err != nil {
		t.Fatalf("FindAndClassify: %v", err)
	}
	if match.Found {
		t.Fatalf("expected no match, got %+v", match)
	}
}

func TestFindAndClassifyUnavailableAfterConsecutiveFailures(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL)
	_, err := client.FindAndClassify(context.Background(), longStatement, 9)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if got := requests.Load(); got != maxServiceFailures {
		t.Fatalf("expected %d search attempts before aborting, got %d", maxServiceFailures, got)
	}
}

func TestSearchQuestionsRefreshesCredentialOn401(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"QUESTION_IDS": []int64{}})
	}))
	defer server.Close()

	client, auth := newTestClient(t, server.URL)
	ids, err := client.SearchQuestions(context.Background(), "texto de busca qualquer", 0, ModeEvery)
	if err != nil {
		t.Fatalf("SearchQuestions: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ids = %v", ids)
	}
	if got := auth.calls.Load(); got != 2 {
		t.Fatalf("expected initial login plus forced refresh, got %d", got)
	}
	if requests.Load() != 2 {
		t.Fatalf("expected the request to be replayed once, got %d", requests.Load())
	}
}

func TestGetSpecificsUsesCache(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"QUESTIONS": []map[string]any{
			{"ID_BCO_QUESTAO": 5, "TEXTO_QUESTAO": "texto"},
		}})
	}))
	defer server.Close()

	cache := newMemoryCache()
	client, _ := newTestClient(t, server.URL, WithCache(cache))

	for i := 0; i < 2; i++ {
		records, err := client.GetSpecifics(context.Background(), []int64{5})
		if err != nil {
			t.Fatalf("GetSpecifics: %v", err)
		}
		if len(records) != 1 || records[0].ID != 5 {
			t.Fatalf("records = %+v", records)
		}
	}
	if requests.Load() != 1 {
		t.Fatalf("expected a single upstream request, got %d", requests.Load())
	}
}

// memoryCache is a map-backed Cache for tests.
type memoryCache struct {
	searches  map[string][]int64
	questions map[int64]Record
}

func newMemoryCache() *memoryCache {
	return &memoryCache{searches: map[string][]int64{}, questions: map[int64]Record{}}
}

func (m *memoryCache) SearchResult(key string) ([]int64, bool) {
	ids, ok := m.searches[key]
	return ids, ok
}
func (m *memoryCache) StoreSearchResult(key string, ids []int64) { m.searches[key] = ids }
func (m *memoryCache) Question(id int64) (Record, bool) {
	rec, ok := m.questions[id]
	return rec, ok
}
func (m *memoryCache) StoreQuestion(rec Record) { m.questions[rec.ID] = rec }
