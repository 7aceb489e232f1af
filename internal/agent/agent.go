package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"taglift/internal/bank"
	"taglift/internal/catalog"
	"taglift/internal/logging"
	"taglift/internal/textnorm"
)

// ErrServiceDown is returned when the bank stayed unstable through every
// allowed pause round and the run gave up.
var ErrServiceDown = errors.New("question bank stayed down, giving up")

// maxPause caps the circuit-breaker pause regardless of how many rounds the
// bank has been down.
const maxPause = 10 * time.Minute

// minStatementChars mirrors the search client's floor: statements shorter
// than this are recorded as not found without a lookup.
const minStatementChars = 20

// Catalog is the slice of the extraction service the agent needs.
type Catalog interface {
	NextPending(ctx context.Context, categoryID, yearID int64) (*catalog.Question, error)
	SaveOutcome(ctx context.Context, outcome catalog.Outcome) error
	CleanStatement(ctx context.Context, statement string) (string, error)
}

// Bank is the slice of the question bank client the agent needs.
type Bank interface {
	FindAndClassify(ctx context.Context, statement string, categoryID int64) (bank.Match, error)
}

// Config tunes the extraction run.
type Config struct {
	Categories           []int64
	YearID               int64
	Workers              int
	MaxQuestions         int
	DelayMin             time.Duration
	DelayMax             time.Duration
	MaxConsecutiveErrors int
	LongPause            time.Duration
	MaxServerDownRounds  int
	EmptySweepDelay      time.Duration
	OfficialThreshold    float64
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.YearID == 0 {
		c.YearID = 3
	}
	if c.MaxConsecutiveErrors <= 0 {
		c.MaxConsecutiveErrors = 3
	}
	if c.LongPause <= 0 {
		c.LongPause = 2 * time.Minute
	}
	if c.MaxServerDownRounds <= 0 {
		c.MaxServerDownRounds = 10
	}
	if c.EmptySweepDelay <= 0 {
		c.EmptySweepDelay = 5 * time.Second
	}
	if c.OfficialThreshold <= 0 {
		c.OfficialThreshold = 0.80
	}
	if c.DelayMax < c.DelayMin {
		c.DelayMax = c.DelayMin
	}
}

// Agent drives the extraction loop: pull pending questions from the catalog
// round-robin across categories, classify them against the bank with bounded
// concurrency, and report every outcome back.
type Agent struct {
	cfg     Config
	catalog Catalog
	bank    Bank
	logger  *slog.Logger

	stats Stats
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New builds an Agent.
func New(cfg Config, cat Catalog, bk Bank, logger *slog.Logger) (*Agent, error) {
	if cat == nil {
		return nil, errors.New("catalog client is nil")
	}
	if bk == nil {
		return nil, errors.New("bank client is nil")
	}
	if len(cfg.Categories) == 0 {
		return nil, errors.New("no categories configured")
	}
	cfg.applyDefaults()

	return &Agent{
		cfg:     cfg,
		catalog: cat,
		bank:    bk,
		logger:  logging.NewComponentLogger(logger, "agent"),
		sleep:   sleepCtx,
		now:     time.Now,
	}, nil
}

type resultKind int

const (
	resultFound resultKind = iota
	resultLowConfidence
	resultNotFound
	resultUnavailable
	resultError
)

type workerResult struct {
	kind  resultKind
	saved bool
}

// Run executes the extraction loop until the inventory drains, the question
// limit is reached, the context is cancelled, or the bank stays down past
// the allowed pause rounds. The returned Stats cover the whole session.
func (a *Agent) Run(ctx context.Context) (Stats, error) {
	a.stats = Stats{StartedAt: a.now()}
	a.logger.Info("extraction run started",
		logging.Int("workers", a.cfg.Workers),
		logging.Int("categories", len(a.cfg.Categories)),
		logging.Int("max_questions", a.cfg.MaxQuestions))

	defer func() { a.stats.LogSummary(a.logger, a.now()) }()

	categoryIndex := 0
	emptyRounds := 0
	lastSummary := 0

	for {
		if err := ctx.Err(); err != nil {
			a.logger.Info("extraction run interrupted")
			return a.stats, err
		}
		if a.cfg.MaxQuestions > 0 && a.stats.Processed >= a.cfg.MaxQuestions {
			a.logger.Info("question limit reached", logging.Int("limit", a.cfg.MaxQuestions))
			return a.stats, nil
		}

		if a.stats.ConsecutiveErrors >= a.cfg.MaxConsecutiveErrors {
			if err := a.pauseForRecovery(ctx); err != nil {
				return a.stats, err
			}
		}

		batch := a.collectBatch(ctx, &categoryIndex, &emptyRounds)
		if len(batch) == 0 {
			if err := ctx.Err(); err != nil {
				return a.stats, err
			}
			if emptyRounds >= len(a.cfg.Categories) {
				a.logger.Info("no pending questions left in any category")
				return a.stats, nil
			}
			if err := a.sleep(ctx, a.cfg.EmptySweepDelay); err != nil {
				return a.stats, err
			}
			continue
		}

		a.stats.Processed += len(batch)
		a.processBatch(ctx, batch)

		if milestone := a.stats.Processed / 10; milestone > lastSummary {
			lastSummary = milestone
			a.stats.LogSummary(a.logger, a.now())
		}
	}
}

// pauseForRecovery is the circuit breaker: consecutive bank failures earn a
// pause that grows with each round, and too many rounds end the run.
func (a *Agent) pauseForRecovery(ctx context.Context) error {
	a.stats.ServerDownRounds++
	rounds := a.stats.ServerDownRounds
	if rounds > a.cfg.MaxServerDownRounds {
		a.logger.Error("bank unstable past the pause budget",
			logging.Int("rounds", rounds))
		return ErrServiceDown
	}

	pause := a.cfg.LongPause * time.Duration(rounds)
	if pause > maxPause {
		pause = maxPause
	}
	a.logger.Warn("pausing for bank recovery",
		logging.Int("consecutive_errors", a.stats.ConsecutiveErrors),
		logging.Int("round", rounds),
		logging.Int("max_rounds", a.cfg.MaxServerDownRounds),
		logging.Duration("pause", pause))

	if err := a.sleep(ctx, pause); err != nil {
		return err
	}
	a.stats.ConsecutiveErrors = 0
	return nil
}

// collectBatch pulls up to one batch of pending questions, walking the
// categories round-robin so no subject starves. Collection is serial; only
// processing is concurrent.
func (a *Agent) collectBatch(ctx context.Context, categoryIndex, emptyRounds *int) []*catalog.Question {
	var batch []*catalog.Question
	tried := 0

	for len(batch) < a.cfg.Workers && tried < len(a.cfg.Categories) {
		if ctx.Err() != nil {
			return batch
		}
		if a.cfg.MaxQuestions > 0 && a.stats.Processed+len(batch) >= a.cfg.MaxQuestions {
			break
		}

		categoryID := a.cfg.Categories[*categoryIndex%len(a.cfg.Categories)]
		a.stats.CurrentCategory = categoryID
		*categoryIndex++
		tried++

		question, err := a.catalog.NextPending(ctx, categoryID, a.cfg.YearID)
		if err != nil {
			a.logger.Error("failed to fetch pending question",
				logging.Int64(logging.FieldCategoryID, categoryID),
				logging.Error(err))
			a.stats.Errors++
			a.stats.ConsecutiveErrors++
			continue
		}
		if question == nil {
			*emptyRounds++
			continue
		}

		*emptyRounds = 0
		batch = append(batch, question)
	}
	return batch
}

// processBatch classifies a batch concurrently and folds the results into
// the stats. The control loop is the only stats writer, so no locks.
func (a *Agent) processBatch(ctx context.Context, batch []*catalog.Question) {
	results := make(chan workerResult, len(batch))
	for _, question := range batch {
		go func(q *catalog.Question) {
			res := a.processQuestion(ctx, q)
			a.politenessDelay(ctx)
			results <- res
		}(question)
	}

	for range batch {
		res := <-results
		switch res.kind {
		case resultFound:
			a.stats.Found++
			a.stats.ConsecutiveErrors = 0
			a.stats.ServerDownRounds = 0
		case resultLowConfidence:
			a.stats.LowConfidence++
			a.stats.ConsecutiveErrors = 0
			a.stats.ServerDownRounds = 0
		case resultNotFound:
			a.stats.NotFound++
			a.stats.ConsecutiveErrors = 0
			a.stats.ServerDownRounds = 0
		case resultUnavailable:
			// The question was never really attempted; give it back to the
			// budget so the run does not burn its limit on a dead service.
			a.stats.Errors++
			a.stats.ConsecutiveErrors++
			a.stats.Processed--
		case resultError:
			a.stats.Errors++
			a.stats.ConsecutiveErrors++
		}
		if res.saved {
			a.stats.Saved++
		}
	}
}

func (a *Agent) processQuestion(ctx context.Context, question *catalog.Question) workerResult {
	logger := a.logger.With(logging.Int64(logging.FieldQuestionID, question.ID))

	// Statements arrive with their source markup. An image-only statement has
	// nothing to search on and is an expected empty outcome, not an error.
	statement, hadImage, emptyReason := textnorm.StripMarkup(question.Statement)
	hasImage := question.HasImage || hadImage
	if statement == "" {
		logger.Info("statement empty after markup removal, recording as not found",
			logging.String("reason", string(emptyReason)))
		return workerResult{kind: resultNotFound, saved: a.saveEmpty(ctx, logger, question.ID)}
	}

	if len(strings.TrimSpace(statement)) < minStatementChars {
		logger.Warn("statement too short, recording as not found",
			logging.Int("chars", len(statement)))
		return workerResult{kind: resultNotFound, saved: a.saveEmpty(ctx, logger, question.ID)}
	}

	// Image-heavy statements carry captions and markup debris instead of the
	// question text. The extraction service can usually recover the real
	// statement; if it cannot, the original is still searched.
	assistedStatement := ""
	if hasImage {
		cleaned, err := a.catalog.CleanStatement(ctx, statement)
		if err != nil {
			logger.Warn("assisted cleanup failed", logging.Error(err))
		} else if len(strings.TrimSpace(cleaned)) >= minStatementChars {
			logger.Debug("assisted cleanup rewrote statement",
				logging.Int("before_chars", len(statement)),
				logging.Int("after_chars", len(cleaned)))
			assistedStatement = cleaned
			statement = cleaned
		}
	}

	if len(strings.TrimSpace(statement)) < minStatementChars {
		return workerResult{kind: resultNotFound, saved: a.saveEmpty(ctx, logger, question.ID)}
	}

	match, err := a.bank.FindAndClassify(ctx, searchText(statement, question.Options), question.CategoryID)
	switch {
	case errors.Is(err, bank.ErrUnavailable):
		logger.Warn("bank unavailable for question")
		return workerResult{kind: resultUnavailable}
	case errors.Is(err, context.Canceled):
		return workerResult{kind: resultError}
	case err != nil:
		logger.Error("classification lookup failed", logging.Error(err))
		return workerResult{kind: resultError}
	}

	if !match.Found {
		logger.Info("question not found in bank")
		return workerResult{kind: resultNotFound, saved: a.saveEmpty(ctx, logger, question.ID)}
	}

	official := match.Similarity >= a.cfg.OfficialThreshold
	outcome := catalog.Outcome{
		QuestionID:       question.ID,
		RemoteID:         match.RemoteID,
		CleanedStatement: assistedStatement,
		Similarity:       &match.Similarity,
		RemoteStatement:  match.Statement,
	}
	if official {
		outcome.Paths = match.Paths
	} else {
		outcome.LowConfidencePaths = match.Paths
	}

	logger.Info("classification extracted",
		logging.Int64(logging.FieldRemoteID, match.RemoteID),
		logging.Float64(logging.FieldSimilarity, match.Similarity),
		logging.String(logging.FieldStrategy, match.Strategy),
		logging.Bool("official", official),
		logging.Int("paths", len(match.Paths)))

	saved := true
	if err := a.catalog.SaveOutcome(ctx, outcome); err != nil {
		logger.Error("failed to save outcome", logging.Error(err))
		saved = false
	}

	if official {
		return workerResult{kind: resultFound, saved: saved}
	}
	return workerResult{kind: resultLowConfidence, saved: saved}
}

func (a *Agent) saveEmpty(ctx context.Context, logger *slog.Logger, questionID int64) bool {
	if err := a.catalog.SaveOutcome(ctx, catalog.Outcome{QuestionID: questionID}); err != nil {
		logger.Error("failed to save empty outcome", logging.Error(err))
		return false
	}
	return true
}

// politenessDelay spaces requests out with a little jitter so concurrent
// workers do not hammer the services in lockstep.
func (a *Agent) politenessDelay(ctx context.Context) {
	if a.cfg.DelayMax <= 0 {
		return
	}
	delay := a.cfg.DelayMin
	if spread := a.cfg.DelayMax - a.cfg.DelayMin; spread > 0 {
		delay += time.Duration(rand.Int63n(int64(spread)))
	}
	a.sleep(ctx, delay)
}

// searchText appends the answer options to the statement in the lettered
// format the bank indexes, which tightens similarity scores considerably.
func searchText(statement string, options []catalog.Option) string {
	if len(options) == 0 {
		return statement
	}
	var b strings.Builder
	b.WriteString(statement)
	for i, opt := range options {
		b.WriteString(fmt.Sprintf(" %c) %s", rune('a'+i), opt.Content))
	}
	return b.String()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
