package bank

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"taglift/internal/credential"
	"taglift/internal/logging"
	"taglift/internal/textnorm"
)

// minStatementChars is the shortest statement worth searching. Anything
// shorter is a fragment that would match arbitrary questions.
const minStatementChars = 20

// maxServiceFailures is how many transport or 5xx failures in a row abort
// the remaining strategies and mark the bank unavailable.
const maxServiceFailures = 2

// Match is the outcome of FindAndClassify. Found is false when no candidate
// cleared the similarity threshold.
type Match struct {
	Found      bool
	RemoteID   int64
	Similarity float64
	Strategy   string
	Statement  string
	Paths      []string
}

// FindAndClassify searches the bank for the question behind a statement and
// returns its classification paths. Strategies run in order from most to
// least selective; the first one producing a candidate above the similarity
// threshold wins. It returns ErrUnavailable when the bank failed at the
// service level often enough that "no match" would be a lie.
func (c *Client) FindAndClassify(ctx context.Context, statement string, categoryID int64) (Match, error) {
	if len(strings.TrimSpace(statement)) < minStatementChars {
		return Match{}, nil
	}

	cleaned := textnorm.CleanStatement(textnorm.Normalize(statement))

	var subjectID int64
	if categoryID != 0 {
		subjectID, _ = SubjectID(categoryID)
	}

	strategies := BuildStrategies(cleaned, subjectID)
	if len(strategies) == 0 {
		return Match{}, nil
	}

	serviceFailures := 0
	for _, strat := range strategies {
		if err := ctx.Err(); err != nil {
			return Match{}, err
		}
		if serviceFailures >= maxServiceFailures {
			break
		}
		logger := c.logger.With(logging.String(logging.FieldStrategy, strat.Name))

		ids, err := c.SearchQuestions(ctx, strat.Text, strat.SubjectID, strat.Mode)
		if err != nil {
			if fatal := c.noteFailure(logger, err, &serviceFailures); fatal != nil {
				return Match{}, fatal
			}
			continue
		}
		if len(ids) == 0 {
			continue
		}
		if len(ids) > maxCandidates {
			ids = ids[:maxCandidates]
		}

		records, err := c.GetSpecifics(ctx, ids)
		if err != nil {
			if fatal := c.noteFailure(logger, err, &serviceFailures); fatal != nil {
				return Match{}, fatal
			}
			continue
		}

		best, bestRatio := bestCandidate(statement, records)
		if best == nil || bestRatio < c.minSimilarity {
			logger.Debug("no candidate above threshold",
				logging.Int("candidates", len(records)),
				logging.Float64("best_ratio", bestRatio))
			continue
		}

		logger.Info("question matched",
			logging.Int64(logging.FieldRemoteID, best.ID),
			logging.Float64(logging.FieldSimilarity, bestRatio),
			logging.Int("classifications", len(best.Paths)))
		return Match{
			Found:      true,
			RemoteID:   best.ID,
			Similarity: bestRatio,
			Strategy:   strat.Name,
			Statement:  best.Text,
			Paths:      best.Paths,
		}, nil
	}

	if serviceFailures >= maxServiceFailures {
		c.logger.Warn("bank unstable, aborting remaining strategies",
			logging.Int("failures", serviceFailures))
		return Match{}, ErrUnavailable
	}
	return Match{}, nil
}

// bestCandidate scores every record against the original statement and keeps
// the strictly best one. Ties keep the earlier record, which ranked higher
// in the search results.
func bestCandidate(statement string, records []Record) (*Record, float64) {
	var best *Record
	bestRatio := 0.0
	for i := range records {
		if records[i].Text == "" {
			continue
		}
		ratio := Similarity(statement, records[i].Text)
		if ratio > bestRatio {
			bestRatio = ratio
			best = &records[i]
		}
	}
	return best, bestRatio
}

// noteFailure classifies a strategy error. Service-level failures bump the
// counter and let the next strategy run; credential failures and shutdown
// abort the whole lookup. Anything else is a response-shape problem worth a
// log line but not a stop.
func (c *Client) noteFailure(logger *slog.Logger, err error, serviceFailures *int) error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, credential.ErrNoCredential):
		return err
	case isServiceFailure(err):
		*serviceFailures++
		logger.Warn("bank request failed", logging.Error(err))
	default:
		logger.Warn("unexpected bank response", logging.Error(err))
	}
	return nil
}
