package availability

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"wallet-service/internal/query"
	"github.com/pkg/errors"
)

var ErrInvalidParameters = errors.New("field and value are required")

type Request struct {
	Field   string            `json:"field"`
	Value   string            `json:"value"`
	Table   string            `json:"table,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

type Result struct {
	Available   bool     `json:"available"`
	Suggestions []string `json:"suggestions"`
}

type ExistsChecker interface {
	Exists(ctx context.Context, q *query.Query) (bool, error)
}

type Checker struct {
	repo   ExistsChecker
	logger *slog.Logger
}

func NewChecker(repo ExistsChecker, logger *slog.Logger) *Checker {
	return &Checker{repo: repo, logger: logger}
}

func (c *Checker) Check(ctx context.Context, req Request) (*Result, error) {
	if req.Field == "" || req.Value == "" {
		return nil, ErrInvalidParameters
	}

	q, err := query.New(req.Table)
	if err != nil {
		return nil, err
	}

	if err := q.Equals(req.Field, req.Value); err != nil {
		return nil, err
	}

	// Sorted so the rendered SQL is stable regardless of map order.
	keys := make([]string, 0, len(req.Filters))
	for k := range req.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := q.Equals(k, req.Filters[k]); err != nil {
			return nil, err
		}
	}

	exists, err := c.repo.Exists(ctx, q)
	if err != nil {
		c.logger.ErrorContext(ctx, "Error checking availability", "field", req.Field, "error", err)
		return nil, err
	}

	result := &Result{Available: !exists, Suggestions: []string{}}
	if exists && req.Field == "username" && q.Table() == query.DefaultTable {
		result.Suggestions = suggestions(req.Value)
	}
	return result, nil
}

// IsValidationError tells the handler layer which failures are the
// client's fault.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidParameters) ||
		errors.Is(err, query.ErrUnknownTable) ||
		errors.Is(err, query.ErrUnknownField)
}

func suggestions(value string) []string {
	return []string{
		fmt.Sprintf("%s%d", value, rand.IntN(1000)),
		fmt.Sprintf("%s%d", value, time.Now().Year()),
		"real" + value,
	}
}
