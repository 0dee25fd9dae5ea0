package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/sieve/internal/config"
	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/querysql"
	"github.com/roach88/sieve/internal/schema"
	"github.com/roach88/sieve/internal/sortspec"
	"github.com/roach88/sieve/internal/store"
)

// collection is the store collection scenario records are loaded into.
const collection = "records"

// Harness runs scenarios with one query grammar.
type Harness struct {
	filters *filter.Parser
	sorts   *sortspec.Parser
	logger  *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithConfig parses queries with the grammar c describes.
func WithConfig(c *config.Config) Option {
	return func(h *Harness) {
		if c != nil {
			h.filters = c.FilterParser()
			h.sorts = c.SortParser()
		}
	}
}

// WithLogger sets the logger for scenario diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// New creates a Harness over the default grammar. Logs are discarded
// unless a logger is given.
func New(opts ...Option) *Harness {
	h := &Harness{
		filters: filter.NewParser(),
		sorts:   sortspec.NewParser(nil),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with the default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run executes a scenario and returns the result. An error means the
// scenario could not run at all; failed expectations are reported in the
// result.
//
// Each scenario that uses SQLite gets a fresh in-memory database.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	typ, err := schema.LoadFile(scenario.Schema, scenario.Definition)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	records := make([]any, len(scenario.Records))
	for i, r := range scenario.Records {
		records[i] = r
	}

	tree := h.filters.ParseContext(ctx, scenario.Query)
	dirs := h.sorts.ParseContext(ctx, scenario.Query)
	for _, w := range filter.Validate(tree).Warnings {
		h.logger.Warn("filter warning", "scenario", scenario.Name, "warning", w)
	}

	result := NewResult()
	result.Filter = filter.Format(tree)
	result.Sort = sortspec.Format(dirs)

	var memory, sqlite []any
	backend := scenario.backend()

	if backend != BackendSQLite {
		memory, err = runMemory(records, typ, tree, dirs)
		if err != nil {
			return nil, fmt.Errorf("in-memory query: %w", err)
		}
		result.Records = memory
	}

	if backend != BackendMemory {
		var sqlText string
		sqlite, sqlText, err = h.runSQLite(ctx, records, typ, tree, dirs)
		if err != nil {
			return nil, fmt.Errorf("sqlite query: %w", err)
		}
		result.SQL = sqlText
		if backend == BackendSQLite {
			result.Records = sqlite
		}
	}

	if backend == BackendBoth {
		if err := compareBackends(memory, sqlite); err != nil {
			result.AddError(err.Error())
		}
	}

	for i, assertion := range scenario.Assertions {
		if err := checkAssertion(result.Records, assertion); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}

	h.logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"records", len(result.Records),
		"pass", result.Pass)
	return result, nil
}

func runMemory(records []any, typ *schema.Type, tree filter.Node, dirs []sortspec.Directive) ([]any, error) {
	filtered, err := criteria.FilterRecords(records, typ, tree)
	if err != nil {
		return nil, err
	}
	return criteria.SortRecords(filtered, typ, dirs), nil
}

func (h *Harness) runSQLite(ctx context.Context, records []any, typ *schema.Type, tree filter.Node, dirs []sortspec.Directive) ([]any, string, error) {
	st, err := store.Open(":memory:", store.WithLogger(h.logger))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.Load(ctx, collection, typ, records); err != nil {
		return nil, "", err
	}

	q := criteria.SortQuery(criteria.FilterQuery(querysql.New(collection, typ), tree), dirs).(*querysql.Query)
	sqlText, _, err := q.Compile()
	if err != nil {
		return nil, "", err
	}

	docs, err := st.Find(ctx, q)
	if err != nil {
		return nil, "", err
	}
	return store.Records(docs), sqlText, nil
}

func compareBackends(memory, sqlite []any) error {
	left, err := canonical(memory)
	if err != nil {
		return fmt.Errorf("encode in-memory records: %w", err)
	}
	right, err := canonical(sqlite)
	if err != nil {
		return fmt.Errorf("encode sqlite records: %w", err)
	}
	if left != right {
		return fmt.Errorf("backends disagree:\n  memory: %s\n  sqlite: %s", left, right)
	}
	return nil
}
