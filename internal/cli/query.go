package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	SchemaOptions
	Data       string
	DB         string
	Collection string
}

// QueryResult is the outcome of a store query.
type QueryResult struct {
	SQL     string `json:"sql"`
	Count   int    `json:"count"`
	Records []any  `json:"records"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query --schema <file.cue> --definition <Name> [--data <records.yaml>] [--db <file>] <query>",
		Short: "Run a query against a SQLite store",
		Long: `Run a query string as SQL against a SQLite record store.

Records given with --data are loaded first. Without --db the store is
in memory, so --data is required.

Examples:
  sieve query --schema people.cue --definition Person --data people.yaml 'filter[tags][contains]=vip'
  sieve query --schema people.cue --definition Person --db people.db 'sort=-age'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.Data, "data", "", "YAML or JSON file with records to load")
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database file (default in memory)")
	cmd.Flags().StringVar(&opts.Collection, "collection", DefaultCollection, "collection to load and query")

	return cmd
}

func runQuery(opts *QueryOptions, query string, cmd *cobra.Command) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	typ, err := opts.load()
	if err != nil {
		return err
	}

	path := opts.DB
	if path == "" {
		if opts.Data == "" {
			return NewExitError(ExitCommandError, "--data is required without --db")
		}
		path = ":memory:"
	}

	ctx := cmd.Context()
	f := opts.formatter(cmd)

	st, err := store.Open(path, store.WithLogger(opts.Logger(f.GetErrWriter(), cfg)))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open store", err)
	}
	defer st.Close()

	if opts.Data != "" {
		records, err := LoadRecords(opts.Data)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load records", err)
		}
		if err := st.Load(ctx, opts.Collection, typ, records); err != nil {
			return WrapExitError(ExitCommandError, "failed to store records", err)
		}
		f.VerboseLog("loaded %d records into %s", len(records), opts.Collection)
	}

	q := buildQuery(ctx, cfg, opts.Collection, typ, query)
	text, _, err := q.Compile()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile query", err)
	}
	f.VerboseLog("%s", text)

	docs, err := st.Find(ctx, q)
	if err != nil {
		return WrapExitError(ExitCommandError, "query failed", err)
	}
	records := store.Records(docs)

	lines, err := recordLines(records)
	if err != nil {
		return err
	}
	return f.Success(QueryResult{SQL: text, Count: len(records), Records: records}, lines...)
}
