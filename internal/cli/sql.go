package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/config"
	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/querysql"
	"github.com/roach88/sieve/internal/schema"
)

// DefaultCollection is the collection records are queried in.
const DefaultCollection = "records"

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	SchemaOptions
	Collection string
}

// SQLResult is a compiled statement.
type SQLResult struct {
	SQL  string `json:"sql"`
	Args []any  `json:"args"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql --schema <file.cue> --definition <Name> <query>",
		Short: "Print the SQL a query compiles to",
		Long: `Compile a query string to the SQLite statement the store runs,
and print it with its bound parameters.

Examples:
  sieve sql --schema people.cue --definition Person 'filter[age][between]=18,65&sort=name'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args[0], cmd)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.Collection, "collection", DefaultCollection, "collection to query")

	return cmd
}

func runSQL(opts *SQLOptions, query string, cmd *cobra.Command) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	typ, err := opts.load()
	if err != nil {
		return err
	}

	q := buildQuery(cmd.Context(), cfg, opts.Collection, typ, query)
	text, args, err := q.Compile()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile query", err)
	}
	if args == nil {
		args = []any{}
	}

	return opts.formatter(cmd).Success(SQLResult{SQL: text, Args: args},
		text,
		fmt.Sprintf("args: %v", args))
}

// buildQuery parses query and applies it to a fresh SQL query over
// collection.
func buildQuery(ctx context.Context, cfg *config.Config, collection string, typ *schema.Type, query string) *querysql.Query {
	if ctx == nil {
		ctx = context.Background()
	}
	tree := cfg.FilterParser().ParseContext(ctx, query)
	dirs := cfg.SortParser().ParseContext(ctx, query)

	q := criteria.FilterQuery(querysql.New(collection, typ), tree)
	return criteria.SortQuery(q, dirs).(*querysql.Query)
}
