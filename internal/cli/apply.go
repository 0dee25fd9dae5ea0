package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/criteria"
	"github.com/roach88/sieve/internal/schema"
)

// SchemaOptions are the flags naming a record schema.
type SchemaOptions struct {
	Schema     string
	Definition string
}

func (o *SchemaOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Schema, "schema", "", "CUE file describing the records")
	cmd.Flags().StringVar(&o.Definition, "definition", "", "CUE definition within --schema, e.g. Person")
}

func (o *SchemaOptions) load() (*schema.Type, error) {
	typ, err := LoadSchema(o.Schema, o.Definition)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load schema", err)
	}
	return typ, nil
}

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	SchemaOptions
	Data string
}

// RecordsResult is a list of returned records.
type RecordsResult struct {
	Count   int   `json:"count"`
	Records []any `json:"records"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply --schema <file.cue> --definition <Name> --data <records.yaml> <query>",
		Short: "Filter and sort records in memory",
		Long: `Filter and sort a file of records with a query string, in memory.

Records are read from a YAML or JSON list and described by a CUE
definition. Conditions on unknown fields match nothing; sort fields
that do not resolve are skipped.

Examples:
  sieve apply --schema people.cue --definition Person --data people.yaml 'filter[age][gte]=18&sort=-age'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], cmd)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.Data, "data", "", "YAML or JSON file with a list of records")

	return cmd
}

func runApply(opts *ApplyOptions, query string, cmd *cobra.Command) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	typ, err := opts.load()
	if err != nil {
		return err
	}
	records, err := LoadRecords(opts.Data)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load records", err)
	}

	tree := cfg.FilterParser().ParseContext(cmd.Context(), query)
	dirs := cfg.SortParser().ParseContext(cmd.Context(), query)

	filtered, err := criteria.FilterRecords(records, typ, tree)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile filter", err)
	}
	sorted := criteria.SortRecords(filtered, typ, dirs)

	opts.formatter(cmd).VerboseLog("%d of %d records matched", len(sorted), len(records))

	lines, err := recordLines(sorted)
	if err != nil {
		return err
	}
	return opts.formatter(cmd).Success(RecordsResult{Count: len(sorted), Records: sorted}, lines...)
}

// recordLines renders one JSON object per record followed by a count.
func recordLines(records []any) ([]string, error) {
	lines := make([]string, 0, len(records)+1)
	for _, rec := range records {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("encode record: %w", err)
		}
		lines = append(lines, strings.TrimSuffix(buf.String(), "\n"))
	}
	return append(lines, fmt.Sprintf("%d records", len(records))), nil
}
