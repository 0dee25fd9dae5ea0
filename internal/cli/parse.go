package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sieve/internal/filter"
	"github.com/roach88/sieve/internal/sortspec"
)

// ParseResult is what a query string parsed to.
type ParseResult struct {
	Filter *filter.Group         `json:"filter"`
	Sort   []sortspec.Directive `json:"sort"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <query>",
		Short: "Show the filter tree and sort directives of a query",
		Long: `Parse a query string and print the filter tree and the sort
directives it holds. Parsing never fails: unrecognised parameters are
ignored.

Examples:
  sieve parse 'filter[age][gte]=18&sort=-age'
  sieve parse --format json 'filter[name][startswith]=Ad'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(rootOpts, args[0], cmd)
		},
	}
}

func runParse(opts *RootOptions, query string, cmd *cobra.Command) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}

	result := ParseResult{Sort: []sortspec.Directive{}}
	registry := cfg.Registry()

	if v, ok := registry.Parse(cfg.FilterKey, query); ok {
		result.Filter = v.(*filter.Group)
	} else {
		result.Filter = filter.NewGroup(cfg.RootName, filter.And, "")
	}
	if v, ok := registry.Parse(cfg.SortKey, query); ok {
		result.Sort = v.([]sortspec.Directive)
	}

	opts.formatter(cmd).VerboseLog("parsed %d conditions, %d directives",
		len(filter.Conditions(result.Filter)), len(result.Sort))

	return opts.formatter(cmd).Success(result,
		strings.TrimSuffix(filter.Format(result.Filter), "\n"),
		fmt.Sprintf("%s: %s", cfg.SortKey, sortspec.Format(result.Sort)))
}
