package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/tblx/internal/config"
	"github.com/oakwood-commons/tblx/internal/formatter"
	"github.com/oakwood-commons/tblx/internal/limiter"
	"github.com/oakwood-commons/tblx/internal/model"
	"github.com/oakwood-commons/tblx/internal/orderby"
	"github.com/oakwood-commons/tblx/pkg/core"
	"github.com/oakwood-commons/tblx/pkg/loader"
	"github.com/oakwood-commons/tblx/pkg/logger"
	"github.com/oakwood-commons/tblx/pkg/settings"
	"github.com/oakwood-commons/tblx/pkg/tui"
)

// errNoInput is returned when no file is given and stdin is a terminal.
var errNoInput = errors.New("no input: pass a file or pipe rows on stdin")

// rootOptions holds the flag values of the root command.
type rootOptions struct {
	columnsFile   string
	order         orderFlag
	search        string
	searchColumns []string
	where         string
	limit         limiter.Config
	output        string
	interactive   bool
	noColor       bool
	width         int
	configFile    string
	debug         bool
}

// runTUI starts the interactive table. Tests replace it.
var runTUI = func(ctx context.Context, engine *core.Engine, cfg tui.Config) (orderby.Spec, error) {
	return tui.Run(ctx, engine, cfg)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   settings.CliBinaryName + " [file]",
		Short: "Sort, search and render tabular data",
		Long: `tblx reads rows from a JSON, NDJSON, YAML, TOML or CSV file (or stdin),
applies an optional CEL filter, a search term and a multi-column ordering,
and renders the result as a table or in a machine readable format.`,
		Example:       "\n  tblx people.json --order age,-name\n  tblx people.csv --columns columns.yaml --search amy -o markdown\n  cat rows.ndjson | tblx --where 'row.age >= 21' -o json\n  tblx people.yaml -i",
		Args:          maxArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// debug => zap.DebugLevel (-1), else zap.InfoLevel (0)
			var level int8
			if opts.debug {
				level = -1
			}
			lgr := logger.Get(level)
			lgr = logger.WithValues(lgr, logger.CommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

			run := settings.NewCliParams()
			run.MinLogLevel = level
			ctx := settings.IntoContext(logger.WithLogger(cmd.Context(), lgr), run)
			cmd.SetContext(ctx)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, opts, args)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return newUsageError(err)
	})

	f := root.Flags()
	f.StringVar(&opts.columnsFile, "columns", "", "YAML or JSON file with column definitions (default: inferred from the rows)")
	f.Var(&opts.order, "order", "ordering, e.g. 'age,-name' or 'age:asc,name:desc'")
	f.StringVar(&opts.search, "search", "", "keep rows whose searchable columns contain this text (case-insensitive)")
	f.StringSliceVar(&opts.searchColumns, "search-columns", nil, "columns to search (default: columns with allowSearch)")
	f.StringVar(&opts.where, "where", "", "CEL predicate over 'row', e.g. 'row.age >= 21'")
	f.IntVar(&opts.limit.Limit, "limit", 0, "print only the first N rows after ordering")
	f.IntVar(&opts.limit.Tail, "tail", 0, "print only the last N rows after ordering (exclusive with --limit)")
	f.StringVarP(&opts.output, "output", "o", "", "output format: "+formatList()+" (default from config or table)")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "start the interactive table")
	f.BoolVar(&opts.noColor, "no-color", false, "disable color output")
	f.IntVar(&opts.width, "width", 0, "output width in columns (default: terminal width)")
	root.PersistentFlags().StringVar(&opts.configFile, "config-file", "", "path to a YAML config file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "write debug logs to stderr")

	_ = root.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, len(formatter.Formats))
		for i, f := range formatter.Formats {
			out[i] = string(f)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})

	root.Version = versionString()
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(newColumnsCmd(opts), newToggleCmd(), newVersionCmd())
	return root
}

// Execute runs the root command with os.Args.
func Execute() error {
	return newRootCmd().ExecuteContext(context.Background())
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return newUsageError(cobra.MaximumNArgs(n)(cmd, args))
	}
}

func formatList() string {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

func runRoot(cmd *cobra.Command, opts *rootOptions, args []string) error {
	ctx := cmd.Context()
	lgr := logger.FromContext(ctx)

	cfg, err := config.Load(config.ResolvePath(opts.configFile))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyTheme(cfg)

	run := settings.FromContextOrDefault(ctx)
	run.OutputFormat = cfg.Output.Format
	if cmd.Flags().Changed("output") {
		run.OutputFormat = opts.output
	}
	format, err := formatter.ParseFormat(run.OutputFormat)
	if err != nil {
		return newUsageError(err)
	}
	if err := opts.limit.Validate(); err != nil {
		return newUsageError(err)
	}
	run.Interactive = opts.interactive
	run.NoColor = opts.noColor || cfg.Output.NoColor
	run.Width = cfg.Output.Width
	if opts.width > 0 {
		run.Width = opts.width
	}
	if len(args) > 0 {
		run.Input.RowsPath = args[0]
	}
	run.Input.ColumnsPath = opts.columnsFile

	doc, err := loadDocument(cmd.InOrStdin(), run.Input.RowsPath)
	if err != nil {
		return err
	}
	columns, err := resolveColumns(doc, run.Input.ColumnsPath)
	if err != nil {
		return err
	}
	lgr.V(1).Info("loaded input", logger.RowsKey, len(doc.Rows), "columns", len(columns))

	engine, err := core.New(core.WithLogger(*lgr))
	if err != nil {
		return err
	}

	if run.Interactive {
		return runInteractive(ctx, engine, opts, cfg, run, columns, doc.Rows)
	}

	res, err := engine.Prepare(ctx, core.Request{
		Columns:       columns,
		Rows:          doc.Rows,
		OrderBy:       opts.order.Spec(),
		Search:        opts.search,
		SearchColumns: opts.searchColumns,
		Where:         opts.where,
	})
	if err != nil {
		return err
	}
	cells := limiter.Apply(opts.limit, res.Cells)
	lgr.V(1).Info("rendering", "format", string(format), logger.RowsKey, len(cells), "matched", len(res.Rows))
	return formatter.Render(cmd.OutOrStdout(), format, res.Headers, cells, formatter.ColumnarOptions{
		NoColor:        run.NoColor,
		TotalWidth:     run.Width,
		MaxColumnWidth: cfg.Table.MaxColumnWidth,
		Separator:      cfg.Table.Separator,
	})
}

func runInteractive(ctx context.Context, engine *core.Engine, opts *rootOptions, cfg config.Config, run *settings.Run, columns []model.Column, rows []model.Row) error {
	order, err := runTUI(ctx, engine, tui.Config{
		Columns:        columns,
		Rows:           rows,
		OrderBy:        opts.order.Spec(),
		Search:         opts.search,
		SearchColumns:  opts.searchColumns,
		Where:          opts.where,
		Width:          run.Width,
		MaxColumnWidth: cfg.Table.MaxColumnWidth,
		NoColor:        run.NoColor,
		HeaderColor:    cfg.Theme.Header,
		SelectedColor:  cfg.Theme.Focus,
	})
	if err != nil {
		return fmt.Errorf("interactive table: %w", err)
	}
	logger.FromContext(ctx).V(1).Info("interactive table closed", logger.OrderByKey, order.String())
	return nil
}

func applyTheme(cfg config.Config) {
	formatter.SetTableTheme(formatter.TableColors{
		Header:    formatter.ColorFromString(cfg.Theme.Header),
		Sorted:    formatter.ColorFromString(cfg.Theme.Sorted),
		Separator: formatter.ColorFromString(cfg.Theme.Separator),
	})
}

// loadDocument reads rows from path, or from stdin when path is empty.
func loadDocument(stdin io.Reader, path string) (*loader.Document, error) {
	if path != "" {
		return loader.LoadRowsFile(path)
	}
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, newUsageError(errNoInput)
	}
	doc, err := loader.LoadRowsReader(stdin)
	if err != nil {
		return nil, fmt.Errorf("stdin: %w", err)
	}
	return doc, nil
}

func resolveColumns(doc *loader.Document, path string) ([]model.Column, error) {
	if path == "" {
		return loader.InferColumns(doc), nil
	}
	return loader.LoadColumnsFile(path)
}
