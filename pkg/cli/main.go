// Package cli builds the backoffice command line: serve, dataset
// inspection, config and version subcommands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/freightdesk/backoffice/pkg/api"
	"github.com/freightdesk/backoffice/pkg/app"
	"github.com/freightdesk/backoffice/pkg/config"
	"github.com/freightdesk/backoffice/pkg/dataset"
	"github.com/freightdesk/backoffice/pkg/listing"
	"github.com/freightdesk/backoffice/pkg/observability/logger"
	"github.com/freightdesk/backoffice/pkg/version"
)

// Options configures the root command.
type Options struct {
	Name        string
	Description string
	// ConfigPath is the default for --config-file.
	ConfigPath string
	// Out and Err default to stdout and stderr.
	Out io.Writer
	Err io.Writer
}

type root struct {
	opts       Options
	cfgPath    string
	secretFile string
}

// NewRootCommand creates the CLI. Running it without a subcommand serves.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Name == "" {
		opts.Name = "backoffice"
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	r := &root{opts: opts}

	rootCmd := &cobra.Command{
		Use:           opts.Name,
		Short:         opts.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(opts.Out)
	rootCmd.SetErr(opts.Err)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&r.cfgPath, "config-file", "c", opts.ConfigPath, "config file path")
	flags.StringVar(&r.secretFile, "secret-file", "", "path to secrets file (sets "+config.EnvPrefix+"_SECRETS_FILE)")
	registerConfigFlags(flags)

	serveCmd := r.serveCommand()
	rootCmd.AddCommand(
		serveCmd,
		r.datasetsCommand(),
		r.listCommand(),
		r.configCommand(),
		r.versionCommand(),
	)
	rootCmd.RunE = serveCmd.RunE
	return rootCmd
}

// registerConfigFlags declares one flag per config.FlagBindings entry. The
// loader only applies the ones set on the command line.
func registerConfigFlags(flags *pflag.FlagSet) {
	defaults := config.DefaultConfig()
	flags.Int("http-port", defaults.HTTP.Port, "HTTP listen port")
	flags.String("log-level", defaults.Observability.LogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Observability.LogFormat, "log format (json, text)")
	flags.String("store-type", defaults.Store.Type, "record store (memory, postgres, mysql)")
	flags.String("store-url", "", "database URL for the postgres and mysql stores")
}

func (r *root) loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	if r.secretFile != "" {
		info, err := os.Stat(r.secretFile)
		if err != nil {
			return nil, fmt.Errorf("secret file %s is not accessible: %w", r.secretFile, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("secret file %s must not be a directory", r.secretFile)
		}
		if err := os.Setenv(config.EnvPrefix+"_SECRETS_FILE", r.secretFile); err != nil {
			return nil, err
		}
	}
	cfg, err := config.NewLoader(r.cfgPath).WithFlags(flags).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (r *root) loadConfigAndLogger(flags *pflag.FlagSet) (*config.Config, *logger.ZapLogger, error) {
	cfg, err := r.loadConfig(flags)
	if err != nil {
		return nil, nil, err
	}
	log, err := app.NewLogger(cfg.Observability)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	if strings.EqualFold(cfg.Observability.LogLevel, string(logger.DebugLevel)) {
		log.Debug("effective configuration", "config", cfg.Redacted().Map())
	}
	return cfg, log, nil
}

func (r *root) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := r.loadConfigAndLogger(cmd.Flags())
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			runErr := a.Run(ctx)
			if err := a.Close(context.WithoutCancel(ctx)); err != nil {
				log.Error("failed to release resources", "error", err)
			}
			return runErr
		},
	}
}

// openDatasets assembles the app without the tracking simulator for the
// one-shot inspection commands.
func (r *root) openDatasets(cmd *cobra.Command) (*dataset.Registry, *config.Config, func(), error) {
	cfg, err := r.loadConfig(cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}
	cfg.Tracking.Enabled = false
	cfg.Observability.TracingEnabled = false
	log, err := app.NewLogger(cfg.Observability)
	if err != nil {
		return nil, nil, nil, err
	}
	a, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return a.Datasets(), cfg, func() { _ = a.Close(cmd.Context()) }, nil
}

func (r *root) datasetsCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the available datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(output)
			if err != nil {
				return err
			}
			reg, _, closeFn, err := r.openDatasets(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			descriptors := make([]dataset.Descriptor, 0)
			for _, ds := range reg.All() {
				descriptors = append(descriptors, ds.Describe())
			}
			return renderDescriptors(cmd.OutOrStdout(), format, descriptors)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(FormatTable), "output format (table, json, yaml)")
	return cmd
}

type listFlags struct {
	query        string
	searchFields []string
	filters      []string
	sort         string
	page         int
	perPage      int
	clamp        bool
	output       string
}

func (r *root) listCommand() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list <dataset>",
		Short: "Print one page of a dataset",
		Example: `  backoffice list invoices --filter status=Paid --sort amount:desc
  backoffice list quote_review -q acme --per-page 5 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(f.output)
			if err != nil {
				return err
			}
			values, err := f.values()
			if err != nil {
				return err
			}
			q, err := api.ParseListQuery(values, 0)
			if err != nil {
				return err
			}

			reg, cfg, closeFn, err := r.openDatasets(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			ds, ok := reg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown dataset %q (available: %s)", args[0], strings.Join(reg.Names(), ", "))
			}
			desc := ds.Describe()
			view := screenView(desc, q, cfg.Listing.DefaultItemsPerPage)
			res, err := ds.List(cmd.Context(), viewQuery(view, q))
			if err != nil {
				return err
			}
			if f.clamp && view.Reconcile(res.TotalItems) != res.CurrentPage {
				if res, err = ds.List(cmd.Context(), viewQuery(view, q)); err != nil {
					return err
				}
			}
			return renderResult(cmd.OutOrStdout(), format, desc, res)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.query, "query", "q", "", "search text")
	flags.StringSliceVar(&f.searchFields, "search-fields", nil, "restrict search to these fields")
	flags.StringArrayVarP(&f.filters, "filter", "f", nil, "filter as key=v1,v2 (repeatable)")
	flags.StringVarP(&f.sort, "sort", "s", "", "sort as field or field:desc")
	flags.IntVar(&f.page, "page", 0, "page number")
	flags.IntVar(&f.perPage, "per-page", 0, "items per page")
	flags.BoolVar(&f.clamp, "clamp", false, "show the last page instead of an empty one when --page is past the end")
	flags.StringVarP(&f.output, "output", "o", string(FormatTable), "output format (table, json, yaml)")
	return cmd
}

// screenView applies a parsed query to a fresh view of the dataset's screen,
// the same sequence of control changes a list screen makes.
func screenView(desc dataset.Descriptor, q listing.Query, defaultPerPage int) *listing.View {
	view := listing.NewView(desc.Filters, desc.DefaultSort, defaultPerPage)
	view.SetSearch(q.Search)
	for _, c := range q.Filters {
		view.SetFilter(c.ID, c.Values...)
	}
	if q.Sort.Field != "" {
		view.SetSort(q.Sort)
	}
	if q.Page.ItemsPerPage > 0 {
		view.SetItemsPerPage(q.Page.ItemsPerPage)
	}
	view.SetPage(q.Page.CurrentPage)
	return view
}

// viewQuery snapshots the view, keeping the search field restriction the
// view does not track.
func viewQuery(view *listing.View, q listing.Query) listing.Query {
	out := view.Query()
	out.SearchFields = q.SearchFields
	return out
}

// values renders the flags as the query string the HTTP API accepts.
func (f listFlags) values() (url.Values, error) {
	values := url.Values{}
	if f.query != "" {
		values.Set(api.ParamSearch, f.query)
	}
	if len(f.searchFields) > 0 {
		values.Set(api.ParamSearchFields, strings.Join(f.searchFields, ","))
	}
	for _, raw := range f.filters {
		key, value, ok := strings.Cut(raw, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", raw)
		}
		values.Add(api.FilterPrefix+strings.TrimSpace(key), value)
	}
	if f.sort != "" {
		values.Set(api.ParamSort, f.sort)
	}
	if f.page != 0 {
		values.Set(api.ParamPage, strconv.Itoa(f.page))
	}
	if f.perPage != 0 {
		values.Set(api.ParamPerPage, strconv.Itoa(f.perPage))
	}
	return values, nil
}

func (r *root) configCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := r.loadConfig(cmd.Flags()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	})

	var showSecrets bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := r.loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			if !showSecrets {
				cfg = cfg.Redacted()
			}
			data, err := yaml.Marshal(cfg.Map())
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	showCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show credentials in connection URLs")
	configCmd.AddCommand(showCmd)
	return configCmd
}

func (r *root) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Current(r.opts.Name)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Service:    %s\n", info.Service)
			fmt.Fprintf(out, "Version:    %s\n", info.Version)
			fmt.Fprintf(out, "Commit:     %s\n", info.Commit)
			fmt.Fprintf(out, "Build Time: %s\n", info.BuildTime)
		},
	}
}

// Execute runs the command and exits non-zero on error.
func Execute(cmd *cobra.Command) {
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		}
		os.Exit(1)
	}
}
