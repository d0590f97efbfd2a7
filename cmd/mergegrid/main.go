package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/hylla/mergegrid/internal/adapters/server"
	"github.com/hylla/mergegrid/internal/adapters/server/common"
	"github.com/hylla/mergegrid/internal/app"
	"github.com/hylla/mergegrid/internal/config"
	"github.com/hylla/mergegrid/internal/domain"
	"github.com/hylla/mergegrid/internal/platform"
	"github.com/hylla/mergegrid/internal/rangeref"
	"github.com/hylla/mergegrid/internal/textgrid"
	"github.com/hylla/mergegrid/internal/tui"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

// program is the part of tea.Program the CLI drives.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the TUI program; tests swap it for a fake.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveRunner runs the HTTP server; tests swap it for a fake.
var serveRunner = server.Run

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := fang.Execute(ctx, newRootCommand(os.Stdout, os.Stderr), fang.WithVersion(version))
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run executes one CLI invocation with explicit args and writers.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// cliOptions holds flag values shared by every command.
type cliOptions struct {
	configPath string
	appName    string
	devMode    bool
	width      string
	height     string
	stdout     io.Writer
	stderr     io.Writer
}

// newRootCommand builds the command tree; the root command runs the TUI.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &cliOptions{stdout: stdout, stderr: stderr}

	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("MERGEGRID_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	appName := "mergegrid"
	if envApp := strings.TrimSpace(os.Getenv("MERGEGRID_APP_NAME")); envApp != "" {
		appName = envApp
	}

	root := &cobra.Command{
		Use:           "mergegrid",
		Short:         "Select, merge, and separate cells on a grid",
		Long:          "mergegrid shows a grid of cells. Drag with the mouse to select a range, then merge it into one spanning cell or separate merged cells back into units.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(opts)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.appName, "app", appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	flags.StringVar(&opts.width, "width", "", "grid width in columns (overrides config)")
	flags.StringVar(&opts.height, "height", "", "grid height in rows (overrides config)")

	root.AddCommand(
		newServeCommand(opts),
		newLayoutCommand(opts),
		newPathsCommand(opts),
	)
	return root
}

// runtimeEnv is the resolved state shared by commands that need config and logging.
type runtimeEnv struct {
	cfg        config.Config
	paths      platform.Paths
	configPath string
	logger     *runtimeLogger
	stderr     io.Writer
}

// resolvePaths resolves platform paths and the effective config path.
func (o *cliOptions) resolvePaths() (platform.Paths, string, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
	if err != nil {
		return platform.Paths{}, "", err
	}
	configPath := strings.TrimSpace(o.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("MERGEGRID_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	return paths, configPath, nil
}

// bootstrap loads config, applies dimension overrides, and starts the runtime logger.
func (o *cliOptions) bootstrap(command string) (*runtimeEnv, error) {
	paths, configPath, err := o.resolvePaths()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath, config.Default())
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	cfg.Grid.Width = config.ParseDimension(o.width, cfg.Grid.Width, cfg.Grid.MaxWidth)
	cfg.Grid.Height = config.ParseDimension(o.height, cfg.Grid.Height, cfg.Grid.MaxHeight)
	if strings.TrimSpace(cfg.Logging.DevFile.Dir) == "" {
		cfg.Logging.DevFile.Dir = paths.LogDir
	}

	logger, err := newRuntimeLogger(o.stderr, o.appName, o.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// The TUI owns the terminal; runtime logs go to the dev-file sink only.
		logger.SetConsoleEnabled(false)
	}

	logger.Info("startup configuration resolved", "app", o.appName, "dev_mode", o.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "log_dir", paths.LogDir)
	logger.Info("configuration loaded", "config_path", configPath, "width", cfg.Grid.Width, "height", cfg.Grid.Height, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return &runtimeEnv{
		cfg:        cfg,
		paths:      paths,
		configPath: configPath,
		logger:     logger,
		stderr:     o.stderr,
	}, nil
}

// close releases the log sinks.
func (e *runtimeEnv) close() {
	if closeErr := e.logger.Close(); closeErr != nil && e.logger.ConsoleEnabled() {
		_, _ = fmt.Fprintf(e.stderr, "warning: close runtime log sink: %v\n", closeErr)
	}
}

// runTUI runs the interactive grid until the user quits.
func runTUI(opts *cliOptions) error {
	env, err := opts.bootstrap("tui")
	if err != nil {
		return err
	}
	defer env.close()

	ctrl := app.NewController(env.cfg.Grid.Width, env.cfg.Grid.Height, uuid.NewString)
	m := tui.NewModel(
		ctrl,
		tui.WithKeyConfig(tui.KeyConfig{
			Merge:     env.cfg.Keys.Merge,
			Separate:  env.cfg.Keys.Separate,
			CopyRange: env.cfg.Keys.CopyRange,
			Clear:     env.cfg.Keys.Clear,
			Help:      env.cfg.Keys.Help,
		}),
		tui.WithUIConfig(tui.UIConfig{
			CellWidth:  env.cfg.UI.CellWidth,
			ShowLabels: env.cfg.UI.ShowLabels,
		}),
		tui.WithLogger(env.logger),
	)
	env.logger.Info("starting tui program loop", "width", env.cfg.Grid.Width, "height", env.cfg.Grid.Height)
	if _, err := programFactory(m).Run(); err != nil {
		env.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	env.logger.Info("command flow complete", "command", "tui")
	return nil
}

// newServeCommand builds `serve`.
func newServeCommand(opts *cliOptions) *cobra.Command {
	var (
		httpBind    string
		apiEndpoint string
		mcpEndpoint string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grid page, JSON API, and MCP tools over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.bootstrap("serve")
			if err != nil {
				return err
			}
			defer env.close()

			flags := cmd.Flags()
			if flags.Changed("http") {
				env.cfg.Server.HTTPBind = httpBind
			}
			if flags.Changed("api-endpoint") {
				env.cfg.Server.APIEndpoint = apiEndpoint
			}
			if flags.Changed("mcp-endpoint") {
				env.cfg.Server.MCPEndpoint = mcpEndpoint
			}

			svc := app.NewService(uuid.NewString, time.Now, env.logger, app.ServiceConfig{
				Width:     env.cfg.Grid.Width,
				Height:    env.cfg.Grid.Height,
				MaxWidth:  env.cfg.Grid.MaxWidth,
				MaxHeight: env.cfg.Grid.MaxHeight,
			})
			env.logger.Info(
				"command flow start",
				"command", "serve",
				"http_bind", env.cfg.Server.HTTPBind,
				"api_endpoint", env.cfg.Server.APIEndpoint,
				"mcp_endpoint", env.cfg.Server.MCPEndpoint,
			)
			err = serveRunner(cmd.Context(), server.Config{
				HTTPBind:      env.cfg.Server.HTTPBind,
				APIEndpoint:   env.cfg.Server.APIEndpoint,
				MCPEndpoint:   env.cfg.Server.MCPEndpoint,
				ServerName:    opts.appName,
				ServerVersion: version,
			}, server.Dependencies{
				Grid: common.NewAppServiceAdapter(svc),
			})
			if err != nil {
				env.logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run serve command: %w", err)
			}
			env.logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "HTTP bind address (overrides server.http_bind)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "JSON API mount path (overrides server.api_endpoint)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP mount path (overrides server.mcp_endpoint)")
	return cmd
}

// newLayoutCommand builds `layout`.
func newLayoutCommand(opts *cliOptions) *cobra.Command {
	var (
		merges []string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "layout",
		Short:   "Merge ranges non-interactively and print the resulting grid",
		Example: "mergegrid layout --width 4 --height 3 --merge A1:B2 --merge C3:D3",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := opts.bootstrap("layout")
			if err != nil {
				return err
			}
			defer env.close()

			ctrl := app.NewController(env.cfg.Grid.Width, env.cfg.Grid.Height, uuid.NewString)
			if err := applyMerges(ctrl, merges); err != nil {
				env.logger.Error("command flow failed", "command", "layout", "err", err)
				return fmt.Errorf("run layout command: %w", err)
			}
			env.logger.Info("command flow complete", "command", "layout", "merges", len(merges))

			out := cmd.OutOrStdout()
			if asJSON {
				encoded, err := json.MarshalIndent(app.Snapshot(ctrl), "", "  ")
				if err != nil {
					return fmt.Errorf("encode layout json: %w", err)
				}
				_, err = fmt.Fprintf(out, "%s\n", encoded)
				return err
			}
			return writeLayout(out, ctrl, env.cfg.UI)
		},
	}
	cmd.Flags().StringArrayVar(&merges, "merge", nil, "A1 range to merge, applied in order (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the grid state as JSON")
	return cmd
}

// applyMerges validates every range first, then merges them in order.
func applyMerges(ctrl *app.Controller, ranges []string) error {
	grid := ctrl.Grid()
	parsed := make([]domain.Selection, 0, len(ranges))
	var multiE *multierror.Error
	for _, raw := range ranges {
		sel, err := rangeref.Parse(raw)
		if err != nil {
			multiE = multierror.Append(multiE, fmt.Errorf("--merge %q: %w", raw, err))
			continue
		}
		if !grid.InBounds(sel.From) || !grid.InBounds(sel.To) {
			multiE = multierror.Append(multiE, fmt.Errorf("--merge %q: %w", raw, domain.ErrOutOfBounds))
			continue
		}
		parsed = append(parsed, sel)
	}
	if err := multiE.ErrorOrNil(); err != nil {
		return err
	}

	for i, sel := range parsed {
		if _, err := ctrl.SelectRange(sel.From, sel.To); err != nil {
			return fmt.Errorf("select %q: %w", ranges[i], err)
		}
		if _, err := ctrl.MergeCells(); err != nil {
			return fmt.Errorf("merge %q: %w", ranges[i], err)
		}
	}
	ctrl.ClearSelection()
	return nil
}

// writeLayout prints the merge groups as a table followed by the drawn grid.
func writeLayout(w io.Writer, ctrl *app.Controller, ui config.UIConfig) error {
	groups := ctrl.Grid().Groups()
	if len(groups) == 0 {
		if _, err := fmt.Fprintln(w, "no merged cells"); err != nil {
			return err
		}
	} else {
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"#", "Range", "Rows", "Cols"})
		for i, group := range groups {
			table.Append([]string{
				strconv.Itoa(i + 1),
				rangeref.MustFormat(group),
				strconv.Itoa(group.Rows()),
				strconv.Itoa(group.Cols()),
			})
		}
		table.Render()
	}

	canvas := textgrid.Render(ctrl.Layout(), textgrid.Options{
		CellWidth:  ui.CellWidth,
		ShowLabels: ui.ShowLabels,
	})
	_, err := fmt.Fprintln(w, canvas.Plain())
	return err
}

// newPathsCommand builds `paths`.
func newPathsCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and log locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, configPath, err := opts.resolvePaths()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", configPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(out, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

// parseBoolEnv reads one boolean environment variable; ok is false when unset or malformed.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
