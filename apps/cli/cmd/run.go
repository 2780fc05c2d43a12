package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/hitcheck/packages/core/config"
	"github.com/abdul-hamid-achik/hitcheck/packages/http"
	"github.com/abdul-hamid-achik/hitcheck/packages/output"
	"github.com/abdul-hamid-achik/hitcheck/packages/suite"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <suite.yaml|directory>...",
	Short: "Run suites and report their checks",
	Long: `Run the suites found in the given files and directories.

Examples:
  hitcheck run products.yaml
  hitcheck run ./checks/ -v
  hitcheck run ./checks/ --reporter tap --strict
  hitcheck run products.yaml --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	configFlag      string
	verboseFlag     bool
	noColorFlag     bool
	reporterFlag    string
	timeoutFlag     string
	strictFlag      bool
	watchFlag       bool
	proxyFlag       string
	insecureFlag    bool
	concurrencyFlag int
)

func init() {
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("HITCHECK_CONFIG", ""), "Path to config file (env: HITCHECK_CONFIG)")

	// Output flags
	runCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("HITCHECK_VERBOSE", false), "Dump every response after its checks (env: HITCHECK_VERBOSE)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("HITCHECK_NO_COLOR", false), "Disable colored output (env: HITCHECK_NO_COLOR)")
	runCmd.Flags().StringVarP(&reporterFlag, "reporter", "r", getEnvString("HITCHECK_REPORTER", ""), "Reporter: console, log, tap (env: HITCHECK_REPORTER)")

	// Execution flags
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("HITCHECK_TIMEOUT", ""), "Request timeout (e.g., 30s, 1m) (env: HITCHECK_TIMEOUT)")
	runCmd.Flags().BoolVar(&strictFlag, "strict", getEnvBool("HITCHECK_STRICT", false), "Fail assertions on rules that were never registered (env: HITCHECK_STRICT)")
	runCmd.Flags().IntVar(&concurrencyFlag, "concurrency", getEnvInt("HITCHECK_CONCURRENCY", 0), "Load concurrency for suites that leave it unset (env: HITCHECK_CONCURRENCY)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run suites")

	// Network flags
	runCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("HITCHECK_PROXY", ""), "Proxy URL for HTTP requests (env: HITCHECK_PROXY)")
	runCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("HITCHECK_INSECURE", false), "Disable SSL certificate validation (env: HITCHECK_INSECURE)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// flagConfig collects the settings given on the command line or through the
// environment. Unset values stay zero so Merge keeps the file configuration.
func flagConfig(cmd *cobra.Command) (*config.Config, error) {
	set := func(name, env string) bool {
		return cmd.Flags().Changed(name) || os.Getenv(env) != ""
	}

	cfg := &config.Config{
		Reporter:    reporterFlag,
		Proxy:       proxyFlag,
		Concurrency: concurrencyFlag,
	}
	if timeoutFlag != "" {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
		}
		cfg.Timeout = int(timeout.Milliseconds())
	}
	if set("verbose", "HITCHECK_VERBOSE") {
		cfg.Verbose = config.BoolPtr(verboseFlag)
	}
	if set("no-color", "HITCHECK_NO_COLOR") {
		cfg.NoColor = config.BoolPtr(noColorFlag)
	}
	if set("strict", "HITCHECK_STRICT") {
		cfg.Strict = config.BoolPtr(strictFlag)
	}
	if insecureFlag {
		cfg.ValidateSSL = config.BoolPtr(false)
	}
	return cfg, cfg.Validate()
}

func runCommand(cmd *cobra.Command, args []string) error {
	overrides, err := flagConfig(cmd)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}

	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return exitWith(ExitConfigError, err)
	}
	cfg := fileConfig.Merge(overrides)

	files, err := collectFiles(args)
	if err != nil {
		return exitWith(ExitUsageError, err)
	}
	if len(files) == 0 {
		return exitWith(ExitUsageError, fmt.Errorf("no .yaml or .yml suite files found"))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	code := runFiles(ctx, out, files, cfg)
	if !watchFlag {
		if code != ExitSuccess {
			return exitWith(code, nil)
		}
		return nil
	}

	return watch(ctx, out, args, files, cfg)
}

// runFiles loads and runs every suite once and returns the exit code the run
// deserves.
func runFiles(ctx context.Context, out io.Writer, files []string, cfg *config.Config) int {
	reporter, err := output.New(output.Kind(cfg.Reporter), out, cfg.GetNoColor())
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return ExitConfigError
	}

	suites := make([]*suite.Suite, 0, len(files))
	for _, file := range files {
		s, err := suite.Load(file)
		if err != nil {
			reporter.WriteError(err)
			return ExitParseError
		}
		applyDefaults(s, cfg)
		suites = append(suites, s)
	}

	runner := suite.NewRunner(
		suite.WithClient(newClient(cfg)),
		suite.WithReporter(reporter),
		suite.WithVerbose(cfg.GetVerbose()),
		suite.WithStrict(cfg.GetStrict()),
	)

	start := time.Now()
	results, err := runner.RunAll(ctx, suites)
	if err != nil {
		reporter.WriteError(err)
	}

	passed, failed := 0, 0
	networkError := false
	for _, res := range results {
		if res.Passed {
			passed++
			continue
		}
		failed++
		if errors.Is(res.Err, suite.ErrRequestFailed) {
			networkError = true
		}
	}
	reporter.WriteSummary(passed, failed, time.Since(start))

	switch {
	case failed == 0 && err == nil:
		return ExitSuccess
	case networkError:
		return ExitNetworkError
	default:
		return ExitTestFailure
	}
}

// applyDefaults fills what the suite leaves unset from the configuration.
func applyDefaults(s *suite.Suite, cfg *config.Config) {
	if len(cfg.Headers) > 0 {
		headers := make(map[string]string, len(cfg.Headers)+len(s.Request.Headers))
		for k, v := range cfg.Headers {
			headers[k] = v
		}
		for k, v := range s.Request.Headers {
			headers[k] = v
		}
		s.Request.Headers = headers
	}
	if s.Load != nil && s.Load.Concurrency == 0 {
		s.Load.Concurrency = cfg.Concurrency
	}
}

func newClient(cfg *config.Config) *http.Client {
	opts := []http.ClientOption{
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithValidateSSL(cfg.GetValidateSSL()),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, http.WithTimeout(cfg.TimeoutDuration()))
	}
	if cfg.MaxRedirects > 0 {
		opts = append(opts, http.WithMaxRedirects(cfg.MaxRedirects))
	}
	if cfg.Proxy != "" {
		opts = append(opts, http.WithProxy(cfg.Proxy))
	}
	return http.NewClient(opts...)
}

func watch(ctx context.Context, out io.Writer, args, files []string, cfg *config.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				fmt.Fprintf(out, "Error: failed to watch %s: %v\n", dir, err)
			}
			watchedDirs[dir] = true
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() && !watchedDirs[path] {
					_ = watcher.Add(path)
					watchedDirs[path] = true
				}
				return nil
			})
		}
	}

	fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var reruns serialRuns
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isSuiteFile(event.Name) && !isSchemaFile(event.Name) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := event.Name
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				reruns.run(func() {
					fmt.Fprintf(out, "\n\nFile changed: %s\nRe-running suites...\n\n", name)

					current, err := collectFiles(args)
					if err != nil {
						fmt.Fprintf(out, "Error: %v\n", err)
						return
					}
					runFiles(ctx, out, current, cfg)

					fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")
				})
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(out, "Error: watcher error: %v\n", err)
		}
	}
}

// serialRuns runs one function at a time. A call made while another run is in
// flight waits for it to finish.
type serialRuns struct {
	mu sync.Mutex
}

func (r *serialRuns) run(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isSuiteFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if isSuiteFile(arg) {
			files = append(files, arg)
		}
	}

	return files, nil
}

// isSuiteFile reports YAML files other than hitcheck configuration files.
func isSuiteFile(path string) bool {
	base := filepath.Base(path)
	for _, name := range config.ConfigFilenames {
		if base == name {
			return false
		}
	}
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}

func isSchemaFile(path string) bool {
	return filepath.Ext(path) == ".json"
}
