package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"stormscrape/internal/config"
	"stormscrape/internal/extractor"
	"stormscrape/internal/formatter"
	"stormscrape/internal/llm"
	"stormscrape/internal/pipeline"
	"stormscrape/internal/scraper"
	_ "stormscrape/internal/sites/direct"
	_ "stormscrape/internal/sites/headless"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var version = "dev"

const defaultURL = "https://en.wikipedia.org/wiki/1975_Atlantic_hurricane_season"

var (
	outputFile string
	selector   string
	backend    string
	userAgent  string
	headers    []string
	timeout    time.Duration
	proxyURL   string
	showUI     bool
	provider   string
	model      string
	replyFile  string
	question   string
	dataFormat string
	showReply  bool
	preview    bool
	configPath string
	verbose    bool

	// populated from the config file in setup
	fileCfg config.File
	columns extractor.Columns
	dotEnv  config.Env
)

func main() {
	var rootCmd = &cobra.Command{
		Use:     "stormscrape [URL]",
		Short:   "Scrape a storm table and have a language model reshape it into CSV",
		Version: version,
		Long: `stormscrape fetches a web page, extracts the storm summary table, asks a
hosted language model to restate it as a Storm Name / Date Start / Date End /
Areas Affected / Deaths table and saves the rows the model returned as CSV.

The model's reply must contain the exact table header and separator shown in
the prompt; otherwise nothing is written.`,
		Example: `  # 1975 Atlantic season through Replicate (REPLICATE_API_TOKEN must be set)
  stormscrape

  # Another season, rendered in a browser, through OpenAI
  stormscrape -b browser --provider openai https://en.wikipedia.org/wiki/1976_Atlantic_hurricane_season

  # Re-parse a saved reply without calling a model
  stormscrape --reply-file reply.txt -o out.csv

  # Inspect the tables a selector matches
  stormscrape tables -s "table.wikitable"`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: setup,
		RunE:              run,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&selector, "selector", "s", extractor.DefaultSelector, "CSS selector of the target table (first match is used)")
	pf.StringVarP(&backend, "backend", "b", "http", "Fetch backend ("+strings.Join(scraper.Names(), ", ")+")")
	pf.StringVarP(&userAgent, "user-agent", "A", scraper.DefaultUserAgent, "User-Agent header sent with the page request")
	pf.StringSliceVarP(&headers, "header", "H", []string{}, "Extra HTTP headers (can be used multiple times)")
	pf.DurationVarP(&timeout, "timeout", "t", 30*time.Second, "Page fetch timeout (0 disables)")
	pf.StringVarP(&proxyURL, "proxy", "p", "", "Proxy URL, defaults to STORMSCRAPE_PROXY env var")
	pf.BoolVar(&showUI, "showui", false, "Show browser UI (browser backend only)")
	pf.StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file (JSON5); <name>.local.json5 overrides it")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logs")

	f := rootCmd.Flags()
	f.StringVarP(&outputFile, "output", "o", "hurricanes_1975.csv", "Output CSV path (overwritten)")
	f.StringVar(&provider, "provider", "replicate", "Model provider ("+strings.Join(llm.Providers, ", ")+")")
	f.StringVar(&model, "model", "", "Model identifier (provider default if empty)")
	f.StringVar(&replyFile, "reply-file", "", "Use a saved model reply instead of calling a provider")
	f.StringVarP(&question, "question", "q", "", "Instruction sent with the data (default: built-in question)")
	f.StringVarP(&dataFormat, "data-format", "f", "text", "How records are rendered in the prompt ("+strings.Join(formatter.Formats, ", ")+")")
	f.BoolVar(&showReply, "show-reply", true, "Print the model reply to stdout")
	f.BoolVar(&preview, "preview", false, "Print the parsed rows as a table")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "tables [URL]",
		Short: "List the tables matching --selector with their discovered headers",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTables,
	})

	if err := rootCmd.Execute(); err != nil {
		if pipeline.IsTableNotFound(err) {
			slog.Error("error extracting table", "err", err)
			os.Exit(2)
		}
		slog.Error("terminating", "err", err)
		os.Exit(1)
	}
}

func initSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

func setup(cmd *cobra.Command, args []string) error {
	initSlog(verbose)
	dotEnv = config.LoadDotEnv(".env")

	var err error
	fileCfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	applyFileConfig(cmd, fileCfg)
	if proxyURL == "" {
		proxyURL = dotEnv.Getenv("STORMSCRAPE_PROXY")
	}

	columns, err = fileCfg.ColumnsOrDefault()
	if err != nil {
		return fmt.Errorf("failed to resolve columns: %w", err)
	}
	return nil
}

// applyFileConfig copies config file values into flags the user did not set.
func applyFileConfig(cmd *cobra.Command, f config.File) {
	flags := cmd.Flags()
	set := func(name string, dst *string, v string) {
		if v != "" && !flags.Changed(name) {
			*dst = v
		}
	}
	set("output", &outputFile, f.Output)
	set("selector", &selector, f.Selector)
	set("backend", &backend, f.Backend)
	set("user-agent", &userAgent, f.UserAgent)
	set("proxy", &proxyURL, f.Proxy)
	set("question", &question, f.Question)
	set("data-format", &dataFormat, f.DataFormat)
	set("provider", &provider, f.LLM.Provider)
	set("model", &model, f.LLM.Model)
	set("reply-file", &replyFile, f.LLM.ReplyFile)
}

func run(cmd *cobra.Command, args []string) error {
	if err := validateFlags(); err != nil {
		return err
	}

	s, ok := scraper.Get(backend)
	if !ok {
		return fmt.Errorf("unknown backend: %s", backend)
	}

	transformer, err := llm.New(llmSettings())
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	_, err = pipeline.Run(ctx, pipeline.Config{
		URL:         targetURL(args),
		Selector:    selector,
		Columns:     columns,
		DataFormat:  dataFormat,
		Instruction: question,
		OutputPath:  outputFile,
		Fetch:       fetchOptions(),
		ShowReply:   showReply,
		Preview:     preview,
		Stdout:      cmd.OutOrStdout(),
	}, s, transformer)
	return err
}

func runTables(cmd *cobra.Command, args []string) error {
	s, ok := scraper.Get(backend)
	if !ok {
		return fmt.Errorf("unknown backend: %s", backend)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	target := targetURL(args)
	doc, err := s.Fetch(ctx, target, fetchOptions())
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	infos, err := extractor.Tables(doc.Document, selector)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, info := range infos {
		fmt.Fprintf(out, "# Table %d", info.Index)
		if info.Caption != "" {
			fmt.Fprintf(out, ": %s", info.Caption)
		}
		fmt.Fprintf(out, "\n\ncolumns: %q\nrows: %d\n\n%s\n\n", info.Headers, info.Rows, info.Markdown)
	}
	return nil
}

func validateFlags() error {
	if !slices.Contains(formatter.Formats, dataFormat) {
		return fmt.Errorf("invalid data format: %s", dataFormat)
	}
	if replyFile == "" && !slices.Contains(llm.Providers, provider) {
		return fmt.Errorf("invalid provider: %s", provider)
	}
	if timeout < 0 {
		return fmt.Errorf("invalid timeout: %s", timeout)
	}
	if outputFile == "" {
		return fmt.Errorf("--output must not be empty")
	}
	return nil
}

func llmSettings() llm.Settings {
	s := llm.Settings{
		Provider:  provider,
		Model:     model,
		APIKey:    fileCfg.LLM.APIKey,
		BaseURL:   fileCfg.LLM.BaseURL,
		ReplyFile: replyFile,
	}
	if replyFile != "" {
		s.Provider = "canned"
	}
	s.APIKey = config.ResolveAPIKey(s, dotEnv.Getenv)
	return s
}

func fetchOptions() scraper.Options {
	return scraper.Options{
		UserAgent: userAgent,
		Headers:   parseHeaders(headers),
		Timeout:   timeout,
		ProxyURL:  proxyURL,
		ShowUI:    showUI,
	}
}

func targetURL(args []string) string {
	if len(args) > 0 {
		return scraper.NormalizeURL(args[0])
	}
	if fileCfg.URL != "" {
		return scraper.NormalizeURL(fileCfg.URL)
	}
	return defaultURL
}

// parseHeaders parses "Key: Value" request header parameters
func parseHeaders(headerSlice []string) map[string]string {
	headersMap := make(map[string]string)
	for _, h := range headerSlice {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			if key != "" {
				headersMap[key] = value
			}
		}
	}
	return headersMap
}
