package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"stormscrape/internal/extractor"
	"stormscrape/internal/formatter"
	"stormscrape/internal/llm"
	"stormscrape/internal/output"
	"stormscrape/internal/prompt"
	"stormscrape/internal/reply"
	"stormscrape/internal/scraper"
)

// Config holds everything one run needs besides its collaborators.
type Config struct {
	URL         string
	Selector    string
	Columns     extractor.Columns
	DataFormat  string
	Instruction string
	OutputPath  string
	Fetch       scraper.Options

	// ShowReply writes the cleaned model reply to Stdout before parsing.
	ShowReply bool
	// Preview writes the parsed rows to Stdout as a table.
	Preview bool
	Stdout  io.Writer
}

// Result summarizes a completed run.
type Result struct {
	Records    int
	Rows       int
	OutputPath string
}

// StageError records which step of the run failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Run fetches the page, extracts the records, asks the model to reshape them,
// recognizes the table in its reply and writes it to cfg.OutputPath. The
// output file is only touched once every earlier step has succeeded.
func Run(ctx context.Context, cfg Config, fetcher scraper.Scraper, transformer llm.Transformer) (*Result, error) {
	if cfg.Selector == "" {
		cfg.Selector = extractor.DefaultSelector
	}
	if cfg.Columns == (extractor.Columns{}) {
		cfg.Columns = extractor.DefaultColumns
	}
	if cfg.DataFormat == "" {
		cfg.DataFormat = "text"
	}
	if cfg.Instruction == "" {
		cfg.Instruction = prompt.DefaultInstruction
	}

	slog.InfoContext(ctx, "fetching page", "url", cfg.URL, "backend", fetcher.Name())
	doc, err := fetcher.Fetch(ctx, cfg.URL, cfg.Fetch)
	if err != nil {
		return nil, &StageError{Stage: "fetch", Err: err}
	}
	slog.DebugContext(ctx, "page fetched", "url", doc.URL, "status", doc.StatusCode, "load_time", doc.LoadTime)

	extracted, err := extractor.Extract(doc.Document, cfg.Selector, cfg.Columns)
	if err != nil {
		return nil, &StageError{Stage: "extract", Err: err}
	}
	slog.InfoContext(ctx, "extracted records", "records", len(extracted.Records), "columns", extracted.Headers)

	data, err := formatter.Format(extracted, cfg.DataFormat)
	if err != nil {
		return nil, &StageError{Stage: "extract", Err: err}
	}
	payload := prompt.Compose(data, cfg.Instruction)

	slog.InfoContext(ctx, "waiting for model reply")
	raw, err := llm.Collect(ctx, transformer, llm.DefaultRequest(payload.String()))
	if err != nil {
		return nil, &StageError{Stage: "transform", Err: err}
	}
	cleaned := reply.Clean(raw)
	slog.DebugContext(ctx, "model reply received", "bytes", len(cleaned))

	if cfg.ShowReply && cfg.Stdout != nil {
		fmt.Fprintln(cfg.Stdout, cleaned)
	}

	table, err := reply.Parse(cleaned)
	if err != nil {
		return nil, &StageError{Stage: "parse", Err: err}
	}

	if cfg.Preview && cfg.Stdout != nil {
		fmt.Fprintln(cfg.Stdout, formatter.Preview(output.Fields, table.Rows))
	}

	if err := output.WriteFile(cfg.OutputPath, table); err != nil {
		return nil, &StageError{Stage: "save", Err: err}
	}
	slog.InfoContext(ctx, "data has been saved", "path", cfg.OutputPath, "rows", len(table.Rows))

	return &Result{
		Records:    len(extracted.Records),
		Rows:       len(table.Rows),
		OutputPath: cfg.OutputPath,
	}, nil
}

// IsTableNotFound reports whether err means the model reply held no usable table.
func IsTableNotFound(err error) bool {
	return errors.Is(err, reply.ErrTableNotFound)
}
