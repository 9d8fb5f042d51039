// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/labelmap"
	"github.com/poiesic/labelmap/ai"
	"github.com/poiesic/labelmap/api"
	"github.com/poiesic/labelmap/core"
	"github.com/poiesic/labelmap/dailymed"
	"github.com/poiesic/labelmap/extract"
	"github.com/poiesic/labelmap/match"
	"github.com/poiesic/labelmap/storage/badger"
	"github.com/poiesic/labelmap/synonym"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "labelmap",
		Usage: "Map drug label indications to ICD-10 codes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LABELMAP_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from a dotenv file",
			},
		},
		Before: before,
		Commands: []*cli.Command{
			{
				Name:   "load-catalog",
				Usage:  "Load an ICD-10 catalog CSV into the store",
				Action: loadCatalogCommand,
				Flags: append(storeFlags(),
					&cli.StringFlag{
						Name:     "csv",
						Usage:    "Path to the catalog CSV",
						EnvVars:  []string{"LABELMAP_CATALOG"},
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Reload even when a checkpoint says the catalog is loaded",
					},
				),
			},
			{
				Name:      "extract",
				Usage:     "Extract a label section from a file, stdin or DailyMed",
				ArgsUsage: "[file|-]",
				Action:    extractCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Section kind (indications, directions)",
						Value: "indications",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Document format (xml, html)",
						Value: "xml",
					},
					&cli.StringFlag{
						Name:  "set-id",
						Usage: "Fetch the label with this set id from DailyMed instead of reading a file",
					},
					dailyMedURLFlag(),
					labelURLFlag(),
				},
			},
			{
				Name:      "match",
				Usage:     "Rank catalog entries against indication text",
				ArgsUsage: "<text>",
				Action:    matchCommand,
				Flags: append(serviceFlags(),
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum score in [0,1]",
						Value: match.DefaultMappingThreshold,
					},
					&cli.IntFlag{
						Name:  "max",
						Usage: "Maximum number of matches",
						Value: match.DefaultMaxMappings,
					},
				),
			},
			{
				Name:      "map",
				Usage:     "Fetch, extract and map drug labels",
				ArgsUsage: "<drug>...",
				Action:    mapCommand,
				Flags: append(serviceFlags(),
					&cli.IntFlag{
						Name:  "page",
						Usage: "Map every drug on this page of the DailyMed drug name listing",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "List published labels for a drug",
				ArgsUsage: "<drug>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					dailyMedURLFlag(),
					labelURLFlag(),
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "DailyMed request timeout",
						Value: 30 * time.Second,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: append(serviceFlags(),
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						Value:   ":8080",
						EnvVars: []string{"LABELMAP_ADDR"},
					},
					&cli.StringFlag{
						Name:    "catalog",
						Usage:   "Catalog CSV to load before starting, if not loaded yet",
						EnvVars: []string{"LABELMAP_CATALOG"},
					},
				),
			},
		},
	}
}

func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   "./data",
			EnvVars: []string{"LABELMAP_DB"},
		},
		&cli.BoolFlag{
			Name:    "in-memory",
			Usage:   "Keep all state in memory",
			EnvVars: []string{"LABELMAP_IN_MEMORY"},
		},
	}
}

func dailyMedURLFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "dailymed-url",
		Usage:   "DailyMed REST services root",
		Value:   dailymed.DefaultBaseURL,
		EnvVars: []string{"LABELMAP_DAILYMED_URL"},
	}
}

func labelURLFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "label-url",
		Usage:   "DailyMed rendered label page root",
		Value:   dailymed.DefaultLabelURL,
		EnvVars: []string{"LABELMAP_LABEL_URL"},
	}
}

func serviceFlags() []cli.Flag {
	return append(storeFlags(),
		dailyMedURLFlag(),
		labelURLFlag(),
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "DailyMed request timeout",
			Value:   30 * time.Second,
			EnvVars: []string{"LABELMAP_TIMEOUT"},
		},
		&cli.DurationFlag{
			Name:    "label-ttl",
			Usage:   "How long mapped labels stay cached",
			Value:   badger.DefaultLabelTTL,
			EnvVars: []string{"LABELMAP_LABEL_TTL"},
		},
		&cli.StringFlag{
			Name:    "synonyms",
			Usage:   "YAML synonym table replacing the built-in one",
			EnvVars: []string{"LABELMAP_SYNONYMS"},
		},
		&cli.Float64Flag{
			Name:    "synonym-threshold",
			Usage:   "Minimum similarity for a synonym key to apply",
			Value:   synonym.DefaultThreshold,
			EnvVars: []string{"LABELMAP_SYNONYM_THRESHOLD"},
		},
		&cli.IntFlag{
			Name:    "pool-size",
			Usage:   "Workers for bulk label mapping (0 uses half the CPUs)",
			EnvVars: []string{"LABELMAP_POOL_SIZE"},
		},
		&cli.StringFlag{
			Name:    "similarity",
			Usage:   "Similarity backend (lexical, embedding)",
			Value:   ai.BackendLexical,
			EnvVars: []string{"LABELMAP_SIMILARITY"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"LABELMAP_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "nomic-embed-text",
			EnvVars: []string{"LABELMAP_EMBEDDING_MODEL"},
		},
	)
}

// configFromFlags builds a service config from whichever service flags
// the command defines.
func configFromFlags(c *cli.Context) *labelmap.Config {
	opts := []labelmap.ConfigOption{
		labelmap.WithDBPath(c.String("db")),
		labelmap.WithInMemory(c.Bool("in-memory")),
	}
	if c.String("dailymed-url") != "" {
		opts = append(opts, labelmap.WithDailyMedURL(c.String("dailymed-url")))
	}
	if c.String("label-url") != "" {
		opts = append(opts, labelmap.WithLabelURL(c.String("label-url")))
	}
	if c.Duration("timeout") > 0 {
		opts = append(opts, labelmap.WithTimeout(c.Duration("timeout")))
	}
	if c.IsSet("label-ttl") {
		opts = append(opts, labelmap.WithLabelTTL(c.Duration("label-ttl")))
	}
	if c.String("synonyms") != "" {
		opts = append(opts, labelmap.WithSynonymFile(c.String("synonyms")))
	}
	if c.IsSet("synonym-threshold") {
		opts = append(opts, labelmap.WithSynonymThreshold(float32(c.Float64("synonym-threshold"))))
	}
	if c.Int("pool-size") > 0 {
		opts = append(opts, labelmap.WithPoolSize(c.Int("pool-size")))
	}
	if c.String("similarity") != "" {
		opts = append(opts, labelmap.WithAIConfig(ai.NewConfig(
			ai.WithBackend(c.String("similarity")),
			ai.WithEmbeddingHost(c.String("embedding-host")),
			ai.WithEmbeddingModel(c.String("embedding-model")),
		)))
	}
	return labelmap.NewConfig(opts...)
}

func openService(c *cli.Context) (*labelmap.Service, error) {
	svc, err := labelmap.Open(configFromFlags(c))
	if err != nil {
		return nil, fmt.Errorf("failed to open service: %w", err)
	}
	return svc, nil
}

func startService(ctx context.Context, c *cli.Context) (*labelmap.Service, error) {
	svc, err := openService(c)
	if err != nil {
		return nil, err
	}
	if err := svc.Start(ctx); err != nil {
		svc.Close()
		if errors.Is(err, core.ErrEmptyCatalog) {
			return nil, fmt.Errorf("%w (run load-catalog first)", err)
		}
		return nil, err
	}
	return svc, nil
}

func loadCatalogCommand(c *cli.Context) error {
	ctx := c.Context

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	path := c.String("csv")
	fmt.Fprintf(os.Stderr, "Loading catalog from %s\n", path)

	cp, err := svc.LoadCatalog(ctx, path, c.Bool("force"), os.Stderr)
	if err != nil {
		return fmt.Errorf("catalog load failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "%d entries from %s (loaded %s)\n",
		cp.Count, cp.Source, cp.UpdatedAt.Format(time.RFC3339))
	return nil
}

func extractCommand(c *cli.Context) error {
	kind, err := core.ParseSectionKind(c.String("kind"))
	if err != nil {
		return fmt.Errorf("%w: %q", err, c.String("kind"))
	}

	format := strings.ToLower(c.String("format"))
	if format != "xml" && format != "html" {
		return fmt.Errorf("invalid format %q: must be xml or html", format)
	}

	doc, err := readDocument(c, format)
	if err != nil {
		return err
	}

	e := extract.NewExtractor()
	var fragments core.ExtractedText
	if format == "html" {
		fragments = e.ExtractHTML(doc, kind)
	} else {
		fragments = e.Extract(doc, kind)
	}
	if fragments.Empty() {
		return fmt.Errorf("no %s section found", kind)
	}

	if kind == core.SectionDirections {
		fmt.Fprintln(c.App.Writer, fragments.Joined())
		return nil
	}
	for _, f := range fragments {
		fmt.Fprintln(c.App.Writer, f)
	}
	return nil
}

func readDocument(c *cli.Context, format string) ([]byte, error) {
	if setID := c.String("set-id"); setID != "" {
		cfg := dailymed.DefaultConfig()
		cfg.BaseURL = c.String("dailymed-url")
		cfg.LabelURL = c.String("label-url")
		client, err := dailymed.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		if format == "html" {
			return client.LabelHTML(c.Context, setID)
		}
		return client.SPLDocument(c.Context, setID)
	}

	path := c.Args().First()
	if path == "" || path == "-" {
		return io.ReadAll(c.App.Reader)
	}
	return os.ReadFile(path)
}

func matchCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("indication text is required")
	}

	svc, err := startService(c.Context, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	results, err := svc.Match(c.Context, text, c.Float64("threshold"), c.Int("max"))
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(c.App.Writer, "no matches")
		return nil
	}
	return printMatches(c.App.Writer, results)
}

func printMatches(w io.Writer, results []core.MatchResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tSCORE\tDESCRIPTION")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.3f\t%s\n", r.Code, r.Score, r.Description)
	}
	return tw.Flush()
}

func mapCommand(c *cli.Context) error {
	drugs := c.Args().Slice()
	page := c.Int("page")
	if len(drugs) == 0 && page < 1 {
		return errors.New("at least one drug name or --page is required")
	}

	svc, err := startService(c.Context, c)
	if err != nil {
		return err
	}
	defer svc.Close()

	if page > 0 {
		results, err := svc.MapPage(c.Context, page)
		if err != nil {
			return err
		}
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(c.App.Writer, "%s: %v\n", r.Drug, r.Err)
				continue
			}
			printLabel(c.App.Writer, r.Mapping)
		}
		fmt.Fprintf(c.App.Writer, "\n%d drugs, %d failed\n", len(results), failed)
		return nil
	}

	results, err := svc.MapDrugs(c.Context, drugs)
	if err != nil {
		return err
	}
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Drug, r.Err))
			continue
		}
		printLabel(c.App.Writer, r.Mapping)
	}
	return errors.Join(errs...)
}

func printLabel(w io.Writer, l *core.LabelMapping) {
	fmt.Fprintf(w, "%s (set %s)\n", l.Drug, l.SetID)
	for _, f := range l.Indications {
		fmt.Fprintf(w, "  indication: %s\n", f)
	}
	if l.Mapping == nil {
		fmt.Fprintln(w, "  no ICD-10 matches")
	} else {
		for _, m := range l.Mapping.Matches {
			fmt.Fprintf(w, "  %-8s %.3f  %s\n", m.Code, m.Score, m.Description)
		}
	}
	if l.Directions != "" {
		fmt.Fprintln(w, "  directions:")
		for _, line := range strings.Split(l.Directions, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

func searchCommand(c *cli.Context) error {
	name := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(name) == "" {
		return errors.New("drug name is required")
	}

	cfg := dailymed.DefaultConfig()
	cfg.BaseURL = c.String("dailymed-url")
	cfg.LabelURL = c.String("label-url")
	cfg.Timeout = c.Duration("timeout")
	client, err := dailymed.NewClient(cfg)
	if err != nil {
		return err
	}

	spls, err := client.SearchSPLs(c.Context, name)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SET ID\tPUBLISHED\tTITLE")
	for _, s := range spls {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.SetID, s.PublishedDate, s.Title)
	}
	return tw.Flush()
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	if path := c.String("catalog"); path != "" {
		if _, err := svc.LoadCatalog(ctx, path, false, os.Stderr); err != nil {
			return fmt.Errorf("catalog load failed: %w", err)
		}
	}

	server, err := api.NewServer(svc, api.WithExtractor(svc.Extractor()))
	if err != nil {
		return err
	}

	// the listener comes up first and reports 503 until Start finishes
	startErr := make(chan error, 1)
	go func() {
		if err := svc.Start(ctx); err != nil {
			startErr <- err
			stop()
		}
	}()

	if err := server.ListenAndServe(ctx, c.String("addr")); err != nil {
		return err
	}

	select {
	case err := <-startErr:
		return err
	default:
		return nil
	}
}

func before(c *cli.Context) error {
	if path := c.String("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
