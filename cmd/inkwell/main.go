// Copyright 2026 Inkwell Systems
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/inkwell-ai/inkwell/ai"
	"github.com/inkwell-ai/inkwell/ai/openai"
	"github.com/inkwell-ai/inkwell/ingest"
	"github.com/inkwell-ai/inkwell/server"
	"github.com/inkwell-ai/inkwell/storage"
	storagebadger "github.com/inkwell-ai/inkwell/storage/badger"
	"github.com/inkwell-ai/inkwell/storage/qdrant"
)

func main() {
	app := &cli.App{
		Name:  "inkwell",
		Usage: "Content ingestion and retrieval-grounded summarization service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the ingestion HTTP service",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "listen",
						Aliases: []string{"a"},
						Usage:   "Address to listen on",
						Value:   ":8080",
					},
					&cli.StringFlag{
						Name:  "store",
						Usage: "Storage backend (badger or qdrant)",
						Value: "badger",
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
						Value:   "./inkwell_db",
					},
					&cli.StringFlag{
						Name:  "qdrant-url",
						Usage: "Qdrant base URL (for --store qdrant)",
						Value: "http://localhost:6333",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.StringFlag{
						Name:  "summary-host",
						Usage: "Summarization service host URL",
					},
					&cli.StringFlag{
						Name:  "summary-model",
						Usage: "Summarization model name",
					},
					&cli.Int64Flag{
						Name:  "max-file-bytes",
						Usage: "Maximum accepted upload size in bytes",
						Value: ingest.DefaultMaxFileBytes,
					},
					&cli.IntFlag{
						Name:  "max-text-chars",
						Usage: "Maximum accepted raw text length in characters",
						Value: ingest.DefaultMaxTextChars,
					},
					&cli.IntFlag{
						Name:  "min-text-chars",
						Usage: "Minimum accepted raw text length in characters",
						Value: ingest.DefaultMinTextChars,
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Chunk size in characters",
						Value: 1000,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Chunk overlap in characters",
						Value: 150,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Concurrent embedding worker count",
						Value: 4,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search a collection by semantic similarity",
				ArgsUsage: "<collection-id> <query...>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to BadgerDB database directory",
						Value:   "./inkwell_db",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of hits",
						Value:   5,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Minimum similarity score for a hit",
						Value: 0.3,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, cleanup, err := openStore(c)
	if err != nil {
		return err
	}
	defer cleanup()

	provider, err := openai.NewProvider(aiConfig(c))
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	pipeline, err := ingest.NewPipeline(repo, provider.Embedder(), provider.Summarizer(),
		ingest.WithPolicy(ingest.Policy{
			MaxFileBytes: c.Int64("max-file-bytes"),
			MaxTextChars: c.Int("max-text-chars"),
			MinTextChars: c.Int("min-text-chars"),
		}),
		ingest.WithChunking(c.Int("chunk-size"), c.Int("chunk-overlap")),
		ingest.WithPoolSize(c.Int("pool-size")),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Close()

	return server.New(pipeline).Run(ctx, c.String("listen"))
}

func searchCommand(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: search <collection-id> <query...>")
	}
	collectionID := c.Args().First()
	query := strings.Join(c.Args().Tail(), " ")

	ctx := context.Background()

	backend, err := storagebadger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := storagebadger.NewCollectionRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	embedder, err := openai.NewEmbedder(aiConfig(c))
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	vector, err := embedder.EmbedText(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := repo.FindSimilar(ctx, collectionID,
		vector, float32(c.Float64("min-similarity")), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for i, hit := range results {
		fmt.Printf("%d: [%0.3f] (seq %d) %s\n", i, hit.Score, hit.Chunk.Seq, hit.Chunk.Text)
	}
	return nil
}

// openStore picks the storage backend from the --store flag.
func openStore(c *cli.Context) (storage.CollectionRepository, func(), error) {
	switch c.String("store") {
	case "badger":
		backend, err := storagebadger.OpenBackend(c.String("db"), false)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		repo, err := storagebadger.NewCollectionRepository(backend)
		if err != nil {
			backend.Close()
			return nil, nil, fmt.Errorf("failed to create repository: %w", err)
		}
		return repo, func() {
			repo.Close()
			backend.Close()
		}, nil

	case "qdrant":
		repo, err := qdrant.NewStore(qdrant.Config{
			URL:    c.String("qdrant-url"),
			APIKey: os.Getenv("QDRANT_API_KEY"),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create qdrant store: %w", err)
		}
		return repo, func() { repo.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q: must be badger or qdrant", c.String("store"))
	}
}

// aiConfig builds the provider configuration from flags, with environment
// variables as fallback for anything unset.
func aiConfig(c *cli.Context) *ai.Config {
	var opts []ai.ConfigOption
	if host := stringOrEnv(c, "embedding-host", "INKWELL_EMBEDDING_HOST"); host != "" {
		opts = append(opts, ai.WithEmbeddingHost(host))
	}
	if host := stringOrEnv(c, "summary-host", "INKWELL_SUMMARY_HOST"); host != "" {
		opts = append(opts, ai.WithSummaryHost(host))
	}
	if model := stringOrEnv(c, "embedding-model", "INKWELL_EMBEDDING_MODEL"); model != "" {
		opts = append(opts, ai.WithEmbeddingModel(model))
	}
	if model := stringOrEnv(c, "summary-model", "INKWELL_SUMMARY_MODEL"); model != "" {
		opts = append(opts, ai.WithSummaryModel(model))
	}
	return ai.NewConfig(opts...)
}

func stringOrEnv(c *cli.Context, flag, env string) string {
	if v := c.String(flag); v != "" {
		return v
	}
	return os.Getenv(env)
}

func setup(c *cli.Context) error {
	// Optional; a missing .env file is not an error.
	godotenv.Load()

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
