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
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := loadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadDotEnv reads environment defaults from path. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "concierge",
		Usage: "Conversational search for luxury residences",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"CONCIERGE_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "Write JSON logs to this file, rotated by size",
				EnvVars: []string{"CONCIERGE_LOG_FILE"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Copy the upstream catalog into the local store",
				Action: syncCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:     "upstream-url",
						Usage:    "Base URL of the catalog service",
						EnvVars:  []string{"CONCIERGE_UPSTREAM_URL"},
						Required: true,
					},
					&cli.StringFlag{
						Name:    "upstream-token",
						Usage:   "Bearer token for the catalog service",
						EnvVars: []string{"CONCIERGE_UPSTREAM_TOKEN"},
					},
					&cli.Float64Flag{
						Name:  "rate-limit",
						Usage: "Maximum upstream requests per second (0 disables limiting)",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "rankings",
						Usage: "Fetch published rankings for every residence",
						Value: true,
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Number of residences fetched per page",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N residences",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed pages",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "restart",
						Usage: "Ignore any saved checkpoint and start from the first page",
					},
				},
			},
			{
				Name:      "import",
				Usage:     "Load residences from a JSON file into the local store",
				ArgsUsage: "FILE",
				Action:    importCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "sqlite",
						Usage: "Also write the residences to this SQLite catalog",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the session API over HTTP",
				Action: serveCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "Listen address",
						Value:   ":8080",
						EnvVars: []string{"CONCIERGE_ADDR"},
					},
					&cli.DurationFlag{
						Name:  "idle-timeout",
						Usage: "Expire sessions idle for this long",
						Value: 30 * time.Minute,
					},
					&cli.DurationFlag{
						Name:  "janitor-interval",
						Usage: "How often idle sessions are swept",
						Value: time.Minute,
					},
					&cli.DurationFlag{
						Name:  "query-timeout",
						Usage: "Bound each candidate query, zero for no bound",
						Value: 3 * time.Second,
					},
					&cli.IntFlag{
						Name:  "query-retries",
						Usage: "Attempts per query when the candidate search times out",
						Value: 2,
					},
					&cli.StringFlag{
						Name:    "redis-addr",
						Usage:   "Keep sessions in Redis at this address instead of the local store",
						EnvVars: []string{"CONCIERGE_REDIS_ADDR"},
					},
					&cli.StringFlag{
						Name:    "redis-password",
						Usage:   "Redis password",
						EnvVars: []string{"CONCIERGE_REDIS_PASSWORD"},
					},
					&cli.IntFlag{
						Name:  "redis-db",
						Usage: "Redis database number",
					},
					&cli.StringFlag{
						Name:  "sqlite",
						Usage: "Search this SQLite catalog instead of the local store",
					},
					&cli.StringFlag{
						Name:    "upstream-url",
						Usage:   "Search the catalog service at this URL instead of the local store",
						EnvVars: []string{"CONCIERGE_UPSTREAM_URL"},
					},
					&cli.StringFlag{
						Name:    "upstream-token",
						Usage:   "Bearer token for the catalog service",
						EnvVars: []string{"CONCIERGE_UPSTREAM_TOKEN"},
					},
				}, aiFlags()...),
			},
			{
				Name:   "chat",
				Usage:  "Search interactively from the terminal",
				Action: chatCommand,
				Flags:  append([]cli.Flag{dbFlag()}, aiFlags()...),
			},
			{
				Name:      "badge",
				Usage:     "Show the badge tier for ranking positions",
				ArgsUsage: "POSITION...",
				Action:    badgeCommand,
			},
		},
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		EnvVars:  []string{"CONCIERGE_DB"},
		Required: true,
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "ai",
			Usage:   "Phrase replies with a language model",
			EnvVars: []string{"CONCIERGE_AI"},
		},
		&cli.StringFlag{
			Name:    "ai-host",
			Usage:   "OpenAI-compatible service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"CONCIERGE_AI_HOST"},
		},
		&cli.StringFlag{
			Name:    "ai-model",
			Usage:   "Chat model name",
			Value:   "qwen2.5:3b",
			EnvVars: []string{"CONCIERGE_AI_MODEL"},
		},
		&cli.StringFlag{
			Name:    "ai-token",
			Usage:   "API token for the model service",
			EnvVars: []string{"CONCIERGE_AI_TOKEN", "OPENAI_API_KEY"},
		},
		&cli.DurationFlag{
			Name:  "ai-timeout",
			Usage: "Give up on the model after this long and use a template reply",
			Value: 5 * time.Second,
		},
	}
}
