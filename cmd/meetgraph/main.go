package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/meetgraph"
	"github.com/siherrmann/meetgraph/core/pipeline"
	"github.com/siherrmann/meetgraph/helper"
	"github.com/urfave/cli/v3"
)

// ExampleQueries are answered by the examples command.
var ExampleQueries = []string{
	"What are the main requirements discussed in the meetings?",
	"What is the timeline for the project?",
	"Who are the key stakeholders involved?",
}

type action func(ctx context.Context, cmd *cli.Command, m *meetgraph.MeetGraph) error

// withMeetGraph loads the configuration, connects and closes the graph
// around an action.
func withMeetGraph(run action) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		config, err := helper.LoadConfiguration(cmd.String("env-file"), cmd.String("config"))
		if err != nil {
			return err
		}
		if level := cmd.String("log-level"); level != "" {
			config.LogLevel = level
		}
		logger := helper.NewLogger(config.SlogLevel())

		m, err := meetgraph.New(ctx, config, meetgraph.WithLogger(logger))
		if err != nil {
			return err
		}
		defer func() {
			if err := m.Close(context.Background()); err != nil {
				logger.Warn("Error closing connections", slog.String("error", err.Error()))
			}
		}()

		return run(ctx, cmd, m)
	}
}

func seed(ctx context.Context, cmd *cli.Command, m *meetgraph.MeetGraph) error {
	meetingID, err := m.Seed(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Successfully processed meeting notes! Meeting ID: %s\n", meetingID)
	return nil
}

func ingest(ctx context.Context, cmd *cli.Command, m *meetgraph.MeetGraph) error {
	policy, err := selectPolicy(cmd.String("policy"))
	if err != nil {
		return err
	}

	notes, err := os.ReadFile(cmd.String("file"))
	if err != nil {
		return helper.NewError("read notes", err)
	}

	var date *string
	if d := cmd.String("date"); d != "" {
		date = &d
	}

	meetingID, err := m.Ingest(ctx, cmd.String("title"), date, string(notes), policy)
	if err != nil {
		return err
	}
	fmt.Printf("Successfully processed meeting notes! Meeting ID: %s\n", meetingID)
	return nil
}

// selectPolicy resolves a preset name. The ner preset loads its model first.
func selectPolicy(name string) (pipeline.ExtractionPolicy, error) {
	if name == "ner" {
		return pipeline.NERPolicy()
	}
	policy, ok := pipeline.PolicyByName(name)
	if !ok {
		return pipeline.ExtractionPolicy{}, fmt.Errorf("unknown extraction policy %q", name)
	}
	return policy, nil
}

func timeline(ctx context.Context, cmd *cli.Command, m *meetgraph.MeetGraph) error {
	meetingID, err := uuid.Parse(cmd.String("meeting"))
	if err != nil {
		return helper.NewError("parse meeting id", err)
	}

	entries, err := m.Graph.MeetingTimeline(ctx, meetingID)
	if err != nil {
		return err
	}
	printTimeline(os.Stdout, entries)
	return nil
}

func activities(ctx context.Context, cmd *cli.Command, m *meetgraph.MeetGraph) error {
	found, err := m.Graph.PersonActivities(ctx, cmd.String("person"))
	if err != nil {
		return err
	}
	printActivities(os.Stdout, found)
	return nil
}

func examples(ctx context.Context, cmd *cli.Command, m *meetgraph.MeetGraph) error {
	for _, query := range ExampleQueries {
		printQueryResult(os.Stdout, query, m.Query(ctx, query))
	}
	return nil
}

func ask(ctx context.Context, cmd *cli.Command, m *meetgraph.MeetGraph) error {
	question := cmd.Args().First()
	if question == "" {
		return fmt.Errorf("a question is required")
	}
	printQueryResult(os.Stdout, question, m.Query(ctx, question))
	return nil
}

func analyze(ctx context.Context, cmd *cli.Command, m *meetgraph.MeetGraph) error {
	if dir := cmd.String("output-dir"); dir != "" {
		m.Config.OutputDir = dir
	}

	path, err := m.Analyze(ctx, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Analysis has been written to: %s\n", path)
	return nil
}

func vectorize(ctx context.Context, cmd *cli.Command, m *meetgraph.MeetGraph) error {
	recreate := m.Config.Index.ForceRecreate
	if cmd.IsSet("recreate") {
		recreate = cmd.Bool("recreate")
	}

	stored, err := m.Vectorize(ctx, cmd.String("file"), recreate)
	if err != nil {
		return err
	}
	fmt.Printf("Successfully vectorized and stored %d chunks\n", stored)
	return nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "meetgraph",
		Usage: "Load meeting transcripts into a knowledge graph and answer questions about them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to the .env file",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to an optional YAML config file",
				Sources: cli.EnvVars("MEETGRAPH_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "seed",
				Usage:  "Clear the graph and load the sample meeting",
				Action: withMeetGraph(seed),
			},
			{
				Name:  "ingest",
				Usage: "Load a transcript file as a new meeting",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Meeting title", Required: true},
					&cli.StringFlag{Name: "file", Usage: "Transcript file", Required: true},
					&cli.StringFlag{Name: "date", Usage: "Meeting date"},
					&cli.StringFlag{Name: "policy", Usage: "Extraction policy: seed, general or ner", Value: "general"},
				},
				Action: withMeetGraph(ingest),
			},
			{
				Name:  "timeline",
				Usage: "Print the discussion points of a meeting",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "meeting", Usage: "Meeting ID", Required: true},
				},
				Action: withMeetGraph(timeline),
			},
			{
				Name:  "activities",
				Usage: "Print the discussion points linked to a person",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "person", Usage: "Person name", Required: true},
				},
				Action: withMeetGraph(activities),
			},
			{
				Name:   "examples",
				Usage:  "Answer the example questions with sources",
				Action: withMeetGraph(examples),
			},
			{
				Name:      "ask",
				Usage:     "Answer a question with sources",
				ArgsUsage: "<question>",
				Action:    withMeetGraph(ask),
			},
			{
				Name:  "analyze",
				Usage: "Write the meeting analysis report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output-dir", Usage: "Report directory"},
				},
				Action: withMeetGraph(analyze),
			},
			{
				Name:  "vectorize",
				Usage: "Store a file, by default the latest analysis report, in the vector index",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "File to vectorize"},
					&cli.BoolFlag{Name: "recreate", Usage: "Delete an existing index first, defaults to VECTOR_INDEX_RECREATE"},
				},
				Action: withMeetGraph(vectorize),
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		stop()
		os.Exit(1)
	}
}
