package main

import (
	"bufio"
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/castlebay/reconcile-go/connectors/review"
	"github.com/castlebay/reconcile-go/match"
	"github.com/castlebay/reconcile-go/pipeline"
	"github.com/castlebay/reconcile-go/store"
	"github.com/castlebay/reconcile-go/transport"
	"github.com/castlebay/reconcile-go/worker"
)

type rootOptions struct {
	LogLevel string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "reconciler",
		Short: "Reacts to entity change events and drives identity-match reconciliation",
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", envOr("LOG_LEVEL", "info"), "log level (trace|debug|info|warn|error)")

	cmd.AddCommand(newRunCommand(opts))

	return cmd
}

func envOr(name string, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

type runOptions struct {
	ReplayDir       string
	ReviewAddr      string
	RequestedEvents int
	PollInterval    time.Duration
	DrainTimeout    time.Duration
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reconciliation worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.ReplayDir, "replay-dir", "", "replay captured events from this directory instead of a live feed")
	cmd.Flags().StringVar(&opts.ReviewAddr, "review-addr", "", "serve the proposal review API on this address")
	cmd.Flags().IntVar(&opts.RequestedEvents, "requested-events", worker.DefaultRequestedEvents, "per-subscription flow-control quota")
	cmd.Flags().DurationVar(&opts.PollInterval, "poll-interval", worker.DefaultPollInterval, "connectivity poll interval")
	cmd.Flags().DurationVar(&opts.DrainTimeout, "drain-timeout", worker.DefaultDrainTimeout, "grace period for in-flight workflows on shutdown")

	return cmd
}

func newLogger(level string) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, errors.Wrapf(err, "invalid log level %q", level)
	}

	return zerolog.New(os.Stdout).Level(parsed).With().Timestamp().Logger(), nil
}

func newMatcher(log *zerolog.Logger) match.Service {
	base := os.Getenv("MATCH_BASE_URL")
	if base == "" {
		log.Warn().Msg("MATCH_BASE_URL is not set, serving canned match candidates")
		return &match.StaticService{Candidates: match.SampleCandidates()}
	}

	return match.NewHTTPClient(base, os.Getenv("MATCH_TOKEN"), log)
}

func newFeedClient(opts *runOptions) (transport.Client, error) {
	if opts.ReplayDir == "" {
		return nil, errors.New("no live feed client is linked into this build, use --replay-dir")
	}

	events := map[string][][]byte{}
	captures := map[string]string{
		pipeline.TopicAccountChanges: "account.jsonl",
		pipeline.TopicOrderChanges:   "order.jsonl",
	}

	for topic, name := range captures {
		lines, err := readLines(filepath.Join(opts.ReplayDir, name))
		if err != nil {
			return nil, err
		}
		events[topic] = lines
	}

	return transport.NewReplayClient(events), nil
}

func readLines(path string) ([][]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to open capture %s", path)
	}
	defer file.Close()

	var lines [][]byte
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := make([]byte, len(scanner.Bytes()))
		copy(line, scanner.Bytes())
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}

	return lines, errors.Wrapf(scanner.Err(), "failed to read capture %s", path)
}

// runPipeline is the store-backed half of the run graph, assembled by wire
// from store.Live and pipeline.Reconciliation.
type runPipeline struct {
	Dispatcher *pipeline.Dispatcher
	Escalation *pipeline.Escalation
	Records    *store.Client
}

func run(root *rootOptions, opts *runOptions) error {
	log, err := newLogger(root.LogLevel)
	if err != nil {
		return err
	}

	p, err := storeBackedPipeline(&log, newMatcher(&log))
	if err != nil {
		return err
	}

	feed, err := newFeedClient(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.ReviewAddr != "" {
		server := &http.Server{
			Addr:    opts.ReviewAddr,
			Handler: review.NewHandler(p.Records, review.Logger(&log)),
		}
		go func() {
			log.Info().Str("addr", opts.ReviewAddr).Msg("serving proposal review API")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("review server failed")
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.DrainTimeout)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	w := worker.New(
		feed,
		p.Dispatcher,
		p.Escalation,
		&log,
		worker.RequestedEvents(opts.RequestedEvents),
		worker.PollInterval(opts.PollInterval),
		worker.DrainTimeout(opts.DrainTimeout),
	)

	if err := w.Run(ctx); err != nil {
		// A failed shutdown sequence must not leave the process half-stopped.
		log.Fatal().Err(err).Msg("worker failed")
	}

	return nil
}
