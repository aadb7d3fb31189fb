package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/tagsub-go/internal/config"
	"github.com/rmacdonaldsmith/tagsub-go/internal/manifest"
	"github.com/rmacdonaldsmith/tagsub-go/internal/topic"
	"github.com/rmacdonaldsmith/tagsub-go/internal/treescanner"
	"github.com/rmacdonaldsmith/tagsub-go/internal/wire"
	"github.com/rmacdonaldsmith/tagsub-go/pkg/tagsub"
)

// printer reports each delivery as one output line
type printer struct {
	name  string
	out   io.Writer
	state *matchState
}

type matchState struct {
	event      int
	deliveries int
	err        error
}

func (p *printer) Receive(tagsub.Event) {
	p.state.deliveries++
	if p.state.err != nil {
		return
	}
	_, p.state.err = fmt.Fprintf(p.out, "event=%d subscription=%s\n", p.state.event, p.name)
}

func newMatchCommand(cfg *config.Config) *cobra.Command {
	var (
		subscriptionsPath string
		eventsPath        string
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a stream of events against a subscription manifest",
		Long: `Load named subscriptions from a YAML manifest, then read events and print
one line per delivery: "event=<index> subscription=<name>". Events are numbered
from 0 in input order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, cfg, subscriptionsPath, eventsPath)
		},
	}

	cmd.Flags().StringVar(&subscriptionsPath, "subscriptions", "", "Path to the subscription manifest (required)")
	cmd.Flags().StringVar(&eventsPath, "events", "-", "Path to the event stream, - for stdin")
	cmd.Flags().StringVar(&cfg.EventFormat, "format", cfg.EventFormat, "Event stream format: jsonl or proto")
	if err := cmd.MarkFlagRequired("subscriptions"); err != nil {
		panic(fmt.Sprintf("Failed to mark subscriptions as required: %v", err))
	}

	return cmd
}

func runMatch(cmd *cobra.Command, cfg *config.Config, subscriptionsPath, eventsPath string) error {
	strategy, err := cfg.ParsedStrategy()
	if err != nil {
		return err
	}
	format, err := cfg.ParsedEventFormat()
	if err != nil {
		return err
	}

	m, err := manifest.LoadFile(subscriptionsPath)
	if err != nil {
		return err
	}
	if err := m.Validate(strategy); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}

	t, err := topic.New[*printer](strategy)
	if err != nil {
		return err
	}
	state := &matchState{}
	out := cmd.OutOrStdout()
	manifest.Apply(m, t, func(name string) *printer {
		return &printer{name: name, out: out, state: state}
	})

	logger := log.With().Str("strategy", strategy.String()).Logger()
	if ts, ok := t.(*treescanner.TreeScanner[*printer]); ok {
		logger.Debug().Strs("pipeline", ts.Pipeline()).Int("nodes", ts.Nodes()).Msg("trie built")
	}
	logger.Info().Int("subscriptions", t.Len()).Str("manifest", subscriptionsPath).Msg("subscriptions loaded")

	in, err := openInput(cmd, eventsPath)
	if err != nil {
		return err
	}
	defer in.Close()

	reader, err := wire.NewReader(format, in)
	if err != nil {
		return err
	}

	for {
		evt, err := reader.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("event %d: %w", state.event, err)
		}
		t.Accept(evt)
		if state.err != nil {
			return fmt.Errorf("failed to write delivery: %w", state.err)
		}
		state.event++
	}

	logger.Info().
		Int("events", state.event).
		Int("deliveries", state.deliveries).
		Msg("match complete")
	return nil
}
