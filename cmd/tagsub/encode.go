package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/tagsub-go/internal/wire"
	"github.com/rmacdonaldsmith/tagsub-go/pkg/tagsub"
)

type eventEncoder interface {
	Encode(evt tagsub.Event) error
}

func newEncodeCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Convert JSON lines events to length-delimited protobuf",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			defer in.Close()
			return convert(wire.NewJSONDecoder(in), wire.NewEncoder(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&input, "in", "-", "Path to the JSON lines input, - for stdin")
	return cmd
}

func newDecodeCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Convert length-delimited protobuf events to JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			defer in.Close()
			return convert(wire.NewDecoder(in), wire.NewJSONEncoder(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().StringVar(&input, "in", "-", "Path to the protobuf input, - for stdin")
	return cmd
}

func convert(r wire.EventReader, w eventEncoder) error {
	count := 0
	for {
		evt, err := r.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("event %d: %w", count, err)
		}
		if err := w.Encode(evt); err != nil {
			return fmt.Errorf("event %d: %w", count, err)
		}
		count++
	}
	log.Debug().Int("events", count).Msg("conversion complete")
	return nil
}
