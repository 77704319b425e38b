// aggregate.go — Consolidation of several analysis results into one digest.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/logsieve/logsieve/internal/aggregate"
	"github.com/logsieve/logsieve/internal/sink"
)

func newAggregateCmd(verbose *bool) *cobra.Command {
	var (
		input    string
		asText   bool
		useModel bool
	)

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Merge analysis results into one consolidated digest",
		Long: "Reads newline-delimited analysis results (as emitted by analyze) and\n" +
			"merges them: duplicate signatures have their counts summed and the\n" +
			"per-run summaries are synthesized into one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(*verbose)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			var r io.Reader = os.Stdin
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("open %s: %w", input, err)
				}
				defer f.Close()
				r = f
			}

			var records [][]byte
			scanner := bufio.NewScanner(r)
			scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
			for scanner.Scan() {
				line := scanner.Bytes()
				if len(line) == 0 {
					continue
				}
				records = append(records, append([]byte(nil), line...))
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read records: %w", err)
			}

			agg := aggregate.New(nil, log)
			if useModel {
				agg = aggregate.New(newSummarizer(cfg, log), log)
			}
			digest := agg.Merge(cmd.Context(), records)

			if asText {
				fmt.Fprint(cmd.OutOrStdout(), sink.RenderText(digest))
				return nil
			}
			return sink.NewWriterSink(cmd.OutOrStdout()).Publish(cmd.Context(), digest)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "-", "result file to merge, '-' for stdin")
	cmd.Flags().BoolVar(&asText, "text", false, "render the digest as plain text instead of JSON")
	cmd.Flags().BoolVar(&useModel, "synthesize", false, "synthesize the digest summary with the configured model")
	return cmd
}
