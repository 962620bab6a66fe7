package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/model"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/parser"
	"github.com/Avinash-Amudala/llm-incident-copilot/internal/stats"
)

// NewStatsCmd creates the stats command. It runs entirely offline; no
// embedding or storage backends are contacted.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Print format, level counts, and loggers for a log file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return runStats(args[0], format)
		},
	}

	cmd.Flags().String("format", "text", "output format (text, json)")

	return cmd
}

func runStats(path, outputFormat string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	text := strings.ToValidUTF8(string(content), "�")

	logFormat, parsed := parser.ParseLines(text)
	s := stats.FromParsed(logFormat, parsed)
	traces := parser.ExtractTraceIDs(parsed)

	switch outputFormat {
	case "json":
		out, err := json.MarshalIndent(map[string]any{
			"stats":     s,
			"trace_ids": traces,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	case "text":
		printStatsText(s, traces)
	default:
		return fmt.Errorf("unknown output format: %s", outputFormat)
	}
	return nil
}

func printStatsText(s model.Stats, traces map[string][]int) {
	fmt.Printf("Format:      %s\n", s.Format)
	fmt.Printf("Total lines: %d\n", s.TotalLines)
	fmt.Printf("Levels:      error=%d warn=%d info=%d debug=%d\n",
		s.ErrorCount, s.WarnCount, s.InfoCount, s.DebugCount)
	if s.FirstTimestamp != "" || s.LastTimestamp != "" {
		fmt.Printf("Time range:  %s .. %s\n", s.FirstTimestamp, s.LastTimestamp)
	}
	if len(s.Loggers) > 0 {
		fmt.Printf("Loggers:     %s\n", strings.Join(s.Loggers, ", "))
	}
	if len(traces) > 0 {
		fmt.Printf("Trace IDs:   %d distinct\n", len(traces))
		for id, lines := range traces {
			fmt.Printf("  %s: %d occurrence(s)\n", id, len(lines))
		}
	}
}
