package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/config"
)

// NewIngestCmd creates the ingest command for one-shot file ingestion
// without running the HTTP server.
func NewIngestCmd(cfgFile, logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Chunk, embed, and store a single log file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, cfgFile, logLevel, args[0])
		},
	}

	cmd.Flags().Bool("dry-run", false, "chunk only; skip embedding and storage")

	return cmd
}

func runIngest(cmd *cobra.Command, cfgFile, logLevel *string, path string) error {
	cfg, err := config.Load(*cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := SetupLogging(resolveLogLevel(*logLevel, cfg))

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	text := strings.ToValidUTF8(string(content), "�")
	filename := filepath.Base(path)

	svcs, err := buildServices(cfg, log)
	if err != nil {
		return err
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		chunks := svcs.ingester.Chunk(text)
		fmt.Printf("%s: %d chunks\n", filename, len(chunks))
		for i, c := range chunks {
			fmt.Printf("  chunk %d: %d chars, errors=%d, warns=%d\n",
				i, len(c.Text), c.Metadata.ErrorCount, c.Metadata.WarnCount)
		}
		return nil
	}

	ctx := context.Background()
	if err := svcs.store.Start(ctx); err != nil {
		return fmt.Errorf("starting vector store: %w", err)
	}
	defer func() {
		_ = svcs.store.Stop(context.Background())
		_ = svcs.audit.Close()
	}()

	result, err := svcs.ingester.Ingest(ctx, filename, text)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", path, err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
