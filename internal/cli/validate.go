package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Avinash-Amudala/llm-incident-copilot/internal/config"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgFile)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}

			fmt.Printf("Configuration valid:\n")
			fmt.Printf("  Server:       port %d\n", cfg.Server.Port)
			fmt.Printf("  Vector store: %s\n", cfg.VectorStore.Backend)
			fmt.Printf("  Chat:         %s\n", cfg.Chat.Provider)
			fmt.Printf("  Chunking:     max_lines=%d max_chars=%d max_chunks=%d\n",
				cfg.Chunking.MaxLines, cfg.Chunking.MaxChars, cfg.Chunking.MaxChunks)
			return nil
		},
	}
}
