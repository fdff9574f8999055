package main

import (
	"fmt"
	"os"

	"docorganizer/internal/classify"
	"docorganizer/internal/config"
	"docorganizer/internal/version"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "docorganizer",
	Short: "Organize API documentation into classified Markdown files",
	Long: `docorganizer splits a documentation file into sections along its heading
hierarchy, classifies each section with an LLM, and writes the results as
Markdown files sorted into endpoints, concepts, and overview directories.`,
}

func init() {
	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(fmt.Sprintf("docorganizer %s\n", version.String()))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newGateway builds the classification backend selected by config.
func newGateway(cfg config.Config) (gateway, error) {
	switch cfg.Backend {
	case "openai":
		return classify.NewOpenAIGateway(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case "anthropic":
		return classify.NewAnthropicGateway(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// gateway is what both backends provide.
type gateway interface {
	classify.Gateway
	Model() string
	Stats() classify.StatsSnapshot
}

func closeGateway(gw gateway) {
	if c, ok := gw.(interface{ Close() }); ok {
		c.Close()
	}
}
