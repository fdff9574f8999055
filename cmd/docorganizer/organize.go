package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"docorganizer/internal/chunker"
	"docorganizer/internal/config"
	"docorganizer/internal/emit"
	"docorganizer/internal/logging"
	"docorganizer/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("75")).
			Padding(0, 1)
)

var organizeOutput string

var organizeCmd = &cobra.Command{
	Use:   "organize <file> [file...]",
	Short: "Organize one or more documentation files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if organizeOutput != "" {
			cfg.OutputDir = organizeOutput
		}

		log, closeLog, err := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFile)
		if err != nil {
			return err
		}
		defer closeLog()

		gw, err := newGateway(cfg)
		if err != nil {
			return err
		}
		defer closeGateway(gw)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runner := pipeline.NewRunner(gw, pipeline.Config{
			Chunking: chunker.Config{
				ContextTokens:  cfg.ContextTokens,
				SplitOversized: cfg.SplitOversized,
			},
			MaxChunkDepth: cfg.MaxChunkDepth,
			CallTimeout:   cfg.ClassifyTimeout,
			MaxConcurrent: cfg.MaxConcurrentClassify,
		}, log)

		out := cmd.OutOrStdout()
		runner.OnProgress = func(processed, total int, oc pipeline.Outcome) {
			mark := successStyle.Render("✓")
			if oc.Dropped() {
				mark = errorStyle.Render("✗")
			}
			fmt.Fprintf(out, "%s %s %s\n",
				dimStyle.Render(fmt.Sprintf("[%d/%d]", processed, total)), mark, oc.Title)
		}

		for _, path := range args {
			if err := organizeFile(ctx, runner, cfg, log, path, out); err != nil {
				return err
			}
		}
		return nil
	},
}

func organizeFile(ctx context.Context, runner *pipeline.Runner, cfg config.Config, log *slog.Logger, path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	filename := filepath.Base(path)
	fmt.Fprintln(out, titleStyle.Render("Organizing "+filename))

	writer, err := emit.NewWriter(cfg.OutputDir, log)
	if err != nil {
		return err
	}

	start := time.Now()
	rep, err := runner.Run(ctx, f, filename, writer)
	if err != nil {
		return fmt.Errorf("organize %s: %w", filename, err)
	}

	printReport(out, rep, writer.Dir(), time.Since(start))
	return nil
}

func printReport(out io.Writer, rep *pipeline.Report, dir string, elapsed time.Duration) {
	status := successStyle.Render("OK")
	if rep.Dropped > 0 {
		status = errorStyle.Render(fmt.Sprintf("%d DROPPED", rep.Dropped))
	}

	content := fmt.Sprintf("%s\n%s %d  %s %d  %s %d  %s\n%s %s  %s %.1fs",
		titleStyle.Render(rep.Title),
		dimStyle.Render("Sections:"), rep.SectionsFound,
		dimStyle.Render("Classified:"), rep.Classified,
		dimStyle.Render("Files:"), len(rep.FilesWritten),
		status,
		dimStyle.Render("Output:"), dir,
		dimStyle.Render("Took:"), elapsed.Seconds(),
	)
	fmt.Fprintln(out, boxStyle.Render(content))

	for _, e := range rep.Errors {
		fmt.Fprintln(out, errorStyle.Render("  "+e))
	}
}

func init() {
	organizeCmd.Flags().StringVarP(&organizeOutput, "output", "o", "", "Output directory (overrides OUTPUT_DIR)")
	rootCmd.AddCommand(organizeCmd)
}
