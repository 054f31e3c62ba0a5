package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/sawmill/internal/config"
	"github.com/crimson-sun/sawmill/internal/logging"
	"github.com/crimson-sun/sawmill/internal/model"
	"github.com/crimson-sun/sawmill/internal/report"
)

var analyzeCommitsFile string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <logfile>",
	Short: "Analyze a single build log and print a Markdown report",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCommitsFile, "commits", "",
		"YAML file with candidate commits (sha, author, message, changed_files)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logging.Init(false, logging.ParseLevel(cfg.Log.Level))

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading log: %w", err)
	}

	var commits []model.Commit
	if analyzeCommitsFile != "" {
		data, err := os.ReadFile(analyzeCommitsFile)
		if err != nil {
			return fmt.Errorf("reading commits: %w", err)
		}
		if err := yaml.Unmarshal(data, &commits); err != nil {
			return fmt.Errorf("parsing commits: %w", err)
		}
	}

	eng, norm, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	events := norm.Normalize(string(raw))
	analysis := eng.Analyze(events, commits)

	rec := model.BuildRecord{
		BuildID:     args[0],
		RawLog:      string(raw),
		Commits:     commits,
		Events:      events,
		Label:       analysis.Classification.Label,
		Confidence:  analysis.Classification.Confidence,
		Scores:      analysis.Classification.Scores,
		Summary:     analysis.Summary,
		Attribution: analysis.Attribution,
		IngestedAt:  time.Now().UnixMilli(),
	}
	fmt.Fprint(cmd.OutOrStdout(), report.Markdown(rec))
	return nil
}
