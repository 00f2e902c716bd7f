package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rejoice-cli/rejoice/internal/config"
	"github.com/rejoice-cli/rejoice/internal/deps"
	"github.com/rejoice-cli/rejoice/internal/session"
	"github.com/rejoice-cli/rejoice/internal/transcript"
	"github.com/rejoice-cli/rejoice/internal/tui"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "rec",
		Short: "Local voice transcription",
		Long: `Rejoice records from the microphone and turns speech into durable
markdown transcripts.

Run 'rec' to start recording. Press Enter to stop, Ctrl-C to cancel.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(language)
		},
	}

	cmd.PersistentFlags().StringVarP(&language, "language", "l", "", "force transcription language (e.g. en, es, fr)")

	cmd.AddCommand(
		listCmd(),
		viewCmd(),
		migrateCmd(),
		configCmd(),
		doctorCmd(),
		versionCmd(),
	)
	return cmd
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that required external tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			statuses := deps.CheckAll(cfg)
			for _, s := range statuses {
				mark := tui.StyleSuccess.Render("ok")
				detail := s.Path
				if s.Version != "" {
					detail = s.Version
				}
				if !s.Installed {
					detail = "not found on PATH"
					if s.Required {
						mark = tui.StyleError.Render("missing")
					} else {
						mark = tui.StyleMuted.Render("absent")
					}
				}
				fmt.Printf("  %-12s %-8s %s\n", s.Name, mark, tui.StyleMuted.Render(detail))
				fmt.Printf("  %-12s %s\n", "", tui.StyleSubtle.Render(s.Purpose))
			}

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				names := make([]string, len(missing))
				for i, s := range missing {
					names[i] = s.Name
				}
				return fmt.Errorf("missing required tools: %s", strings.Join(names, ", "))
			}
			fmt.Println(tui.StyleSuccess.Render("All required tools are available."))
			return nil
		},
	}
}

func runRecord(languageOverride string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if languageOverride != "" {
		cfg.Transcription.Language = languageOverride
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	result, err := session.New(cfg, session.Deps{}).Run(context.Background())
	if err != nil {
		fmt.Println(tui.ErrorNotice(err.Error()))
		if result.TranscriptPath != "" {
			fmt.Printf("Transcript kept at %s\n", result.TranscriptPath)
		}
		return err
	}

	switch result.Status {
	case transcript.StatusCompleted:
		fmt.Println(tui.CompletePanel(result.ID.String(), result.TranscriptPath, result.Duration, countWords(result.TranscriptPath)))
		if !result.TranscribedOK {
			fmt.Println(tui.StyleWarning.Render("Transcription incomplete; audio kept at " + result.AudioPath))
		}
	case transcript.StatusCancelled:
		fmt.Println(tui.CancelledNotice(result.ID.String(), result.TranscriptDeleted))
	}
	return nil
}

func countWords(transcriptPath string) int {
	_, body, err := transcript.NewStore(transcriptPath).Read()
	if err != nil {
		return 0
	}
	return len(strings.Fields(body))
}

func listCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			entries, err := transcript.List(cfg.ExpandedSavePath())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No recordings found in your transcripts directory.")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			header := tui.StyleHeader.Render(fmt.Sprintf("%-8s %-12s %s", "ID", "DATE", "FILE"))
			fmt.Println(header)
			for _, e := range entries {
				date := e.Name.Date
				if len(date) == 8 {
					date = date[0:4] + "-" + date[4:6] + "-" + date[6:8]
				}
				fmt.Printf("%-8s %-12s %s\n", e.Name.ID, date, tui.StyleMuted.Render(e.Name.Filename()))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of recordings to show")
	return cmd
}

func viewCmd() *cobra.Command {
	var showFrontmatter bool
	var follow bool

	cmd := &cobra.Command{
		Use:   "view [id|latest]",
		Short: "View a transcript in the terminal",
		Long: `View a transcript by ID, or the most recent one.

With --follow the view tails the transcript and prints text as a
running realtime session appends it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "latest"
			if len(args) == 1 {
				target = args[0]
			}
			return runView(target, showFrontmatter, follow)
		},
	}

	cmd.Flags().BoolVar(&showFrontmatter, "show-frontmatter", false, "show the transcript metadata block")
	cmd.Flags().BoolVar(&follow, "follow", false, "keep watching the transcript and print appended text")
	return cmd
}

func runView(target string, showFrontmatter, follow bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	saveDir := cfg.ExpandedSavePath()

	var entry transcript.Entry
	var found bool
	if target == "latest" {
		entry, found, err = transcript.Latest(saveDir)
	} else {
		var id transcript.ID
		id, err = transcript.ParseID(target)
		if err == nil {
			entry, found, err = transcript.FindByID(saveDir, id)
		}
	}
	if err != nil {
		return err
	}
	if !found {
		if target == "latest" {
			fmt.Println("No transcripts found to display.")
			return nil
		}
		return fmt.Errorf("transcript %s not found in %s", target, saveDir)
	}

	store := transcript.NewStore(entry.Path)
	meta, body, err := store.Read()
	if err != nil {
		return err
	}

	if showFrontmatter {
		fmt.Println(tui.StyleHeader.Render("Metadata"))
		fmt.Print(tui.StyleMuted.Render(meta.Serialize()))
	}
	fmt.Print(body)
	if body != "" && !strings.HasSuffix(body, "\n") {
		fmt.Println()
	}

	if !follow {
		return nil
	}

	// Tail mode: print only what gets appended. The watcher survives
	// the session's atomic rename-replace writes.
	printed := len(body)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err = transcript.Follow(ctx, entry.Path, func() {
		_, current, err := store.Read()
		if err != nil {
			return
		}
		if len(current) > printed {
			fmt.Print(current[printed:])
			printed = len(current)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func migrateCmd() *cobra.Command {
	var dryRun bool
	var execute bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Rename transcripts from the legacy filename layout",
		Long: `Migrate transcript filenames from the old layout to the new one.

Old layout: transcript_YYYYMMDD_IDDDDD.md
New layout: IDDDDD_transcript_YYYYMMDD.md

Use --dry-run to preview changes, --execute to perform them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(dryRun, execute)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview changes without modifying files")
	cmd.Flags().BoolVar(&execute, "execute", false, "perform the migration")
	return cmd
}

func runMigrate(dryRun, execute bool) error {
	if dryRun == execute {
		return fmt.Errorf("specify exactly one of --dry-run or --execute")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	saveDir := cfg.ExpandedSavePath()

	if execute && !tui.Confirm(
		"Proceed with the migration?",
		"Legacy transcript files will be renamed in place.",
		"Migrate",
		"Cancel",
	) {
		fmt.Println("Migration cancelled.")
		return nil
	}

	result, err := transcript.Migrate(saveDir, dryRun)
	if err != nil {
		return err
	}
	if len(result.Operations) == 0 {
		fmt.Println("No files found matching the legacy layout.")
		return nil
	}

	for _, op := range result.Operations {
		fmt.Printf("  %s -> %s\n", op[0], op[1])
	}
	verb := "Renamed"
	if dryRun {
		verb = "Would rename"
	}
	fmt.Println(tui.StyleSuccess.Render(fmt.Sprintf("%s %d file(s)", verb, result.Renamed)))
	for _, e := range result.Errors {
		fmt.Println(tui.StyleError.Render("  " + e))
	}
	return nil
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and manage configuration",
	}
	cmd.AddCommand(configPathCmd(), configShowCmd(), configInitCmd())
	return cmd
}

func configPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			content, err := os.ReadFile(path)
			if os.IsNotExist(err) {
				fmt.Println("No config file yet; run 'rec config init' or just 'rec'.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Print(string(content))
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil {
				if !tui.Confirm(
					"Config file already exists. Overwrite?",
					path,
					"Overwrite",
					"Keep",
				) {
					fmt.Println("Kept existing configuration.")
					return nil
				}
			}
			if err := config.SaveDefaultConfig(); err != nil {
				return err
			}
			fmt.Printf("Default configuration written to %s\n", path)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rejoice version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rejoice v%s\n", version)
		},
	}
}
