package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"dialect-translator/internal/config"
	"dialect-translator/internal/logging"
	"dialect-translator/internal/models"
	"dialect-translator/internal/server"
	"dialect-translator/internal/service"
	"dialect-translator/internal/session"
	"dialect-translator/internal/storage"
	"dialect-translator/internal/tui"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
	logger   *slog.Logger
	store    *storage.SQLiteStorage
	svc      *service.Service
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the command line and closes the store whether or not the command failed
func run(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	defer func() {
		if store != nil {
			store.Close()
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

var rootCmd = &cobra.Command{
	Use:   "translator",
	Short: "Kurdish dialect translator - Sorani ↔ Badini",
	Long: `Kurdish dialect translator - translates text between Sorani and Badini Kurdish
through a generative language model (Gemini or Ollama):
- Web UI and JSON API (Gin)
- Terminal UI
- One-shot translation of text, web pages and RSS feeds
- Translation history with markdown export`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		// Log lines would corrupt the full-screen terminal UI
		if cmd.Name() == "tui" {
			logger = logging.Discard()
		} else {
			logger, err = logging.New(os.Stderr, cfg.Log.Level, cfg.Log.NoColor)
			if err != nil {
				return err
			}
		}

		store, err = storage.NewSQLiteStorage(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		client, err := service.CreateClient(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		svc = service.NewService(cfg, store, client, logger)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and JSON API server (Gin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.Server.Port = port
		}
		return server.New(cfg, svc, logger).Run(cmd.Context())
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := session.New(svc.TranslatorFor(models.OriginUI))
		return tui.Run(cmd.Context(), ctrl)
	},
}

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text, stdin or a web page",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := sourceFlag(cmd)
		if err != nil {
			return err
		}

		if pageURL, _ := cmd.Flags().GetString("url"); pageURL != "" {
			page, out, err := svc.TranslateURL(cmd.Context(), pageURL, source)
			if err != nil {
				return err
			}
			if page.Title != "" {
				fmt.Printf("# %s\n\n", page.Title)
			}
			if !page.PublishedAt.IsZero() {
				fmt.Printf("Published: %s\n\n", page.PublishedAt.Local().Format("2006-01-02 15:04"))
			}
			fmt.Println(out)
			return nil
		}

		text := strings.Join(args, " ")
		if text == "" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(data)
		}

		out, err := svc.Translate(cmd.Context(), text, source, models.OriginCLI)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed <url>",
	Short: "Translate the newest items of an RSS/Atom feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := sourceFlag(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		result, err := svc.TranslateFeed(cmd.Context(), args[0], source, limit)
		if result != nil {
			for _, item := range result.Items {
				if item.Error != "" {
					continue
				}
				fmt.Printf("## %s\n%s\n", item.TitleOutput, item.SourceURL)
				if !item.PublishedAt.IsZero() {
					fmt.Printf("%s\n", item.PublishedAt.Local().Format("2006-01-02 15:04"))
				}
				fmt.Printf("\n%s\n\n", item.TextOutput)
			}
			fmt.Printf("Translated %d of %d items (errors: %d)\n",
				result.Translated, result.Total, result.Errors)
		}
		return err
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent translations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		translations, err := svc.History(limit)
		if err != nil {
			return err
		}
		if len(translations) == 0 {
			fmt.Println("No translations yet")
			return nil
		}

		for _, t := range translations {
			fmt.Printf("[%d] %s  %s  (%s)\n", t.ID, t.CreatedAt.Local().Format("2006-01-02 15:04"), t.Direction(), t.Origin)
			fmt.Printf("    %s\n    → %s\n", shorten(t.Input, 70), shorten(t.Output, 70))
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one translation in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}
		t, err := svc.Translation(id)
		if err != nil {
			return err
		}

		fmt.Printf("[%d] %s  %s  (%s, %s)\n", t.ID, t.CreatedAt.Local().Format("2006-01-02 15:04"), t.Direction(), t.Origin, t.Provider)
		if t.SourceURL != "" {
			fmt.Printf("Source: %s\n", t.SourceURL)
		}
		fmt.Printf("\n%s:\n%s\n\n%s:\n%s\n", t.Source.Label(), t.Input, t.Target.Label(), t.Output)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show translation history statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := svc.Stats()
		if err != nil {
			return err
		}

		fmt.Println("=== Translation Statistics ===")
		fmt.Printf("Total translations:  %d\n", stats.Total)
		for _, d := range stats.ByDirection {
			fmt.Printf("%-20s %d\n", d.Source.String()+" → "+d.Target.String()+":", d.Count)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export translation history as markdown files",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		since, _ := cmd.Flags().GetDuration("since")

		result, err := svc.Export(dir, time.Now().Add(-since))
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d translations to %s (%d files)\n", result.Exported, dir, len(result.Files))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(server.Version)
	},
}

func sourceFlag(cmd *cobra.Command) (models.Dialect, error) {
	from, _ := cmd.Flags().GetString("from")
	return models.ParseDialect(from)
}

func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (overrides server.port)")

	translateCmd.Flags().StringP("from", "f", "sorani", "source dialect: sorani or badini")
	translateCmd.Flags().StringP("url", "u", "", "translate the text of a web page")

	feedCmd.Flags().StringP("from", "f", "sorani", "source dialect: sorani or badini")
	feedCmd.Flags().IntP("limit", "l", 5, "maximum number of feed items to translate")

	historyCmd.Flags().IntP("limit", "l", 20, "number of translations to show")

	exportCmd.Flags().StringP("dir", "d", "./export", "output directory")
	exportCmd.Flags().Duration("since", 30*24*time.Hour, "export translations newer than this")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(feedCmd)
	historyCmd.AddCommand(historyShowCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}
