package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"chunkscribe/internal/config"
	"chunkscribe/internal/export"
	"chunkscribe/internal/pipeline"
	"chunkscribe/internal/provider"
	"chunkscribe/internal/server"
	"chunkscribe/internal/transcriber"
	"chunkscribe/internal/tui"
)

var version = "dev"

func main() {
	// optional .env for API keys; missing file is fine
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chunkscribe",
	Short: "Chunked audio transcription with timestamped speaker output",
	Long: `chunkscribe splits long audio files into chunks, transcribes them in
parallel against a cloud speech-to-text provider, and merges the results
into one transcript with timestamps on the original timeline.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		transcribeCmd(),
		serveCmd(),
		configureCmd(),
		modelCmd(),
		versionCmd(),
	)
}

func transcribeCmd() *cobra.Command {
	var (
		model       string
		language    string
		format      string
		output      string
		topic       string
		description string
		audioType   string
		speakers    int
		workers     int
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if model != "" {
				_, providerName, err := provider.FindModelByID(model)
				if err != nil {
					return err
				}
				cfg.Transcription.Provider = providerName
				cfg.Transcription.Model = model
			}
			if language != "" {
				cfg.Transcription.Language = language
			}
			if workers > 0 {
				cfg.Dispatch.Workers = workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			reqCtx := transcriber.Context{
				AudioType:   audioType,
				Topic:       topic,
				Description: description,
				Language:    cfg.Transcription.Language,
				Speakers:    speakers,
			}
			return runTranscribe(cmd.Context(), cfg, args[0], format, output, reqCtx)
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model ID (see 'chunkscribe model list')")
	cmd.Flags().StringVar(&language, "language", "", "ISO 639-1 language code, empty for auto-detect")
	cmd.Flags().StringVarP(&format, "format", "f", "txt", "output format: txt, srt, json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default next to the input)")
	cmd.Flags().StringVar(&topic, "topic", "", "what the audio is about, passed to the model as context")
	cmd.Flags().StringVar(&description, "description", "", "longer description of the audio content")
	cmd.Flags().StringVar(&audioType, "audio-type", "", "kind of recording: podcast, meeting, interview, ...")
	cmd.Flags().IntVar(&speakers, "speakers", 0, "expected number of speakers (0 for unknown)")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel transcription workers (overrides config)")

	return cmd
}

func runTranscribe(ctx context.Context, cfg *config.Config, path, formatName, output string, reqCtx transcriber.Context) error {
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, err := p.Transcribe(ctx, filepath.Base(path), data, reqCtx)
	if err != nil {
		return err
	}

	baseName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	artifact, err := export.Render(t, format, baseName)
	if err != nil {
		return err
	}

	if output == "" {
		output = filepath.Join(filepath.Dir(path), artifact.Filename)
	}
	if err := os.WriteFile(output, artifact.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	summary := fmt.Sprintf("%s\n%s",
		tui.StyleSuccess.Render(fmt.Sprintf("Transcript written to %s", output)),
		tui.StyleMuted.Render(fmt.Sprintf("%d segments from %d chunks, duration %s",
			len(t.Segments), t.SourceChunkCount, t.Duration().Round(time.Second))))
	fmt.Println(tui.StyleBox.Render(summary))

	if len(t.FailedChunkIndices) > 0 {
		fmt.Println(tui.StyleError.Render(fmt.Sprintf(
			"Warning: chunks %v failed to transcribe, the transcript has gaps", t.FailedChunkIndices)))
	}
	return nil
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP transcription API",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("failed to create config manager: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := manager.StartWatching(ctx); err != nil {
				return fmt.Errorf("failed to watch config: %w", err)
			}
			defer manager.Stop()

			cfg := manager.GetConfig()
			p, err := pipeline.New(cfg)
			if err != nil {
				return err
			}

			s := server.New(p, cfg.Limits.MaxInputBytes)

			if addr == "" {
				addr = cfg.Server.Addr
			}
			errCh := make(chan error, 1)
			go func() { errCh <- s.Listen(addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				return s.Shutdown()
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration wizard for chunkscribe.
This will guide you through setting up:
- Transcription provider and API key (Gemini, OpenAI)
- Model and language
- Parallel dispatch settings`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration wizard error: %w", err)
	}
	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}
	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println(tui.StyleSuccess.Render("Configuration saved successfully!"))
	fmt.Println()
	fmt.Println("Next Steps:")
	fmt.Println("1. Transcribe a file: chunkscribe transcribe episode.mp3")
	fmt.Println("2. Or start the API:  chunkscribe serve")

	configPath, _ := config.GetConfigPath()
	fmt.Printf("\nConfig file location: %s\n", configPath)
	return nil
}

func modelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Manage transcription models",
	}

	cmd.AddCommand(modelListCmd())

	return cmd
}

func modelListCmd() *cobra.Command {
	var providerFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available transcription models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModelList(providerFilter)
		},
	}

	cmd.Flags().StringVar(&providerFilter, "provider", "", "filter by provider name")

	return cmd
}

func runModelList(providerFilter string) error {
	providerNames := provider.ListProviders()
	if providerFilter != "" {
		found := false
		for _, name := range providerNames {
			if name == providerFilter {
				providerNames = []string{name}
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown provider: %s", providerFilter)
		}
	}

	for _, providerName := range providerNames {
		p := provider.GetProvider(providerName)
		if p == nil {
			continue
		}

		fmt.Printf("\n%s:\n", providerName)
		for _, m := range p.Models() {
			printModelLine(m, m.ID == p.DefaultModel())
		}
	}

	fmt.Println()
	return nil
}

func printModelLine(m provider.Model, isDefault bool) {
	line := fmt.Sprintf("  %s", m.ID)
	if m.Description != "" {
		line += fmt.Sprintf(" - %s", m.Description)
	}

	var caps []string
	if m.MaxAudioBytes > 0 {
		caps = append(caps, fmt.Sprintf("max %dMB/chunk", m.MaxAudioBytes>>20))
	}
	if m.MaxAudioDuration > 0 {
		caps = append(caps, fmt.Sprintf("max %s/chunk", m.MaxAudioDuration))
	}
	if isDefault {
		caps = append(caps, "default")
	}
	if len(caps) > 0 {
		line += fmt.Sprintf(" [%s]", strings.Join(caps, ", "))
	}

	fmt.Println(line)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the chunkscribe version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("chunkscribe " + version)
		},
	}
}
