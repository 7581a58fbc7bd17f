package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lixenwraith/powermode/audio"
	"github.com/lixenwraith/powermode/config"
	"github.com/lixenwraith/powermode/core"
	"github.com/lixenwraith/powermode/editor"
	"github.com/lixenwraith/powermode/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

type options struct {
	configPath  string
	debug       bool
	metricsAddr string
	sound       bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "powermode [file]",
		Short: "Terminal editor with particle bursts and screen shake on typing combos",
		Long: `powermode opens file in a minimal terminal editor. Keeping a typing combo
alive spawns sparks at the caret and shakes the view; large pastes set off party mode.

Keys: Ctrl-S save, Ctrl-P toggle power mode, Ctrl-K delete line, Esc/Ctrl-Q quit.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: ./powermode.yaml or ~/.config/powermode/powermode.yaml)")
	rootCmd.Flags().BoolVarP(&opts.debug, "debug", "d", false, "Write debug log to logs/powermode.log")
	rootCmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9091")
	rootCmd.Flags().BoolVar(&opts.sound, "sound", false, "Play a pop on every activation (overrides sound_enabled)")

	rootCmd.AddCommand(newConfigCommand(opts))
	return rootCmd
}

func newConfigCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.NewViper(opts.configPath))
			if err != nil {
				return err
			}
			return config.Dump(cmd.OutOrStdout(), cfg)
		},
	}
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	if logFile := setupLogging(opts.debug); logFile != nil {
		defer logFile.Close()
	}
	logger := slog.Default()

	v := config.NewViper(opts.configPath)
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("sound") {
		cfg.SoundEnabled = opts.sound
	}
	store, err := config.NewStore(cfg)
	if err != nil {
		return err
	}
	config.Watch(v, store, logger)

	reg := prometheus.NewRegistry()
	m := metrics.MustNewMetrics(reg)
	if opts.metricsAddr != "" {
		srv := serveMetrics(opts.metricsAddr, reg, logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	buf := editor.NewBuffer("")
	if len(args) == 1 {
		if buf, err = editor.OpenFile(args[0]); err != nil {
			return err
		}
	}

	sound := audio.NewSoundManager(audio.LoadAudioConfig())
	defer sound.Cleanup()
	enableSound := func(c config.Config) {
		if !c.SoundEnabled {
			return
		}
		if err := sound.Initialize(); err != nil {
			logger.Warn("audio unavailable", "err", err)
		}
	}
	enableSound(store.Load())
	store.OnChange(enableSound)

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	core.SetCrashHook(screen.Fini)

	app, err := NewApp(screen, buf, AppOptions{
		Config:  store,
		Metrics: m,
		Sound:   sound,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("powermode started", "file", buf.Path(), "config", v.ConfigFileUsed())
	return app.Run(ctx)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	core.Go(func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "addr", addr, "err", err)
		}
	})
	return srv
}
