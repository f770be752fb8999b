package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tzcal/internal/agenda"
	"tzcal/internal/config"
	appLog "tzcal/internal/log"
	"tzcal/internal/registry"
	"tzcal/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		listen     string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the agenda schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), configPath, listen)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "/etc/tzcal/config.yaml", "Path to config file")
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}

func runServe(parent context.Context, configPath, listen string) error {
	appLog.Info("tzcal starting", "version", version)

	conf, err := config.Load(configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", configPath)
		return err
	}
	if listen != "" {
		conf.Listen = listen
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"default_calendar", conf.DefaultCalendar,
		"agenda_cron", conf.AgendaCron,
		"basic_auth", conf.BasicAuth != nil,
	)

	reg := registry.New()
	if err := reg.Add(conf.DefaultCalendar, conf.Location()); err != nil {
		return err
	}

	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	agendaDone := make(chan struct{})
	if conf.AgendaCron != "" {
		sched, err := agenda.NewScheduler(reg, conf.AgendaCron, conf.Location(), nil)
		if err != nil {
			return err
		}
		go func() {
			defer close(agendaDone)
			sched.Run(ctx)
		}()
	} else {
		close(agendaDone)
	}

	err = web.StartServer(ctx, conf, reg)
	cancel()
	<-agendaDone
	if err != nil {
		appLog.Error("http server stopped", err)
		return err
	}
	appLog.Info("tzcal exiting")
	return nil
}
