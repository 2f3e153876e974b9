package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"sampletrack/internal/config"
	"sampletrack/internal/notify"
	"sampletrack/internal/report"
	"sampletrack/internal/server"
	"sampletrack/internal/store"
	"sampletrack/internal/watcher"
)

var (
	configPath = flag.String("config", "config.toml", "configuration file")
	masterPath = flag.String("master", "", "master tracker file (overrides configuration)")
	serveMode  = flag.Bool("serve", false, "run the HTTP server with scheduled and watched runs")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *masterPath != "" {
		cfg.Paths.MasterPath = *masterPath
	}
	if err := cfg.EnsureDirs(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	recipients, err := config.LoadRecipients(cfg.Paths.RecipientsPath)
	if err != nil {
		log.Printf("load recipients: %v; continuing without division routing", err)
		recipients = &config.Recipients{}
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer st.Close()

	var mailer notify.Notifier
	if cfg.Mail.Enabled {
		mailer = notify.NewMailer(cfg.Mail)
	}
	ops := notify.NewOpsNotifier(cfg.Slack)

	svc := report.NewService(cfg, recipients, st, mailer, ops)

	if !*serveMode {
		result, err := svc.Run()
		if err != nil {
			log.Fatalf("run failed: %v", err)
		}
		fmt.Printf("run %s completed: %d ZBM reports, %d Division reports, %d warnings\n",
			result.Run.ID, len(result.ZBMs), len(result.Divisions), len(result.Warnings))
		return
	}

	serve(cfg, st, svc)
}

// serve runs the HTTP API plus the cron schedule and the master file
// watcher until interrupted.
func serve(cfg *config.AppConfig, st *store.Store, svc *report.Service) {
	runNow := func() {
		_, err := svc.Run()
		if err != nil && !errors.Is(err, report.ErrRunInProgress) {
			log.Printf("scheduled run: %v", err)
		}
	}

	if cfg.Schedule.Enabled {
		c := cron.New()
		if _, err := c.AddFunc(cfg.Schedule.Spec, runNow); err != nil {
			log.Fatalf("schedule %q: %v", cfg.Schedule.Spec, err)
		}
		c.Start()
		defer c.Stop()
		log.Printf("scheduled runs: %s", cfg.Schedule.Spec)
	}

	w, err := watcher.New(cfg.Paths.MasterPath, runNow)
	if err != nil {
		log.Printf("file watcher disabled: %v", err)
	} else {
		defer w.Close()
		log.Printf("watching %s", cfg.Paths.MasterPath)
	}

	srv := server.NewServer(cfg, st, svc)
	go func() {
		log.Printf("listening on :%d", cfg.Server.Port)
		if err := srv.Run(); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("\nshutting down")
}
