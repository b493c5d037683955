package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sauti-platform/sauti/src/analytics"
	"github.com/sauti-platform/sauti/src/api/config"
	"github.com/sauti-platform/sauti/src/api/data"
	"github.com/sauti-platform/sauti/src/api/webserver"
	"github.com/sauti-platform/sauti/src/jobs"
	"github.com/sauti-platform/sauti/src/lifecycle"
	"github.com/sauti-platform/sauti/src/notify"
	"github.com/sauti-platform/sauti/src/ops"
	"github.com/sauti-platform/sauti/src/queue"
	"github.com/sauti-platform/sauti/src/scheduler"
)

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	data.Migrate(db)
	rdb := data.MustRedis(cfg.RedisURL)

	q := queue.New(rdb, cfg.JobMaxAttempts)

	// channel order: in-app first (cheapest, always on), then mail, then SMS
	channels := []notify.Channel{notify.NewInApp(db)}
	if cfg.SMTPHost != "" {
		mail, err := notify.NewMail(notify.MailConfig{
			Host: cfg.SMTPHost, Port: cfg.SMTPPort,
			User: cfg.SMTPUser, Pass: cfg.SMTPPass, From: cfg.MailFrom,
		})
		if err != nil {
			log.Fatalf("mail channel: %v", err)
		}
		channels = append(channels, mail)
	}
	if cfg.SMSGatewayURL != "" || cfg.SMSAccountSID != "" {
		sms, err := notify.NewSMS(notify.SMSConfig{
			GatewayURL:     cfg.SMSGatewayURL,
			AccountSID:     cfg.SMSAccountSID,
			AuthToken:      cfg.SMSAuthToken,
			From:           cfg.SMSFromNumber,
			StatusCallback: cfg.SMSCallbackURL,
			Timeout:        cfg.DeliveryTimeout,
			Attempts:       cfg.DeliveryAttempts,
		})
		if err != nil {
			// half-configured gateway is an operator error, fail at boot
			log.Fatalf("sms channel: %v", err)
		}
		channels = append(channels, sms)
	}

	dispatcher := notify.NewDispatcher(channels...)
	fanout := notify.NewFanOut(db, dispatcher)
	agg := analytics.New(db)

	alerter, err := ops.NewDiscordAlerter(cfg.DiscordToken, cfg.DiscordChannelID)
	if err != nil {
		log.Fatalf("alerter: %v", err)
	}

	worker := queue.NewWorker(q, alerter)
	worker.Handle(queue.KindNotifyStatusChange, func(ctx context.Context, job queue.Job) error {
		return fanout.StatusChanged(ctx, job.BillID, job.OldStatus, job.NewStatus)
	})
	worker.Handle(queue.KindNotifyEngagement, func(ctx context.Context, job queue.Job) error {
		return fanout.Engagement(ctx, job.EngagementID)
	})
	worker.Handle(queue.KindRecomputeAnalytics, func(ctx context.Context, job queue.Job) error {
		return agg.RecomputeClauseAnalytics(ctx, job.BillID)
	})

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < cfg.QueueWorkers; i++ {
		go worker.Run(ctx)
	}

	lc := lifecycle.New(db, queue.NewEmitter(q, rdb))
	sched := scheduler.New(scheduler.NewRedisLocker(rdb))
	for _, t := range jobs.Tasks(cfg, lc, agg) {
		sched.Add(t)
	}
	sched.Start(ctx)

	router := webserver.New(cfg, db, q)
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()
	log.Printf("Sauti API listening on %s", cfg.Port)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()
	sched.Stop()

	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
