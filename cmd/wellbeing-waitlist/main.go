package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wellbeing-waitlist/internal/client"
	"wellbeing-waitlist/internal/config"
	"wellbeing-waitlist/internal/countdown"
	logpkg "wellbeing-waitlist/internal/logger"
	"wellbeing-waitlist/internal/notify"
	"wellbeing-waitlist/internal/service"
	"wellbeing-waitlist/internal/session"

	"github.com/go-redis/redis/v8"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "wellbeing-waitlist"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := rootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorLine(err))
		os.Exit(1)
	}
}

// errorLine user-facing text for a failed command
func errorLine(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrNoPendingDelete),
		errors.Is(err, service.ErrDeleteInFlight),
		errors.Is(err, service.ErrNotLoaded),
		errors.Is(err, service.ErrAdminRequired):
		return service.UserMessage(err)
	default:
		return err.Error()
	}
}

func rootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Patient intake and triage waitlist console",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
	}

	root.AddCommand(
		homeCmd(a),
		registerCmd(a),
		loginCmd(a),
		logoutCmd(a),
		listCmd(a),
		watchCmd(a),
		cureCmd(a),
		deleteCmd(a),
		exportCmd(a),
		pingCmd(a),
	)
	return root
}

// app shared wiring of every command
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	redis   *redis.Client
	session *session.Session
	client  *client.WaitlistClient
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	log, err := logpkg.New(logpkg.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: serviceName,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log

	if cfg.Session.Store == "redis" || cfg.Notify.StreamEnabled {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	var store session.Store = session.NewMemoryStore()
	if cfg.Session.Store == "redis" {
		store = session.NewRedisStore(a.redis)
	}
	a.session = session.New(store, cfg.Session.Key, cfg.Session.TTL, log)
	if err := a.session.Restore(ctx); err != nil {
		return err
	}

	a.client = client.NewWaitlistClient(cfg.API.BaseURL, cfg.API.Timeout, a.session, log)
	a.log.Debug("Console initialized",
		zap.String("api", cfg.API.BaseURL),
		zap.String("session_store", cfg.Session.Store),
		zap.Bool("privileged", a.session.IsPrivileged()),
	)
	return nil
}

func (a *app) close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// publisher fan-out of cure notifications configured for this run
func (a *app) publisher() notify.Publisher {
	pubs := notify.Multi{notify.NewLogPublisher(a.log)}
	if a.cfg.Notify.StreamEnabled && a.redis != nil {
		pubs = append(pubs, notify.NewStreamPublisher(a.redis, a.cfg.Notify.Stream, 0))
	}
	if a.cfg.Notify.MQTT.Enabled {
		mqttPub, err := notify.NewMQTTPublisher(a.cfg.Notify.MQTT, a.log)
		if err != nil {
			a.log.Warn("MQTT publishing disabled", zap.Error(err))
		} else {
			pubs = append(pubs, mqttPub)
		}
	}
	return pubs
}

func (a *app) waitlist(pub notify.Publisher) *service.Waitlist {
	return service.NewWaitlist(a.client, a.session, pub, clockwork.NewRealClock(), countdown.Options{
		TickInterval:    a.cfg.Countdown.TickInterval,
		NotificationTTL: a.cfg.Countdown.NotificationTTL,
	}, a.log)
}
