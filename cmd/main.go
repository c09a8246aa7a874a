package main

import (
	"bytes"
	"coingecko-telegram-bot/config"
	"coingecko-telegram-bot/internal/database"
	"coingecko-telegram-bot/internal/market"
	"coingecko-telegram-bot/internal/market/coingecko"
	"coingecko-telegram-bot/internal/market/coinpaprika"
	"coingecko-telegram-bot/internal/metrics"
	"coingecko-telegram-bot/internal/telegram"
	"coingecko-telegram-bot/lib/translation"
	"context"
	"fmt"
	"github.com/davecgh/go-spew/spew"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/leonelquinteros/gotext"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"
)

const (
	maxConcurrentUpdates = 8
	webhookBuffer        = 100
	metricsSaveInterval  = 5 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

var rootCmd = &cobra.Command{
	Use:          "coingecko-telegram-bot",
	Short:        "Telegram bot answering crypto price, conversion and moderation commands",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.BindFlags(cmd.Flags()); err != nil {
			return errors.Wrap(err, "could not bind flags")
		}
		setupLogging()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.Bool("debug", false, "enable debug logging")
	flags.Int("port", 8080, "port of the health, metrics and webhook server")
	flags.String("webhook-url", "", "public base URL telegram pushes updates to; empty uses long polling")
	flags.String("market-provider", "coingecko", "market data provider: coingecko or coinpaprika")
	flags.String("db-path", "data/bot.db", "sqlite database path")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

func setupLogging() {
	log.SetLevel(log.ErrorLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting telegram bot...")
}

func run(ctx context.Context) error {
	gotext.Configure(config.GetString("locales_dir"), strings.ToLower(config.GetString("lang")), "default")
	log.Debugf("replying in language %s", translation.GetLanguage())

	token := config.GetString("telegram_bot_token")
	if token == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is not set")
	}

	store, err := database.Open(config.GetString("db_path"))
	if err != nil {
		return errors.Wrap(err, "failed to initialize database")
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	botMetrics := metrics.New(registry)
	botMetrics.Load(store)

	provider, err := newProvider(config.GetString("market_provider"))
	if err != nil {
		return err
	}
	provider = metrics.InstrumentProvider(provider, botMetrics)

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:          token,
		Debug:          config.GetBool("debug"),
		UpdatesTimeout: 60,
	}, provider, store)
	if err != nil {
		return err
	}

	var (
		updates tgbotapi.UpdatesChannel
		webhook *telegram.Webhook
	)
	if webhookURL := config.GetString("webhook_url"); webhookURL != "" {
		webhook = telegram.NewWebhook(token, webhookBuffer)
		if err := bot.SetWebhook(webhookURL); err != nil {
			return err
		}
		updates = webhook.Updates()
	} else if updates, err = bot.GetUpdatesChannel(); err != nil {
		return errors.Wrap(err, "failed to get updates channel")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.GetInt("port")),
		Handler:           newRouter(registry, webhook),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Launching health, metrics and webhook endpoint on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if webhook == nil {
			bot.StopReceivingUpdates()
		} else if err == nil {
			// no handler is left to push into the channel
			webhook.Close()
		}
		return errors.Wrap(err, "http shutdown")
	})
	g.Go(func() error {
		handleUpdates(gctx, bot, botMetrics, updates)
		return nil
	})
	g.Go(func() error {
		saveMetricsPeriodically(gctx, botMetrics, store)
		return nil
	})

	err = g.Wait()
	if saveErr := botMetrics.Save(store); saveErr != nil {
		log.Errorf("failed to save metrics: %v", saveErr)
	}
	log.Info("Metrics saved, shutting down...")
	return err
}

func newProvider(name string) (market.Provider, error) {
	switch strings.ToLower(name) {
	case "", "coingecko":
		return coingecko.NewClient(
			config.GetString("coingecko_api_url"),
			coingecko.WithAPIKey(config.GetString("coingecko_api_key")),
			coingecko.WithTimeout(config.GetDuration("http_timeout")),
		), nil
	case "coinpaprika":
		return coinpaprika.NewProvider(
			config.GetString("api_pro_key"),
			coinpaprika.WithHTTPClient(&http.Client{Timeout: config.GetDuration("http_timeout")}),
		), nil
	}
	return nil, errors.Errorf("unknown market provider %q", name)
}

func handleUpdates(ctx context.Context, bot *telegram.Bot, m *metrics.BotMetrics, updates tgbotapi.UpdatesChannel) {
	var workers errgroup.Group
	workers.SetLimit(maxConcurrentUpdates)
	defer workers.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				log.Debugf("Received non-message update: %s", spew.Sdump(update))
				continue
			}
			if !update.Message.IsCommand() {
				continue
			}

			m.TrackMessage(update.Message.Chat.ID, update.Message.Chat.Title)

			workers.Go(func() error {
				handleCommand(ctx, bot, m, update)
				return nil
			})
		}
	}
}

type commandHandler interface {
	HandleUpdate(ctx context.Context, u tgbotapi.Update) (string, bool)
	SendMessage(m telegram.Message) error
}

func handleCommand(ctx context.Context, bot commandHandler, m *metrics.BotMetrics, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := bytes.TrimRight(stackBuf[:stackSize], "\x00")
			log.Errorf("Recovered from panic: %v\nStack trace: %s", r, stackTrace)
		}
	}()

	text, sent := bot.HandleUpdate(ctx, update)
	if sent {
		m.CommandsProcessed.Inc()
		return
	}
	if text == "" {
		return
	}

	err := bot.SendMessage(telegram.Message{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		MessageID: update.Message.MessageID,
	})

	if err != nil {
		log.Errorf("Failed to send message: %v", err)
	} else {
		m.CommandsProcessed.Inc()
	}
}

func saveMetricsPeriodically(ctx context.Context, m *metrics.BotMetrics, store metrics.Store) {
	ticker := time.NewTicker(metricsSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Save(store); err != nil {
				log.Errorf("failed to save metrics: %v", err)
			}
		}
	}
}
