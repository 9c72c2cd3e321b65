package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/restobooking/config"
	"github.com/Domenick1991/restobooking/internal/agent"
	"github.com/Domenick1991/restobooking/internal/cache"
	"github.com/Domenick1991/restobooking/internal/kafka"
	"github.com/Domenick1991/restobooking/internal/logger"
	"github.com/Domenick1991/restobooking/internal/rabbitmq"
	"github.com/Domenick1991/restobooking/internal/repository"
	"github.com/Domenick1991/restobooking/internal/service/assistant"
	"github.com/Domenick1991/restobooking/internal/service/booking"
)

const (
	BrokerKafka    = "kafka"
	BrokerRabbitMQ = "rabbitmq"
	BrokerNone     = "none"
)

// App holds the services shared by the HTTP server and the worker.
type App struct {
	Ledger    *booking.Ledger
	Assistant *assistant.Service
	Agent     *agent.Client

	closers []func()
}

// NewApp opens storage and wires the ledger. The event broker and the redis lock are optional
// and only connected when configured.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.WithComponent("bootstrap")
	app := &App{}

	backend, closeBackend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeBackend)
	log.WithField("driver", cfg.Storage.Driver).Info("storage opened")

	app.Agent = agent.NewClient(cfg.Agent.BaseURL, cfg.Agent.Timeout())
	var gatewayOpts []repository.Option
	if cfg.Agent.RefreshOnWrite {
		gatewayOpts = append(gatewayOpts, repository.WithCommitHook(app.Agent.RefreshHook()))
	}
	gateway := repository.NewGateway(backend, gatewayOpts...)

	opts := []booking.LedgerOption{
		booking.WithSlot(cfg.Booking.Slot()),
		booking.WithRevalidateOnUpdate(cfg.Booking.RevalidateOnUpdate),
		booking.WithTimeLayout(cfg.Booking.TimeLayout),
	}
	producer, closeProducer, err := openProducer(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if producer != nil {
		app.closers = append(app.closers, closeProducer)
		opts = append(opts,
			booking.WithProducer(producer, cfg.Kafka.BookingTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
		log.WithField("broker", cfg.Events.Broker).Info("booking events enabled")
	}
	if cfg.Booking.DistributedLock {
		client := cache.NewRedisClient(cfg.Redis)
		app.closers = append(app.closers, func() { _ = client.Close() })
		opts = append(opts, booking.WithLocker(cache.NewRedisLocker(client, cfg.Storage.KeyPrefix, cfg.Booking.LockTTL())))
	}

	ledger, err := booking.NewLedger(ctx, gateway, opts...)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Ledger = ledger
	app.Assistant = assistant.NewService(ledger, app.Agent)
	return app, nil
}

// openProducer returns a nil producer when events are disabled or kafka has no brokers.
func openProducer(cfg *config.Config) (booking.Producer, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Events.Broker)) {
	case BrokerRabbitMQ:
		p, err := rabbitmq.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	case BrokerKafka, "":
		if len(cfg.Kafka.Brokers) == 0 {
			return nil, nil, nil
		}
		p := kafka.NewProducer(cfg.Kafka.Brokers)
		return p, func() { _ = p.Close() }, nil
	case BrokerNone:
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown events broker %q", cfg.Events.Broker)
	}
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
