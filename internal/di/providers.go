package di

import (
	"fmt"
	"net"
	"strconv"

	"RegimeWatch/internal/domain/repository"
	domsvc "RegimeWatch/internal/domain/service"
	"RegimeWatch/internal/handler/api"
	internalrepo "RegimeWatch/internal/repository"
	"RegimeWatch/internal/service/binance"
	"RegimeWatch/internal/service/telegram"
	"RegimeWatch/internal/services/analytics"
	"RegimeWatch/internal/usecase"
	"RegimeWatch/pkg/cache"
	pkgch "RegimeWatch/pkg/clickhouse"
	"RegimeWatch/pkg/config"
	xhttp "RegimeWatch/pkg/http"
	pkgkafka "RegimeWatch/pkg/kafka"
	applogger "RegimeWatch/pkg/logger"
	"RegimeWatch/pkg/metrics"
	"RegimeWatch/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "console"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCacheService creates a Redis cache when the store backend is redis,
// nil otherwise.
func ProvideCacheService(cfg *config.Config) (cache.Service, error) {
	if cfg.Store.Backend != "redis" {
		return nil, nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}

	c, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideSnapshotStore creates the snapshot store per configured backend.
func ProvideSnapshotStore(cfg *config.Config, c cache.Service) repository.SnapshotStore {
	if cfg.Store.Backend == "redis" {
		return internalrepo.NewRedisSnapshotStore(c, cfg.Market.Symbol)
	}
	return internalrepo.NewFileSnapshotStore(cfg.Store.SnapshotPath, cfg.Market.Symbol)
}

// ProvideSubscriberStore creates the subscriber store per configured backend.
func ProvideSubscriberStore(cfg *config.Config, c cache.Service) repository.SubscriberStore {
	if cfg.Store.Backend == "redis" {
		return internalrepo.NewRedisSubscriberStore(c)
	}
	return internalrepo.NewFileSubscriberStore(cfg.Store.SubscribersPath)
}

// ProvideClickHouseClient creates a ClickHouse client when the datasource
// needs one, nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.DataSource.Type != "clickhouse" {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideCandleSource creates the market data source per datasource config.
func ProvideCandleSource(cfg *config.Config, chClient *pkgch.Client, l *applogger.Logger) (repository.CandleSource, error) {
	fine := repository.Interval(cfg.Market.FineInterval)
	coarse := repository.Interval(cfg.Market.CoarseInterval)
	if !repository.IsValidInterval(fine) || !repository.IsValidInterval(coarse) {
		return nil, fmt.Errorf("unsupported intervals: %s/%s", cfg.Market.FineInterval, cfg.Market.CoarseInterval)
	}

	switch cfg.DataSource.Type {
	case "rest":
		return binance.NewRESTSource(cfg.DataSource.BinanceBaseURL, cfg.DataSource.RequestTimeout), nil
	case "stream":
		capacity := cfg.DataSource.WindowCapacity
		if capacity < cfg.Market.CandleLimit {
			capacity = cfg.Market.CandleLimit
		}
		return binance.NewStreamSource(
			cfg.DataSource.WebSocketURL,
			cfg.Market.Symbol,
			[]repository.Interval{fine, coarse},
			capacity,
			cfg.DataSource.ReconnectDelay,
			cfg.DataSource.PingInterval,
			l,
		), nil
	case "clickhouse":
		src := internalrepo.NewCHCandleSource(chClient, cfg.ClickHouse.Database)
		src.SetLogger(l)
		return src, nil
	default:
		return nil, fmt.Errorf("unknown datasource type: %s", cfg.DataSource.Type)
	}
}

// ProvideClassifier loads model metadata and creates the HTTP classifier.
func ProvideClassifier(cfg *config.Config) (domsvc.Classifier, error) {
	meta, err := analytics.LoadMetadata(cfg.Model.MetadataPath)
	if err != nil {
		return nil, fmt.Errorf("model metadata: %w", err)
	}
	return analytics.NewHTTPClassifier(cfg.Model.ServiceURL, cfg.Model.Timeout, cfg.Model.RetryAttempts, meta), nil
}

// ProvideAlertPublisher creates the Kafka alert publisher when enabled,
// nil otherwise.
func ProvideAlertPublisher(cfg *config.Config) (domsvc.AlertPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideTransport creates the Telegram delivery transport when enabled,
// nil otherwise.
func ProvideTransport(cfg *config.Config) domsvc.Transport {
	if !cfg.Telegram.Enabled {
		return nil
	}
	return telegram.NewTransport(cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken, cfg.Telegram.SendTimeout)
}

// ProvideFanout creates the notification fan-out stage.
func ProvideFanout(
	subs repository.SubscriberStore,
	transport domsvc.Transport,
	publisher domsvc.AlertPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Fanout {
	return usecase.NewFanout(subs, transport, publisher, m, l)
}

// ProvideMonitor creates the polling worker.
func ProvideMonitor(
	cfg *config.Config,
	source repository.CandleSource,
	classifier domsvc.Classifier,
	snaps repository.SnapshotStore,
	fanout *usecase.Fanout,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.RegimeMonitor {
	mc := usecase.MonitorConfig{
		Symbol:         cfg.Market.Symbol,
		FineInterval:   repository.Interval(cfg.Market.FineInterval),
		CoarseInterval: repository.Interval(cfg.Market.CoarseInterval),
		CandleLimit:    cfg.Market.CandleLimit,
		PollInterval:   cfg.Market.PollInterval,
	}
	return usecase.NewRegimeMonitor(mc, source, classifier, snaps, fanout, m, l)
}

// ProvideBot creates the Telegram bot when enabled, nil otherwise.
func ProvideBot(
	cfg *config.Config,
	subs repository.SubscriberStore,
	snaps repository.SnapshotStore,
	l *applogger.Logger,
) *telegram.Bot {
	if !cfg.Telegram.Enabled {
		return nil
	}
	return telegram.NewBot(cfg.Telegram.APIBaseURL, cfg.Telegram.BotToken, cfg.Telegram.PollTimeout, subs, snaps, l)
}

// ProvideHTTPHandler creates the HTTP query surface.
func ProvideHTTPHandler(
	l *applogger.Logger,
	snaps repository.SnapshotStore,
	subs repository.SubscriberStore,
) xhttp.Handler {
	return api.NewRegimeHandler(l, snaps, subs)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	monitor *usecase.RegimeMonitor,
	bot *telegram.Bot,
	source repository.CandleSource,
	publisher domsvc.AlertPublisher,
	chClient *pkgch.Client,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, monitor, bot, source, publisher, chClient, handler)
}
