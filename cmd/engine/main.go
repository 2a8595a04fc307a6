package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/joripage/matching-engine/config"
	"github.com/joripage/matching-engine/pkg/engine"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/publisher"
	"go.uber.org/zap"
)

func main() {
	var configFile, inputFile, pprofAddr string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.StringVar(&inputFile, "input", "", "Order file, overrides input.file; - reads stdin")
	flag.StringVar(&pprofAddr, "pprof", "", "Serve pprof on this address, e.g. localhost:6060")
	flag.Parse()

	if err := run(configFile, inputFile, pprofAddr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configFile, inputFile, pprofAddr string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if inputFile != "" {
		cfg.Input.File = inputFile
		cfg.Input.Kafka = nil
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(level).Named(cfg.ServiceName)
	defer logger.Sync()
	zap.ReplaceGlobals(logger.Zap())

	if pprofAddr != "" {
		go func() {
			if err := http.ListenAndServe(pprofAddr, nil); err != nil {
				zap.S().Warnf("pprof server stopped: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink, err := buildSinks(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Warn(ctx, "close sinks", zap.Error(err))
		}
	}()

	src, closeSrc, err := openInput(cfg)
	if err != nil {
		return err
	}
	defer closeSrc()
	// a blocked read only returns once its input is closed
	context.AfterFunc(ctx, closeSrc)

	e := engine.New(engine.Config{
		LevelsPerBook:   cfg.Engine.LevelsPerBook,
		QueueCapacity:   cfg.Engine.QueueCapacity,
		ProducerBackoff: cfg.Engine.ProducerBackoff,
		ConsumerBackoff: cfg.Engine.ConsumerBackoff,
	}, sink, logger)

	err = e.Run(ctx, src)
	if errors.Is(err, context.Canceled) {
		logger.Info(context.Background(), "shutting down on signal")
		return nil
	}
	return err
}

type stdout struct{ io.Writer }

func buildSinks(ctx context.Context, cfg *config.AppConfig, logger *logging.Logger) (publisher.Fanout, error) {
	var sinks publisher.Fanout
	fail := func(err error) (publisher.Fanout, error) {
		_ = sinks.Close()
		return nil, err
	}

	if cfg.Sinks.Stdout {
		sinks = append(sinks, publisher.NewWriterSink(stdout{os.Stdout}, logger.Zap().Named("stdout")))
	}
	if cfg.Sinks.File != "" {
		f, err := os.Create(cfg.Sinks.File)
		if err != nil {
			return fail(fmt.Errorf("open output file: %w", err))
		}
		sinks = append(sinks, publisher.NewWriterSink(f, logger.Zap().Named("file")))
	}
	if r := cfg.Sinks.Redis; r != nil {
		client, err := redis_wrapper.InitRedisWithBackoff(ctx, r.Conn)
		if err != nil {
			return fail(fmt.Errorf("connect redis: %w", err))
		}
		sinks = append(sinks, publisher.NewRedisSink(client, r.RedisSinkConfig, logger.Zap().Named("redis")))
	}
	if k := cfg.Sinks.Kafka; k != nil {
		sinks = append(sinks, publisher.NewKafkaSink(kafkawrapper.NewProducer(*k), logger.Zap().Named("kafka")))
	}
	if cfg.Sinks.Stats {
		sinks = append(sinks, publisher.NewStats(logger.Zap().Named("stats")))
	}
	return sinks, nil
}

func openInput(cfg *config.AppConfig) (engine.LineSource, func(), error) {
	if cfg.Input.Kafka != nil {
		c, err := kafkawrapper.NewLineConsumer(*cfg.Input.Kafka)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil
	}

	if cfg.Input.File == "" || cfg.Input.File == "-" {
		return engine.NewScannerSource(os.Stdin), func() { _ = os.Stdin.Close() }, nil
	}
	f, err := os.Open(cfg.Input.File)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return engine.NewScannerSource(f), func() { _ = f.Close() }, nil
}
