package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"loanrag/internal/assistant"
	"loanrag/internal/assistant/openai"
	"loanrag/internal/config"
	"loanrag/internal/domain"
	"loanrag/internal/loader"
	"loanrag/internal/logging"
	"loanrag/internal/retrieval"
	"loanrag/internal/service"
	"loanrag/internal/watch"
)

// app holds the components assembled from configuration.
type app struct {
	cfg     *config.AppConfig
	cfgPath string
	logger  *slog.Logger
	svc     *service.LoanServiceImpl
}

type options struct {
	configPath string
	dataPath   string
	logLevel   string
}

func loadConfig(path string) (*config.AppConfig, string, error) {
	if path == "" {
		return config.LoadDefault()
	}
	cfg, err := config.Load(path)
	return cfg, path, err
}

func newApp(opts options, logOut io.Writer) (*app, error) {
	cfg, cfgPath, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.dataPath != "" {
		cfg.Data.Path = opts.dataPath
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	logger := logging.New(logOut, cfg.Log.Level)

	asst, err := buildAssistant(cfg.Assistant)
	if err != nil {
		return nil, err
	}
	ranker := retrieval.NewRanker(retrieval.NewScorer(scorerConfig(cfg.Search)))
	svc := service.NewLoanService(ranker, asst, cfg.Search.TopK,
		service.WithLogger(logger),
		service.WithSheet(cfg.Data.Sheet),
	)

	if cfg.Data.Path == "" {
		svc.LoadRecords(loader.Sample())
		logger.Info("using built-in sample dataset")
	} else if _, err := svc.LoadFile(cfg.Data.Path); err != nil {
		return nil, err
	}
	logger.Debug("app ready", "config", cfgPath, "assistant", asst.Name())
	return &app{cfg: cfg, cfgPath: cfgPath, logger: logger, svc: svc}, nil
}

func scorerConfig(sc config.SearchConfig) retrieval.Config {
	out := retrieval.Config{
		Weights: retrieval.Weights{
			Field:                sc.Weights.Field,
			IdentifierBonus:      sc.Weights.IdentifierBonus,
			ExactIdentifierBonus: sc.Weights.ExactIdentifierBonus,
			Numeric:              sc.Weights.Numeric,
		},
	}
	if len(sc.Thresholds) > 0 {
		out.Thresholds = make(map[string]retrieval.Threshold, len(sc.Thresholds))
		for name, th := range sc.Thresholds {
			out.Thresholds[name] = retrieval.Threshold{High: th.High, Low: th.Low}
		}
	}
	return out
}

func buildAssistant(ac config.AssistantConfig) (domain.Assistant, error) {
	switch ac.Type {
	case "offline", "":
		return assistant.NewOffline(ac.MaxSentences), nil
	case "openai":
		if ac.OpenAI == nil {
			return nil, fmt.Errorf("openai assistant config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:     ac.OpenAI.BaseURL,
			APIKeyEnv:   ac.OpenAI.APIKeyEnv,
			Model:       ac.OpenAI.Model,
			Timeout:     time.Duration(ac.OpenAI.TimeoutSecs) * time.Second,
			Temperature: ac.OpenAI.Temperature,
			MaxTokens:   ac.OpenAI.MaxTokens,
			MaxRetries:  ac.OpenAI.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("openai assistant init failed: %w", err)
		}
		return assistant.NewLLM(client), nil
	}
	return nil, fmt.Errorf("unknown assistant: %s", ac.Type)
}

// startWatcher reloads the dataset file on change when data.watch is set.
// The returned stop function is never nil.
func (a *app) startWatcher(onReload func()) (func(), error) {
	if !a.cfg.Data.Watch || a.cfg.Data.Path == "" {
		return func() {}, nil
	}
	fw, err := watch.NewFileWatcher(a.cfg.Data.Path, func() error {
		if _, err := a.svc.LoadFile(a.cfg.Data.Path); err != nil {
			return err
		}
		if onReload != nil {
			onReload()
		}
		return nil
	}, a.logger)
	if err != nil {
		return func() {}, err
	}
	fw.Start()
	a.logger.Info("watching dataset", "path", a.cfg.Data.Path)
	return fw.Stop, nil
}
