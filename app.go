package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"personal_content_agent/action"
	"personal_content_agent/analytics"
	"personal_content_agent/calendar"
	"personal_content_agent/config"
	"personal_content_agent/generator"
	"personal_content_agent/googleauth"
	"personal_content_agent/idempotency"
	"personal_content_agent/mailer"
	"personal_content_agent/profile"
	"personal_content_agent/publisher"
	"personal_content_agent/router"
	"personal_content_agent/workflow"
)

// app 持有一次进程内的全部组件。
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	agent   *generator.Agent
	orch    *workflow.Orchestrator
	closers []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("app: close failed", "err", err)
		}
	}
}

func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	llm, err := buildLLM(cfg.LLM)
	if err != nil {
		return nil, err
	}

	opts := []generator.Option{
		generator.WithLogger(logger),
		generator.WithFallbackRecipient(cfg.Email.DefaultRecipient),
	}
	if cfg.Profile.Path != "" {
		p, err := profile.Load(cfg.Profile.Path)
		if err != nil {
			return nil, err
		}
		idx, err := profile.NewIndex(p)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, idx.Close)
		opts = append(opts, generator.WithProfile(idx))
		logger.Info("app: profile loaded", "path", cfg.Profile.Path, "name", p.Name)
	}
	a.agent, err = generator.NewAgent(llm, opts...)
	if err != nil {
		return nil, err
	}

	exec, err := buildExecutor(ctx, cfg, logger, a)
	if err != nil {
		return nil, err
	}

	loader, err := analytics.NewLoader(cfg.Analytics.CacheTTL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { loader.Close(); return nil })
	scraper := analytics.NewScraper(&http.Client{Timeout: cfg.Analytics.ScraperTimeout}, cfg.Analytics.UserAgent)
	profileAnalyzer, err := analytics.NewProfileAnalyzer(llm, loader, scraper, logger)
	if err != nil {
		return nil, err
	}
	postAnalyzer, err := analytics.NewPostAnalyzer(llm, scraper)
	if err != nil {
		return nil, err
	}

	a.orch, err = workflow.New(workflow.Deps{
		Router:  router.New(llm, logger),
		Drafter: a.agent,
		Actions: exec,
		Profile: profileAnalyzer,
		Post:    postAnalyzer,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// buildExecutor 只注入已配置的服务；缺失的动作返回 "not configured"。
func buildExecutor(ctx context.Context, cfg *config.Config, logger *slog.Logger, a *app) (*action.Executor, error) {
	exec := &action.Executor{Logger: logger}

	switch cfg.Idempotency.Store {
	case "sqlite":
		store, err := idempotency.OpenSQLite(cfg.Idempotency.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, store.Close)
		exec.Keys = store
	default:
		exec.Keys = idempotency.NewMemoryStore()
	}

	if cfg.Google.Enabled {
		client, err := googleauth.Client(ctx, cfg.Google.CredentialsFile, cfg.Google.TokenFile,
			googleauth.ScopeGmailCompose, googleauth.ScopeCalendar)
		if err != nil {
			return nil, err
		}
		transport, err := mailer.NewGmailTransport(ctx, client)
		if err != nil {
			return nil, err
		}
		sender, err := mailer.NewSender(cfg.Email.From, transport, logger)
		if err != nil {
			return nil, err
		}
		events, err := calendar.NewGoogleService(ctx, client, cfg.Google.CalendarID, logger)
		if err != nil {
			return nil, err
		}
		exec.Mail = sender
		exec.Calendar = events
	} else {
		logger.Warn("app: google disabled; email and calendar actions will fail")
	}

	if cfg.LinkedIn.Enabled() {
		pub, err := publisher.New(publisher.Config{
			AccessToken: cfg.LinkedIn.AccessToken,
			AuthorURN:   cfg.LinkedIn.AuthorURN,
			BaseURL:     cfg.LinkedIn.BaseURL,
		}, nil, logger)
		if err != nil {
			return nil, err
		}
		exec.Publisher = pub
	}
	return exec, nil
}

func buildLLM(cfg config.LLMConfig) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		MaxTokens: cfg.MaxTokens,
	}
	switch cfg.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "deepseek":
		// DeepSeek 提供 OpenAI 兼容接口，需填写 base_url（例如官方/网关地址）。
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "anthropic":
		return generator.NewAnthropicLLMFromConfig(settings)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}
