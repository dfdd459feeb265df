package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"personal_content_agent/config"
	"personal_content_agent/generator"
	"personal_content_agent/logging"
	"personal_content_agent/server"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "agent",
	Short:         "Personal content agent: drafts posts, emails and calendar events",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default: $CONFIG_PATH or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")
	rootCmd.AddCommand(serveCmd(), askCmd(), sendEmailCmd(), createEventCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup 读取配置并装配组件，调用方负责 Close。
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	logger := logging.New(level, cfg.Log.Format)
	slog.SetDefault(logger)
	return buildApp(ctx, cfg, logger)
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			srv, err := server.New(a.orch, a.agent, a.logger, a.cfg.Server.SessionTimeout)
			if err != nil {
				return err
			}
			listen := a.cfg.Server.Addr
			if addr != "" {
				listen = addr
			}
			hs := &http.Server{
				Addr:              listen,
				Handler:           srv.Routes(),
				ReadTimeout:       a.cfg.Server.ReadTimeout,
				ReadHeaderTimeout: 10 * time.Second,
				WriteTimeout:      a.cfg.Server.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("server: listening", "addr", listen)
				errCh <- hs.ListenAndServe()
			}()
			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			a.logger.Info("server: shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return hs.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func askCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Route one query and print the response envelope as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			query := strings.Join(args, " ")
			a.logger.Debug("cli: ask", "run_id", uuid.NewString(), "file", file)
			env := a.orch.Run(cmd.Context(), query, file)
			out := map[string]any{"route": env.Route, "output": env.Output}
			if st := env.Status(); st != "" {
				out["status"] = st
			}
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "LinkedIn analytics export (.xlsx) for profile analytics")
	return cmd
}

func sendEmailCmd() *cobra.Command {
	var d generator.EmailDraft
	cmd := &cobra.Command{
		Use:   "send-email",
		Short: "Send an approved email draft (at most once per recipient and subject)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return printResult(a.orch.SendDraft(cmd.Context(), d))
		},
	}
	cmd.Flags().StringVar(&d.To, "to", "", "recipient address")
	cmd.Flags().StringVar(&d.Subject, "subject", "", "subject line")
	cmd.Flags().StringVar(&d.Body, "body", "", "message body (markdown)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func createEventCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "create-event",
		Short: "Create a calendar event from a JSON event draft",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read event draft: %w", err)
			}
			var d generator.EventDraft
			if err := json.Unmarshal(b, &d); err != nil {
				return fmt.Errorf("decode event draft: %w", err)
			}
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return printResult(a.orch.CreateEvent(cmd.Context(), d))
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the event draft JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func printResult(res any) error {
	return printJSON(map[string]any{"output": res})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
