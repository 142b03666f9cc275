/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/tieubaoca/chatwidget/config"
	"github.com/tieubaoca/chatwidget/handler"
	"github.com/tieubaoca/chatwidget/service"
	"github.com/tieubaoca/chatwidget/web"
)

const shutdownTimeout = 10 * time.Second

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the agent server",
	Long:  `Starts a server that answers agent completions and serves the browser chat page`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}

		aiService, err := newAIService(cfg)
		if err != nil {
			return fmt.Errorf("failed to create AI service: %w", err)
		}
		agents, err := service.NewAgentManager(aiService, cfg.SystemPrompt, service.WithMaxHistory(cfg.Agent.MaxHistory))
		if err != nil {
			return err
		}

		if cfg.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		router, err := handler.SetupRouter(agents, web.Assets)
		if err != nil {
			return fmt.Errorf("failed to set up routes: %w", err)
		}

		srv := &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: router,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.WithFields(log.Fields{
				"port":     cfg.Port,
				"provider": cfg.Provider,
				"model":    cfg.Model,
			}).Info("Starting server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func newAIService(cfg *config.Config) (service.AIService, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return service.NewGeminiService(service.SplitAPIKeys(cfg.GeminiAPIKey), cfg.Model)
	default:
		if cfg.OpenAIAPIKey == "" {
			log.Warn("OPENAI_API_KEY is not set")
		}
		return service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model), nil
	}
}

func init() {
	rootCmd.AddCommand(startServerCmd)
	startServerCmd.Flags().StringP("port", "p", "", "port to listen on (overrides config)")
}
