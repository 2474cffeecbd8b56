package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"flightwatch-service/internal/infrastructure/oauth"
	"flightwatch-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

func newGmailTokenCmd(configFile *string) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "gmail-token",
		Short: "Run the Gmail OAuth consent flow and print a refresh token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			if cfg.GmailClientID == "" || cfg.GmailClientSecret == "" {
				return errors.New("GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET are required")
			}

			redirectURL := fmt.Sprintf("http://localhost:%d/oauth2callback", port)
			gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, "", redirectURL, log)

			state := uuid.NewString()

			tokens := make(chan string, 1)
			r := chi.NewRouter()
			r.Get("/oauth2callback", oauthCallback(state, gmailOAuth.ExchangeCode, tokens, log))

			server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: r, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("Callback server error", "error", err)
				}
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Open this URL in your browser:\n%s\n", gmailOAuth.GenerateAuthURL(state))

			refreshToken := <-tokens
			fmt.Fprintf(cmd.OutOrStdout(), "\nRefresh Token: %s\n\n", refreshToken)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8090, "Local port for the OAuth callback")
	return cmd
}

type codeExchanger func(ctx context.Context, code string) (*oauth2.Token, error)

// oauthCallback exchanges the authorization code and hands the refresh token
// to tokens. Only the first successful callback is delivered; repeats, such
// as a browser refresh, are answered without blocking.
func oauthCallback(state string, exchange codeExchanger, tokens chan<- string, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := exchange(req.Context(), req.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		fmt.Fprint(w, "Authentication successful! You can close this window.")
		select {
		case tokens <- token.RefreshToken:
		default:
			log.Warn("Ignoring repeated OAuth callback")
		}
	}
}
