package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	defaultCallbackPort = "8080"
	callbackPath        = "/oauth2callback"
)

// TokenFromWeb runs the browser-based OAuth flow and exchanges the returned
// authorization code for a token.
func TokenFromWeb(ctx context.Context, config *oauth2.Config, port string) (*oauth2.Token, error) {
	if port == "" {
		port = defaultCallbackPort
	}

	listener, err := net.Listen("tcp", "localhost:"+port)
	if err != nil {
		return nil, fmt.Errorf("failed to start local server: %w", err)
	}

	state, err := randomState()
	if err != nil {
		listener.Close()
		return nil, err
	}

	cfg := *config
	cfg.RedirectURL = fmt.Sprintf("http://localhost:%s%s", port, callbackPath)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.Handle(callbackPath, callbackHandler(state, codeCh, errCh))
	server := &http.Server{Handler: mux}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("local server failed: %w", err)
		}
	}()
	defer server.Shutdown(context.WithoutCancel(ctx))

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
	slog.Info("opening browser for authorization")
	slog.Info("if the browser doesn't open automatically, visit this URL", "url", authURL)
	if err := openBrowser(authURL); err != nil {
		slog.Warn("failed to open browser automatically", "error", err)
	}

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("unable to exchange authorization code: %w", err)
	}
	return tok, nil
}

// callbackHandler receives the OAuth redirect. Requests with a mismatched
// state are rejected without ending the flow.
func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if query.Get("state") != state {
			http.Error(w, "Error: state mismatch", http.StatusBadRequest)
			return
		}
		if msg := query.Get("error"); msg != "" {
			fmt.Fprintf(w, "Authorization failed: %s", msg)
			select {
			case errCh <- fmt.Errorf("authorization denied: %s", msg):
			default:
			}
			return
		}

		code := query.Get("code")
		if code == "" {
			http.Error(w, "Error: No authorization code received", http.StatusBadRequest)
			return
		}

		select {
		case codeCh <- code:
			fmt.Fprintf(w, "Authorization successful! You can close this window and return to the terminal.")
		default:
			fmt.Fprintf(w, "Authorization already completed.")
		}
	})
}

func randomState() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("unable to generate OAuth state: %w", err)
	}
	return id.String(), nil
}

// openBrowser opens the specified URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("unsupported platform")
	}

	return cmd.Start()
}
