package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// ErrUnknownCredentials is returned for credential files of an unrecognized shape.
var ErrUnknownCredentials = errors.New("unknown credential type")

// CredentialType represents the type of authentication credentials
type CredentialType int

const (
	CredentialTypeUnknown CredentialType = iota
	CredentialTypeOAuthClient
	CredentialTypeServiceAccount
)

func (t CredentialType) String() string {
	switch t {
	case CredentialTypeOAuthClient:
		return "OAuth Client"
	case CredentialTypeServiceAccount:
		return "Service Account"
	default:
		return "Unknown"
	}
}

// DetectCredentialType examines a Google credentials JSON document.
func DetectCredentialType(data []byte) (CredentialType, error) {
	var probe struct {
		Type      string          `json:"type"`
		Installed json.RawMessage `json:"installed"`
		Web       json.RawMessage `json:"web"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return CredentialTypeUnknown, fmt.Errorf("failed to parse credential file: %w", err)
	}

	switch {
	case probe.Type == "service_account":
		return CredentialTypeServiceAccount, nil
	case probe.Installed != nil, probe.Web != nil:
		return CredentialTypeOAuthClient, nil
	default:
		return CredentialTypeUnknown, ErrUnknownCredentials
	}
}

// Config locates the credentials used to reach Google Calendar.
type Config struct {
	// CredentialsPath is a service account key or an OAuth client secret file.
	CredentialsPath string
	// TokenPath caches the OAuth user token. Unused for service accounts.
	TokenPath string
	// CallbackPort is the localhost port of the OAuth redirect listener.
	CallbackPort string
}

// HTTPClient returns an HTTP client authorized to manage calendar events.
func HTTPClient(ctx context.Context, cfg Config) (*http.Client, error) {
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("no credentials configured")
	}

	data, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	credType, err := DetectCredentialType(data)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded Google credentials", "type", credType.String(), "path", cfg.CredentialsPath)

	switch credType {
	case CredentialTypeServiceAccount:
		jwt, err := google.JWTConfigFromJSON(data, calendar.CalendarEventsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		return jwt.Client(ctx), nil

	default:
		oauthCfg, err := google.ConfigFromJSON(data, calendar.CalendarEventsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse OAuth client config: %w", err)
		}
		return oauthClient(ctx, oauthCfg, cfg)
	}
}
