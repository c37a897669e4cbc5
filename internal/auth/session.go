// Package auth manages the Tidal OAuth session: the device-authorization
// login flow, the file-backed token bundle, and refresh of expired access
// tokens across runs.
package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lowtide/lowtide/internal/shared"
	"golang.org/x/oauth2"
)

const (
	tidalDeviceAuthURL = "https://auth.tidal.com/v1/oauth2/device_authorization"
	tidalTokenURL      = "https://auth.tidal.com/v1/oauth2/token"
)

// Session is the persisted token bundle for the Tidal API, together with the
// identity the token belongs to. Lifecycle: create via Login, reuse across
// runs, invalidate on auth failure, recreate.
type Session struct {
	Token       *oauth2.Token `json:"token"`
	UserID      string        `json:"user_id"`
	CountryCode string        `json:"country_code"`
}

// Store loads and saves sessions at a fixed path and refreshes expired
// access tokens using the embedded refresh token.
type Store struct {
	path        string
	config      *oauth2.Config
	sessionsURL string
}

// NewStore creates a session store for the given path. clientID and
// clientSecret come from the environment, not the config document.
func NewStore(path, clientID, clientSecret string) *Store {
	return &Store{
		path:        path,
		sessionsURL: tidalSessionsURL,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       []string{"r_usr", "w_usr"},
			Endpoint: oauth2.Endpoint{
				DeviceAuthURL: tidalDeviceAuthURL,
				TokenURL:      tidalTokenURL,
			},
		},
	}
}

// Load reads the session file and refreshes the access token if it has
// expired. A refreshed token is written back immediately so the next run
// reuses it. Returns ErrNotAuthenticated when no session file exists.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	var session Session
	ok, err := shared.LoadJSONFile(s.path, &session)
	if err != nil {
		return nil, err
	}
	if !ok || session.Token == nil {
		return nil, fmt.Errorf("%w: no session at %s, run `lowtide login`", shared.ErrNotAuthenticated, s.path)
	}

	if session.Token.Valid() {
		return &session, nil
	}

	if session.Token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: session has no refresh token, run `lowtide login`", shared.ErrTokenExpired)
	}

	refreshed, err := s.config.TokenSource(ctx, session.Token).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	session.Token = refreshed

	if err := s.Save(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Save persists the session to the store's path with owner-only permissions.
func (s *Store) Save(session *Session) error {
	if err := shared.SaveJSONFile(s.path, session); err != nil {
		return err
	}
	// Token bundles are secrets; tighten what SaveJSONFile left behind.
	return os.Chmod(s.path, 0600)
}

// Path returns the session file location.
func (s *Store) Path() string {
	return s.path
}

// expiryLeeway guards against using a token that expires mid-run.
const expiryLeeway = 60 * time.Second

// Valid reports whether the session holds a usable access token.
func (s *Session) Valid() bool {
	return s.Token != nil && s.Token.AccessToken != "" &&
		(s.Token.Expiry.IsZero() || time.Until(s.Token.Expiry) > expiryLeeway)
}
