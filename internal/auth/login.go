package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lowtide/lowtide/internal/shared"
)

const tidalSessionsURL = "https://api.tidal.com/v1/sessions"

// LoginPrompt is invoked with the verification URI and user code once the
// device authorization has been issued, so the CLI can tell the user where
// to go. The flow then blocks polling the token endpoint.
type LoginPrompt func(verificationURI, verificationURIComplete, userCode string)

// Login runs the OAuth device-authorization flow and persists the resulting
// session. Blocks until the user authorizes the device or ctx is cancelled.
func (s *Store) Login(ctx context.Context, prompt LoginPrompt) (*Session, error) {
	if s.config.ClientID == "" {
		return nil, fmt.Errorf("%w: TIDAL_CLIENT_ID not set", shared.ErrAuthFailed)
	}

	deviceAuth, err := s.config.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: device authorization request: %v", shared.ErrAuthFailed, err)
	}

	if prompt != nil {
		prompt(deviceAuth.VerificationURI, deviceAuth.VerificationURIComplete, deviceAuth.UserCode)
	}

	token, err := s.config.DeviceAccessToken(ctx, deviceAuth)
	if err != nil {
		return nil, fmt.Errorf("%w: device token polling: %v", shared.ErrAuthFailed, err)
	}

	session := &Session{Token: token}
	if err := s.fillIdentity(ctx, session); err != nil {
		return nil, err
	}

	if err := s.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// fillIdentity resolves the user id and country code for the token by
// calling the Tidal sessions endpoint. Favorites endpoints are scoped by
// user id, so a session without one is unusable.
func (s *Store) fillIdentity(ctx context.Context, session *Session) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sessionsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+session.Token.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: sessions endpoint status %d: %s", shared.ErrAuthFailed, resp.StatusCode, string(body))
	}

	var info struct {
		UserID      json.Number `json:"userId"`
		CountryCode string      `json:"countryCode"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("failed to decode session info: %w", err)
	}

	session.UserID = info.UserID.String()
	session.CountryCode = info.CountryCode
	if session.UserID == "" {
		return fmt.Errorf("%w: sessions endpoint returned no user id", shared.ErrAuthFailed)
	}
	return nil
}
