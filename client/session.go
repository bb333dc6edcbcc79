package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/habedi/escola/auth"
	"github.com/rs/zerolog/log"
)

// Status is the session lifecycle state.
type Status int32

const (
	StatusUnauthenticated Status = iota
	// StatusLoading lasts from construction until RestoreSession or Login settles the state.
	StatusLoading
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Session is what a successful login yields.
type Session struct {
	Tokens auth.Tokens
	User   User
}

// Status reports the current lifecycle state.
func (c *Client) Status() Status {
	return Status(c.status.Load())
}

// User returns the profile of the logged-in user, or nil.
func (c *Client) User() *User {
	return c.user.Load()
}

func (c *Client) setAuthenticated(u *User) {
	c.user.Store(u)
	c.status.Store(int32(StatusAuthenticated))
}

// Login exchanges credentials for a token pair, persists it and loads the user's profile.
// The token call bypasses the refresh interceptor: a 401 there means bad credentials.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	cl, err := newCall(http.MethodPost, TokenPath, map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if err != nil {
		return nil, err
	}

	log.Info().Str("email", email).Msg("Logging in...")
	resp, err := c.send(ctx, cl, false)
	if err != nil {
		return nil, loginError(err)
	}

	var pair auth.Tokens
	if err := resp.Decode(&pair); err != nil {
		return nil, err
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		return nil, &Error{Kind: ServerError, StatusCode: resp.StatusCode, Detail: "token response is missing access or refresh", Body: resp.Body}
	}

	if err := c.tokens.Save(ctx, pair); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	c.setActive(pair.AccessToken)

	user, err := c.Me(ctx)
	if err != nil {
		if lerr := c.Logout(ctx); lerr != nil {
			log.Error().Err(lerr).Msg("Failed to roll back session after profile fetch failure")
		}
		return nil, fmt.Errorf("failed to load profile after login: %w", err)
	}
	c.setAuthenticated(user)
	log.Info().Str("user_id", user.ID.String()).Msg("Login was successful.")
	return &Session{Tokens: pair, User: *user}, nil
}

// loginError re-categorizes failures of the token endpoint.
func loginError(err error) error {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Kind == NetworkUnavailable:
		return apiErr
	case apiErr.StatusCode == http.StatusUnauthorized:
		return apiErr.withKind(InvalidCredentials)
	default:
		return apiErr.withKind(ServerError)
	}
}

// Logout forgets the session locally. It succeeds when there is no session.
func (c *Client) Logout(ctx context.Context) error {
	c.setActive("")
	c.user.Store(nil)
	c.status.Store(int32(StatusUnauthenticated))
	if err := c.tokens.Clear(ctx); err != nil {
		return err
	}
	log.Info().Msg("Logged out.")
	return nil
}

// RestoreSession validates a persisted session at startup. With no persisted access token it
// returns (nil, nil); an invalid one is discarded and the validation error returned.
func (c *Client) RestoreSession(ctx context.Context) (*User, error) {
	c.status.Store(int32(StatusLoading))

	access, err := c.tokens.AccessToken(ctx)
	if err != nil {
		c.status.Store(int32(StatusUnauthenticated))
		return nil, err
	}
	if access == "" {
		c.status.Store(int32(StatusUnauthenticated))
		return nil, nil
	}
	c.setActive(access)

	user, err := c.Me(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Stored session is no longer valid")
		if lerr := c.Logout(ctx); lerr != nil {
			log.Error().Err(lerr).Msg("Failed to clear invalid session")
		}
		return nil, err
	}
	c.setAuthenticated(user)
	return user, nil
}

// Me fetches the profile of the current user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.GetJSON(ctx, MePath, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// refresh mints a new access token and persists it. A rotated refresh token is kept too.
func (c *Client) refresh(ctx context.Context, refreshToken string) error {
	cl, err := newCall(http.MethodPost, RefreshPath, map[string]string{"refresh": refreshToken}, nil)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, cl, false)
	if err != nil {
		log.Warn().Err(err).Msg("Token refresh failed")
		return err
	}
	var out auth.Tokens
	if err := resp.Decode(&out); err != nil {
		return err
	}
	if out.AccessToken == "" {
		return &Error{Kind: ServerError, StatusCode: resp.StatusCode, Detail: "refresh response is missing access", Body: resp.Body}
	}

	if out.RefreshToken != "" {
		err = c.tokens.Save(ctx, out)
	} else {
		err = c.tokens.SaveAccess(ctx, out.AccessToken)
	}
	if err != nil {
		return fmt.Errorf("failed to persist refreshed token: %w", err)
	}
	c.setActive(out.AccessToken)
	log.Info().Str("access", auth.Prefix(out.AccessToken)).Msg("Token refreshed and saved successfully.")
	return nil
}

// dropSession is logout after an unrecoverable refresh failure.
func (c *Client) dropSession(ctx context.Context) {
	if err := c.Logout(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to clear session after refresh failure")
	}
}
