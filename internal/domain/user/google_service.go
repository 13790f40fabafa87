// internal/domain/user/google_service.go
package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/veggiefresh/grocery-backend/internal/config"
	"github.com/veggiefresh/grocery-backend/internal/pkg/apperror"
	"github.com/veggiefresh/grocery-backend/internal/pkg/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var (
	ErrGoogleNotConfigured   = apperror.Gateway("Google login is not configured", nil)
	ErrGoogleEmailUnverified = apperror.Conflict("An account with this email already exists. Verify the email with Google or sign in with your password")
)

// GoogleUser is the profile returned by the userinfo endpoint
type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleService signs users in with the OAuth authorization code flow
type GoogleService struct {
	users       Repository
	oauth       *oauth2.Config
	userInfoURL string
	jwtManager  *auth.JWTManager
	log         logrus.FieldLogger
	now         func() time.Time
}

// NewGoogleService creates a Google sign-in service
func NewGoogleService(users Repository, cfg *config.Config, log logrus.FieldLogger) *GoogleService {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.External.Google.ClientID,
		ClientSecret: cfg.External.Google.ClientSecret,
		RedirectURL:  cfg.External.Google.RedirectURL,
		Scopes:       []string{"profile", "email"},
		Endpoint:     endpoints.Google,
	}
	return newGoogleService(users, oauthCfg, googleUserInfoURL, auth.NewJWTManager(cfg), log)
}

func newGoogleService(users Repository, oauthCfg *oauth2.Config, userInfoURL string, jwtManager *auth.JWTManager, log logrus.FieldLogger) *GoogleService {
	return &GoogleService{
		users:       users,
		oauth:       oauthCfg,
		userInfoURL: userInfoURL,
		jwtManager:  jwtManager,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// GoogleAuthURL is the consent page address and the state it carries
type GoogleAuthURL struct {
	AuthURL string `json:"authUrl"`
	State   string `json:"state"`
}

// AuthURL builds the consent URL with a random state
func (s *GoogleService) AuthURL() (*GoogleAuthURL, error) {
	if s.oauth.ClientID == "" {
		return nil, ErrGoogleNotConfigured
	}

	state := uuid.NewString()
	url := s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	return &GoogleAuthURL{AuthURL: url, State: state}, nil
}

// Callback exchanges the authorization code and signs the Google user in,
// linking or creating the local account
func (s *GoogleService) Callback(ctx context.Context, code string) (*AuthResponse, error) {
	if strings.TrimSpace(code) == "" {
		return nil, apperror.Validation("Authorization code not provided", map[string]string{"code": "is required"})
	}
	if s.oauth.ClientID == "" {
		return nil, ErrGoogleNotConfigured
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.Gateway("Failed to get access token", err)
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.findOrCreate(ctx, profile)
	if err != nil {
		return nil, err
	}

	pair, err := s.jwtManager.GenerateTokenPair(user.ID, user.EmailValue(), string(user.Role))
	if err != nil {
		return nil, apperror.Internal("failed to issue tokens", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func (s *GoogleService) fetchProfile(ctx context.Context, token *oauth2.Token) (*GoogleUser, error) {
	resp, err := s.oauth.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return nil, apperror.Gateway("failed to fetch Google profile", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperror.Gateway("failed to fetch Google profile",
			fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, string(body)))
	}

	var profile GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, apperror.Gateway("failed to decode Google profile", err)
	}
	if profile.ID == "" {
		return nil, apperror.Gateway("Google profile has no id", nil)
	}

	return &profile, nil
}

func (s *GoogleService) findOrCreate(ctx context.Context, profile *GoogleUser) (*User, error) {
	now := s.now()

	user, err := s.users.FindByGoogleID(ctx, profile.ID)
	if err == nil {
		user.LastLoginAt = &now
		if err := s.users.Update(ctx, user); err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
		}
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	email := strings.ToLower(profile.Email)
	if email != "" {
		user, err = s.users.FindByEmail(ctx, email)
		if err == nil && !profile.VerifiedEmail {
			s.log.WithField("user_id", user.ID).Warn("google email unverified, refusing to link")
			return nil, ErrGoogleEmailUnverified
		}
		if err == nil {
			// Link the Google account to the existing email account
			user.GoogleID = stringPtr(profile.ID)
			user.AvatarURL = profile.Picture
			user.LastLoginAt = &now
			if err := s.users.Update(ctx, user); err != nil {
				return nil, fmt.Errorf("failed to link Google account: %w", err)
			}
			s.log.WithField("user_id", user.ID).Info("google account linked")
			return user, nil
		}
		if !errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("failed to find user: %w", err)
		}
	}

	// Unverified addresses are not stored, so they cannot be claimed later
	if !profile.VerifiedEmail {
		email = ""
	}

	user = &User{
		Name:        profile.Name,
		Email:       stringPtr(email),
		GoogleID:    stringPtr(profile.ID),
		AvatarURL:   profile.Picture,
		Role:        RoleUser,
		LastLoginAt: &now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("google user registered")
	return user, nil
}
