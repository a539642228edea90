package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"equi-cloud.backend/internal/config"
	domainerrors "equi-cloud.backend/internal/domain/errors"
	"equi-cloud.backend/pkg/identity"
	"equi-cloud.backend/pkg/logger"
)

const discordAPIBaseURL = "https://discord.com/api"

var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/api/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// OAuthSettings is the public OAuth client configuration handed to clients
// so they can start the authorization flow themselves.
type OAuthSettings struct {
	ClientID    string `json:"clientId"`
	RedirectURI string `json:"redirectUri"`
}

// CallbackResult is the outcome of a completed authorization code exchange.
type CallbackResult struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Secret   string `json:"secret"`
	Token    string `json:"token"`
}

type discordUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// OAuthUsecase exchanges Discord authorization codes for backup bearer
// tokens. The token handed out is derived from the Discord account id; no
// session state is kept server side.
type OAuthUsecase struct {
	oauth      oauth2.Config
	allowed    func(userID string) bool
	apiBaseURL string
}

// NewOAuthUsecase creates a new OAuth usecase
func NewOAuthUsecase(discord config.DiscordConfig, fqdn string) *OAuthUsecase {
	return &OAuthUsecase{
		oauth: oauth2.Config{
			ClientID:     discord.ClientID,
			ClientSecret: discord.ClientSecret,
			RedirectURL:  discord.RedirectURI(fqdn),
			Endpoint:     discordEndpoint,
			Scopes:       []string{"identify"},
		},
		allowed:    discord.Allowed,
		apiBaseURL: discordAPIBaseURL,
	}
}

// Settings returns the client-side OAuth configuration.
func (u *OAuthUsecase) Settings() OAuthSettings {
	return OAuthSettings{
		ClientID:    u.oauth.ClientID,
		RedirectURI: u.oauth.RedirectURL,
	}
}

// AuthCodeURL returns the Discord authorization page URL for the given state.
func (u *OAuthUsecase) AuthCodeURL(state string) string {
	return u.oauth.AuthCodeURL(state)
}

// HandleCallback exchanges the authorization code, resolves the Discord
// account behind it, and mints the account's backup token.
func (u *OAuthUsecase) HandleCallback(ctx context.Context, code string) (*CallbackResult, error) {
	if code == "" {
		return nil, domainerrors.BadRequest("Missing authorization code")
	}

	token, err := u.oauth.Exchange(ctx, code)
	if err != nil {
		logger.Warn(ctx, "discord code exchange failed", zap.Error(err))
		return nil, domainerrors.Unauthorized("Authorization code rejected")
	}

	user, err := u.fetchUser(ctx, token)
	if err != nil {
		logger.Error(ctx, "failed to resolve discord account", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	if !u.allowed(user.ID) {
		logger.Warn(ctx, "discord account not on allow-list", zap.String("user_id", user.ID))
		return nil, domainerrors.Forbidden("Account is not permitted to use this service")
	}

	logger.Info(ctx, "discord account authorized", zap.String("user_id", user.ID))
	return &CallbackResult{
		UserID:   user.ID,
		Username: user.Username,
		Secret:   identity.Secret(user.ID),
		Token:    identity.EncodeToken(user.ID),
	}, nil
}

func (u *OAuthUsecase) fetchUser(ctx context.Context, token *oauth2.Token) (*discordUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.apiBaseURL+"/users/@me", nil)
	if err != nil {
		return nil, err
	}

	resp, err := u.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord user lookup returned status %d", resp.StatusCode)
	}

	var user discordUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	if user.ID == "" {
		return nil, fmt.Errorf("discord user lookup returned empty account id")
	}
	return &user, nil
}
