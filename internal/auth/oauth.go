package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultOAuthTimeout = 10 * time.Second

var (
	ErrInvalidProviderConfig = errors.New("auth: invalid oauth provider config")
	ErrMissingAuthCode       = errors.New("auth: authorization code required")
	ErrExchangeFailed        = errors.New("auth: code exchange failed")
	ErrProfileFetchFailed    = errors.New("auth: profile fetch failed")

	errMissingClientID     = errors.New("client id required")
	errMissingAuthorizeURL = errors.New("authorize url required")
	errMissingTokenURL     = errors.New("token url required")
	errMissingUserInfoURL  = errors.New("userinfo url required")
)

// ProviderConfig bundles the endpoints and credentials of the external OAuth
// provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	AuthorizeURL string
	TokenURL     string
	UserInfoURL  string
	RedirectURI  string
	Scopes       []string
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// ProviderTokens is the credential pair returned by the code exchange.
type ProviderTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ProviderProfile is the identity payload returned by the userinfo endpoint.
// Providers disagree on field names, so both username/name and
// avatar/picture are accepted.
type ProviderProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Picture  string `json:"picture"`
}

// DisplayName returns the best available name.
func (p ProviderProfile) DisplayName() string {
	if name := strings.TrimSpace(p.Username); name != "" {
		return name
	}
	return strings.TrimSpace(p.Name)
}

// AvatarURL returns the best available avatar reference.
func (p ProviderProfile) AvatarURL() string {
	if avatar := strings.TrimSpace(p.Avatar); avatar != "" {
		return avatar
	}
	return strings.TrimSpace(p.Picture)
}

// ProviderClient performs the OAuth authorization-code flow against the
// external provider.
type ProviderClient struct {
	config     ProviderConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewProviderClient constructs a client with validated configuration.
func NewProviderClient(cfg ProviderConfig) (*ProviderClient, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProviderConfig, errMissingClientID)
	}
	if strings.TrimSpace(cfg.AuthorizeURL) == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProviderConfig, errMissingAuthorizeURL)
	}
	if strings.TrimSpace(cfg.TokenURL) == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProviderConfig, errMissingTokenURL)
	}
	if strings.TrimSpace(cfg.UserInfoURL) == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProviderConfig, errMissingUserInfoURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultOAuthTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ProviderClient{config: cfg, httpClient: httpClient, logger: logger}, nil
}

// AuthCodeURL builds the provider authorize redirect target.
func (c *ProviderClient) AuthCodeURL() string {
	scopes := c.config.Scopes
	if len(scopes) == 0 {
		scopes = []string{"openid", "profile"}
	}
	params := url.Values{
		"client_id":     {c.config.ClientID},
		"redirect_uri":  {c.config.RedirectURI},
		"response_type": {"code"},
		"scope":         {strings.Join(scopes, " ")},
	}
	return c.config.AuthorizeURL + "?" + params.Encode()
}

type tokenRequestPayload struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
	GrantType    string `json:"grant_type"`
	RedirectURI  string `json:"redirect_uri"`
}

// Exchange trades the authorization code for provider tokens.
func (c *ProviderClient) Exchange(ctx context.Context, code string) (ProviderTokens, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return ProviderTokens{}, ErrMissingAuthCode
	}

	payload, err := json.Marshal(tokenRequestPayload{
		ClientID:     c.config.ClientID,
		ClientSecret: c.config.ClientSecret,
		Code:         code,
		GrantType:    "authorization_code",
		RedirectURI:  c.config.RedirectURI,
	})
	if err != nil {
		return ProviderTokens{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.TokenURL, strings.NewReader(string(payload)))
	if err != nil {
		return ProviderTokens{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(req)
	if err != nil {
		return ProviderTokens{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return ProviderTokens{}, fmt.Errorf("%w: token endpoint returned status %d", ErrExchangeFailed, response.StatusCode)
	}

	var tokens ProviderTokens
	if err := json.NewDecoder(response.Body).Decode(&tokens); err != nil {
		return ProviderTokens{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if strings.TrimSpace(tokens.AccessToken) == "" {
		return ProviderTokens{}, fmt.Errorf("%w: response missing access token", ErrExchangeFailed)
	}
	return tokens, nil
}

// FetchProfile retrieves the provider identity for the given access token.
func (c *ProviderClient) FetchProfile(ctx context.Context, accessToken string) (ProviderProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.UserInfoURL, nil)
	if err != nil {
		return ProviderProfile{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	response, err := c.httpClient.Do(req)
	if err != nil {
		return ProviderProfile{}, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return ProviderProfile{}, fmt.Errorf("%w: userinfo endpoint returned status %d", ErrProfileFetchFailed, response.StatusCode)
	}

	var profile ProviderProfile
	if err := json.NewDecoder(response.Body).Decode(&profile); err != nil {
		return ProviderProfile{}, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	if strings.TrimSpace(profile.ID) == "" {
		return ProviderProfile{}, fmt.Errorf("%w: profile missing id", ErrProfileFetchFailed)
	}
	return profile, nil
}
