package identity

// AuthConfig is a plain Config implementation for callers that load values
// from the environment or flags.
type AuthConfig struct {
	SigningKey      string
	AccessTokenTTL  int
	RefreshTokenTTL int
	ContextKey      string
	AuthScheme      string
	TokenLookup     string
}

func (c AuthConfig) GetSigningKey() string   { return c.SigningKey }
func (c AuthConfig) GetAccessTokenTTL() int  { return c.AccessTokenTTL }
func (c AuthConfig) GetRefreshTokenTTL() int { return c.RefreshTokenTTL }

func (c AuthConfig) GetContextKey() string {
	if c.ContextKey == "" {
		return "auth"
	}
	return c.ContextKey
}

func (c AuthConfig) GetAuthScheme() string {
	if c.AuthScheme == "" {
		return "Bearer"
	}
	return c.AuthScheme
}

func (c AuthConfig) GetTokenLookup() string {
	if c.TokenLookup == "" {
		return "header:Authorization"
	}
	return c.TokenLookup
}

var _ Config = AuthConfig{}
