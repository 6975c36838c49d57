package auth

import (
	stderrors "errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// DefaultTokenTTL is the token lifetime in seconds used when the
// configuration carries none.
const DefaultTokenTTL = 3600

// Settings is the concrete configuration consumed by the package. It
// implements Config so callers can also supply their own source.
type Settings struct {
	SigningSecret  string `json:"-" mapstructure:"signing_secret"`
	TokenTTL       int    `json:"token_ttl" mapstructure:"token_ttl"`
	Issuer         string `json:"issuer" mapstructure:"issuer"`
	SharedSecret   string `json:"-" mapstructure:"shared_secret"`
	ServiceSubject string `json:"service_subject" mapstructure:"service_subject"`
	CookieName     string `json:"cookie_name" mapstructure:"cookie_name"`
}

func (s Settings) GetSigningSecret() string  { return s.SigningSecret }
func (s Settings) GetTokenTTL() int          { return s.TokenTTL }
func (s Settings) GetIssuer() string         { return s.Issuer }
func (s Settings) GetSharedSecret() string   { return s.SharedSecret }
func (s Settings) GetServiceSubject() string { return s.ServiceSubject }
func (s Settings) GetCookieName() string     { return s.CookieName }

// Validate checks the settings are complete enough to start serving.
// Failures here are fatal at startup, never discovered per request.
func (s Settings) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.SigningSecret,
			validation.Required,
			validation.Length(MinSigningKeyLength, 0),
		),
		validation.Field(&s.TokenTTL,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&s.ServiceSubject,
			validation.By(requiredWith(s.SharedSecret)),
		),
	)
	if err != nil {
		return errors.Wrap(err, errors.CategoryValidation, "invalid auth settings").
			WithTextCode("INVALID_AUTH_SETTINGS")
	}
	return nil
}

// WithDefaults fills optional slots so downstream code never re-checks them
func (s Settings) WithDefaults() Settings {
	if s.TokenTTL == 0 {
		s.TokenTTL = DefaultTokenTTL
	}
	if s.CookieName == "" {
		s.CookieName = DefaultCookieName
	}
	return s
}

// requiredWith makes a field mandatory only when its companion is set
func requiredWith(companion string) validation.RuleFunc {
	return func(value interface{}) error {
		if companion == "" {
			return nil
		}
		if str, _ := value.(string); str == "" {
			return stderrors.New("is required when a shared secret is configured")
		}
		return nil
	}
}

var _ Config = Settings{}
