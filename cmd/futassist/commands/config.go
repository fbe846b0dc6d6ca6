package commands

import (
	"fmt"
	"futassist/lib/configutil"
	"futassist/lib/platforms/ea/identity"
	"futassist/lib/platforms/ea/utas"
	"futassist/lib/pricing"
	"time"
)

type StoreConfig struct {
	// "file" or "sqlite"
	Type     string              `json:"type"`
	File     string              `json:"file"`
	Database configutil.Database `json:"database"`
}

type IdentityConfig struct {
	AuthURL       string `json:"auth_url"`
	ClientID      string `json:"client_id"`
	RedirectURI   string `json:"redirect_uri"`
	Scope         string `json:"scope"`
	RefreshCookie string `json:"refresh_cookie"`
}

type GameConfig struct {
	Endpoints utas.Endpoints `json:"endpoints"`
	Game      utas.Game      `json:"game"`
}

type FutbinConfig struct {
	BaseURL       string                  `json:"base_url"`
	SearchPath    string                  `json:"search_path"`
	Selectors     pricing.FutbinSelectors `json:"selectors"`
	MinSimilarity float64                 `json:"min_similarity"`
}

type PricingConfig struct {
	// "futbin" or "sheet"
	Source string       `json:"source"`
	Sheet  string       `json:"sheet"`
	Futbin FutbinConfig `json:"futbin"`
}

type FetchConfig struct {
	PageSize          int `json:"page_size"`
	MaxRetries        int `json:"max_retries"`
	RetryDelaySeconds int `json:"retry_delay_seconds"`
}

type ListingConfig struct {
	DelaySeconds int `json:"delay_seconds"`
	Undercut     int `json:"undercut"`
	MinPrice     int `json:"min_price"`
	// seconds
	Duration int `json:"duration"`
}

type Config struct {
	Store          StoreConfig    `json:"store"`
	Identity       IdentityConfig `json:"identity"`
	Game           GameConfig     `json:"game"`
	Pricing        PricingConfig  `json:"pricing"`
	Fetch          FetchConfig    `json:"fetch"`
	Listing        ListingConfig  `json:"listing"`
	UserAgent      string         `json:"user_agent"`
	TimeoutSeconds int            `json:"timeout_seconds"`
	// some of the game's hosts serve certificates that do not verify
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
	// directory http dumps are written to in verbose mode
	DumpDir string `json:"dump_dir"`
}

func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Type: "file",
			File: "cookies.json",
		},
		Identity: IdentityConfig{
			AuthURL:       identity.DefaultAuthURL,
			ClientID:      identity.DefaultClientID,
			RedirectURI:   identity.DefaultRedirectURI,
			Scope:         identity.DefaultScope,
			RefreshCookie: identity.DefaultRefreshCookie,
		},
		Game: GameConfig{
			Endpoints: utas.DefaultEndpoints(),
			Game:      utas.DefaultGame(),
		},
		Pricing: PricingConfig{
			Source: "futbin",
			Futbin: FutbinConfig{
				BaseURL:       "https://www.futbin.com",
				SearchPath:    "/players",
				Selectors:     pricing.DefaultFutbinSelectors(),
				MinSimilarity: 0.85,
			},
		},
		Fetch: FetchConfig{
			PageSize:          utas.DefaultPageSize,
			MaxRetries:        utas.DefaultMaxRetries,
			RetryDelaySeconds: 2,
		},
		Listing: ListingConfig{
			DelaySeconds: 10,
			MinPrice:     150,
			Duration:     utas.DefaultListingDuration,
		},
		UserAgent:      identity.DefaultUserAgent,
		TimeoutSeconds: 30,
		DumpDir:        ".dev/resty",
	}
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) Validate() error {
	switch c.Store.Type {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown store type %q", c.Store.Type)
	}
	switch c.Pricing.Source {
	case "futbin":
	case "sheet":
		if c.Pricing.Sheet == "" {
			return fmt.Errorf("pricing.sheet must be set when pricing.source is \"sheet\"")
		}
	default:
		return fmt.Errorf("unknown price source %q", c.Pricing.Source)
	}
	return nil
}

// ReadConfig reads the configuration at path (and its .local override),
// every value not present falls back to DefaultConfig.
func ReadConfig(path string) (Config, error) {
	config, err := configutil.ReadConfigOr(path, DefaultConfig())
	if err != nil {
		return Config{}, err
	}
	return config, config.Validate()
}

type Secrets struct {
	Email    string `envconfig:"EMAIL" required:"true"`
	Password string `envconfig:"PASSWORD" required:"true"`
}

// ReadSecrets reads FUT_EMAIL and FUT_PASSWORD.
func ReadSecrets() (Secrets, error) {
	secrets, err := configutil.ReadEnv[Secrets]("FUT")
	if err != nil {
		return Secrets{}, fmt.Errorf("please add FUT_EMAIL and FUT_PASSWORD to the environment or a .env file: %w", err)
	}
	return secrets, nil
}
