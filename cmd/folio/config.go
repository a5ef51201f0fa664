package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/eringen/folio"
	"github.com/eringen/folio/content"
	"github.com/eringen/folio/discover"
	"github.com/eringen/folio/sanity"
)

// envConfig is the process environment understood by serve and scan.
type envConfig struct {
	SiteName        string `env:"SITE_NAME"`
	SiteURL         string `env:"SITE_URL"`
	SiteDescription string `env:"SITE_DESCRIPTION"`
	SiteAuthor      string `env:"SITE_AUTHOR"`
	Addr            string `env:"ADDR" envDefault:":3000"`

	Source          string `env:"CONTENT_SOURCE" envDefault:"filesystem"`
	PublicDir       string `env:"PUBLIC_DIR" envDefault:"public"`
	PagesDir        string `env:"PAGES_DIR" envDefault:"content"`
	CollectionsRoot string `env:"COLLECTIONS_ROOT"`
	DiscoveryMode   string `env:"DISCOVERY_MODE" envDefault:"collections"`

	SanityProjectID  string `env:"SANITY_PROJECT_ID"`
	SanityDataset    string `env:"SANITY_DATASET"`
	SanityAPIVersion string `env:"SANITY_API_VERSION"`
	SanityToken      string `env:"SANITY_TOKEN"`
	SanityUseCDN     bool   `env:"SANITY_USE_CDN"`

	RevalidationSecret string        `env:"REVALIDATION_SECRET"`
	CacheTTL           time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	RedisURL           string        `env:"REDIS_URL"`
	RedisPrefix        string        `env:"REDIS_PREFIX"`

	WatchContent    bool   `env:"WATCH_CONTENT"`
	ProbeDimensions bool   `env:"PROBE_DIMENSIONS"`
	DataDir         string `env:"DATA_DIR" envDefault:"data"`
	ThumbWidths     []int  `env:"THUMB_WIDTHS" envSeparator:","`

	AdminPassword string `env:"ADMIN_PASSWORD"`
	SessionSecret string `env:"ADMIN_SESSION_SECRET"`
	CookieSecure  bool   `env:"COOKIE_SECURE"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// siteFile carries the settings that are awkward to express as env vars.
type siteFile struct {
	DisplayOrder []string          `yaml:"display_order"`
	Titles       map[string]string `yaml:"titles"`
	Extensions   []string          `yaml:"extensions"`
	Hero         struct {
		Image  string `yaml:"image"`
		Margin string `yaml:"margin"`
	} `yaml:"hero"`
}

// loadDotenv loads each file that exists. Earlier files win because
// godotenv never overrides a variable that is already set.
func loadDotenv(files []string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func readSiteFile(path string) (siteFile, error) {
	var sf siteFile
	if path == "" {
		return sf, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return sf, nil
	}
	if err != nil {
		return sf, err
	}
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return sf, fmt.Errorf("parse %s: %w", path, err)
	}
	return sf, nil
}

// loadConfig builds a SiteConfig from dotenv files, the environment and an
// optional site file.
func loadConfig(dotenv []string, sitePath string) (folio.SiteConfig, envConfig, error) {
	var ec envConfig
	if err := loadDotenv(dotenv); err != nil {
		return folio.SiteConfig{}, ec, err
	}
	if err := env.Parse(&ec); err != nil {
		return folio.SiteConfig{}, ec, fmt.Errorf("parse env: %w", err)
	}
	sf, err := readSiteFile(sitePath)
	if err != nil {
		return folio.SiteConfig{}, ec, err
	}
	cfg, err := buildSiteConfig(ec, sf)
	return cfg, ec, err
}

func buildSiteConfig(ec envConfig, sf siteFile) (folio.SiteConfig, error) {
	var disc discover.Config
	switch discover.Mode(ec.DiscoveryMode) {
	case discover.ModeCollections:
		disc = discover.DefaultCollectionsConfig()
	case discover.ModeCategories:
		disc = discover.DefaultCategoriesConfig()
	default:
		return folio.SiteConfig{}, fmt.Errorf("unknown DISCOVERY_MODE %q", ec.DiscoveryMode)
	}
	disc.PublicDir = ec.PublicDir
	disc.CollectionsRoot = ec.CollectionsRoot
	if len(sf.DisplayOrder) > 0 {
		disc.DisplayOrder = sf.DisplayOrder
	}
	if len(sf.Titles) > 0 {
		disc.Titles = sf.Titles
		disc.TitleMode = discover.TitleLookup
	}
	if len(sf.Extensions) > 0 {
		disc.Extensions = sf.Extensions
	}

	cfg := folio.SiteConfig{
		Name:        ec.SiteName,
		URL:         ec.SiteURL,
		Description: ec.SiteDescription,
		Author:      ec.SiteAuthor,
		Addr:        ec.Addr,
		Source:      ec.Source,
		PublicDir:   ec.PublicDir,
		PagesDir:    ec.PagesDir,
		Discovery:   disc,
		Home: discover.HomeConfig{
			HeroImage:  sf.Hero.Image,
			HeroMargin: content.ParseHeroMargin(sf.Hero.Margin),
		},
		Sanity: sanity.Config{
			ProjectID:  ec.SanityProjectID,
			Dataset:    ec.SanityDataset,
			APIVersion: ec.SanityAPIVersion,
			Token:      ec.SanityToken,
			UseCDN:     ec.SanityUseCDN,
		},
		RevalidationSecret: ec.RevalidationSecret,
		CacheTTL:           ec.CacheTTL,
		RedisURL:           ec.RedisURL,
		RedisPrefix:        ec.RedisPrefix,
		WatchContent:       ec.WatchContent,
		ProbeDimensions:    ec.ProbeDimensions,
		DataDir:            ec.DataDir,
		ThumbWidths:        ec.ThumbWidths,
		AdminPassword:      ec.AdminPassword,
		SessionSecret:      ec.SessionSecret,
		CookieSecure:       ec.CookieSecure,
	}
	return cfg, nil
}

// newLogger returns a JSON production logger at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
