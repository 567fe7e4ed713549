package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"f1lapcompare/pkg/chart"
	"f1lapcompare/pkg/provider"
	"f1lapcompare/pkg/resources"
	"f1lapcompare/pkg/settings"
	"f1lapcompare/pkg/webserver"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	minChartWidth  = 200
	minChartHeight = 150
)

type TelegramConfig struct {
	Token          string  `yaml:"token"`
	BroadcastChats []int64 `yaml:"broadcast_chats"`
	Debug          bool    `yaml:"debug"`
}

type WebserverConfig struct {
	Address string `yaml:"address"`
}

type ProviderConfig struct {
	URL      string        `yaml:"url"`
	CacheDir string        `yaml:"cache_dir"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	Timeout  time.Duration `yaml:"timeout"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type ChartConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	FontFolder string `yaml:"font_folder"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webserver WebserverConfig `yaml:"webserver"`
	Provider  ProviderConfig  `yaml:"provider"`
	Database  DatabaseConfig  `yaml:"database"`
	Chart     ChartConfig     `yaml:"chart"`
	Log       LogConfig       `yaml:"log"`
}

func Default() Config {
	return Config{
		Webserver: WebserverConfig{Address: webserver.DefaultAddress},
		Provider: ProviderConfig{
			URL:      provider.DefaultBaseURL,
			CacheDir: resources.DefaultCacheDir,
			CacheTTL: 7 * 24 * time.Hour,
			Timeout:  60 * time.Second,
		},
		Database: DatabaseConfig{Path: settings.DbName},
		Chart:    ChartConfig{Width: chart.DefaultWidth, Height: chart.DefaultHeight},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults, then applies the environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	conf := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return conf, errors.Wrapf(err, "opening config %s", path)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&conf); err != nil {
			return conf, errors.Wrapf(err, "decoding config %s", path)
		}
	}
	if err := conf.ApplyEnv(os.LookupEnv); err != nil {
		return conf, err
	}
	return conf, conf.Validate()
}

// ApplyEnv overrides the configuration with the environment variables that are set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strVars := map[string]*string{
		"TELEGRAM_TOKEN":    &c.Telegram.Token,
		"WEBSERVER_ADDRESS": &c.Webserver.Address,
		"F1_PROVIDER_URL":   &c.Provider.URL,
		"F1_CACHE_DIR":      &c.Provider.CacheDir,
		"LAPCOMPARE_DB":     &c.Database.Path,
		"LOG_LEVEL":         &c.Log.Level,
		"CHART_FONT_FOLDER": &c.Chart.FontFolder,
	}
	for key, field := range strVars {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}

	if v, ok := lookup("BROADCAST_CHATS"); ok && v != "" {
		chats, err := parseChats(v)
		if err != nil {
			return errors.Wrap(err, "BROADCAST_CHATS")
		}
		c.Telegram.BroadcastChats = chats
	}
	return nil
}

func parseChats(v string) ([]int64, error) {
	chats := []int64{}
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid chat id %q", part)
		}
		chats = append(chats, id)
	}
	return chats, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Provider.URL) == "" {
		return errors.New("provider url cannot be empty")
	}
	if c.Chart.Width < minChartWidth || c.Chart.Height < minChartHeight {
		return errors.Errorf("chart size %dx%d is below %dx%d", c.Chart.Width, c.Chart.Height, minChartWidth, minChartHeight)
	}
	if c.Provider.Timeout < 0 || c.Provider.CacheTTL < 0 {
		return errors.New("provider timeout and cache ttl cannot be negative")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log level")
	}
	return nil
}

func (c Config) ChartOptions() chart.Options {
	return chart.Options{
		Width:      c.Chart.Width,
		Height:     c.Chart.Height,
		FontFolder: c.Chart.FontFolder,
	}
}
