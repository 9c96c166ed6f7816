package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	ConfigDirName  = ".docgenctl"
	ConfigFileName = "config.yml"

	// EnvAPIURL overrides the backend base URL.
	EnvAPIURL = "DOCGEN_API_URL"
	// EnvLegacyAPIURL is the variable the web front end was deployed with.
	EnvLegacyAPIURL = "NEXT_PUBLIC_API_URL"

	DefaultAPIURL  = "http://127.0.0.1:8000"
	DefaultTimeout = 5 * time.Minute
)

type Config struct {
	APIURL            string        `yaml:"api_url"`
	Timeout           time.Duration `yaml:"timeout"`
	SkipWorkbookCheck bool          `yaml:"skip_workbook_check"`
	Sink              SinkConfig    `yaml:"sink"`
	Influx            InfluxConfig  `yaml:"influx"`
}

type SinkConfig struct {
	Type string     `yaml:"type"` // "dir", "s3" or "sftp"
	Dir  string     `yaml:"dir"`
	S3   S3Config   `yaml:"s3"`
	SFTP SFTPConfig `yaml:"sftp"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Prefix   string `yaml:"prefix"`
	Endpoint string `yaml:"endpoint"`
}

type SFTPConfig struct {
	Addr       string `yaml:"addr"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	KeyFile    string `yaml:"key_file"`
	KnownHosts string `yaml:"known_hosts"`
	Dir        string `yaml:"dir"`
}

// InfluxConfig enables slot telemetry when URL is set.
type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

func (c InfluxConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

func Default() *Config {
	return &Config{
		APIURL:  DefaultAPIURL,
		Timeout: DefaultTimeout,
		Sink:    SinkConfig{Type: "dir", Dir: "."},
	}
}

// DefaultPath is $HOME/.docgenctl/config.yml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDirName, ConfigFileName), nil
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config '%s'", path)
	}
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config '%s'", path)
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg, nil
}

// Resolve loads path, or the default path when empty. A missing default file yields
// the defaults; a missing explicit file is an error. The base URL env override is applied last.
func Resolve(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			cfg := Default()
			cfg.ApplyEnv()
			return cfg, nil
		}
	}

	var cfg *Config
	if _, err := os.Stat(path); os.IsNotExist(err) && !explicit {
		cfg = Default()
	} else {
		if cfg, err = Load(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv applies the base URL override, the only environment setting.
func (c *Config) ApplyEnv() {
	v := viper.New()
	_ = v.BindEnv("api_url", EnvAPIURL, EnvLegacyAPIURL)
	if url := strings.TrimSpace(v.GetString("api_url")); url != "" {
		c.APIURL = url
	}
}
