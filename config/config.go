package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string
	DBUrl         string
	TokenSecret   string
	TokenTTL      time.Duration
	RedisUrl      string
	CacheTTL      time.Duration
	CorsOrigins   []string
	AuthRateLimit int
	Debug         bool
}

// fileConfig mirrors the flags; a zero value means "not set in the file".
type fileConfig struct {
	Host          string   `yaml:"host"`
	Port          uint     `yaml:"port"`
	DBUrl         string   `yaml:"db_url"`
	TokenSecret   string   `yaml:"token_secret"`
	TokenTTL      uint     `yaml:"token_ttl"`
	RedisUrl      string   `yaml:"redis_url"`
	CacheTTL      uint     `yaml:"cache_ttl"`
	CorsOrigins   []string `yaml:"cors_origins"`
	AuthRateLimit int      `yaml:"auth_rate_limit"`
	Debug         bool     `yaml:"debug"`
}

func ParseFlags() (Config, error) {
	return Parse(os.Args[1:])
}

func Parse(args []string) (cfg Config, err error) {
	fs := flag.NewFlagSet("quick-forms", flag.ContinueOnError)

	var path string
	fs.StringVar(&path, "config", "", "optional YAML config file; explicit flags take precedence")
	var host string
	fs.StringVar(&host, "host", "0.0.0.0", "listen host name")
	var port uint
	fs.UintVar(&port, "port", 8080, "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", "qforms.sqlite", "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", "", "secret key for token signing")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", 86400, "token TTL in seconds")
	fs.StringVar(&cfg.RedisUrl, "redis-url", "", "redis URL for the public form cache (disabled when empty)")
	var cacheTTL uint
	fs.UintVar(&cacheTTL, "cache-ttl", 300, "public form cache TTL in seconds")
	var origins string
	fs.StringVar(&origins, "cors-origins", "*", "comma separated list of allowed CORS origins")
	fs.IntVar(&cfg.AuthRateLimit, "auth-rate-limit", 20, "login/register requests per minute per IP (0 disables)")
	fs.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")

	if err = fs.Parse(args); err != nil {
		return
	}

	if path != "" {
		set := map[string]bool{}
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

		var fc fileConfig
		fc, err = readFile(path)
		if err != nil {
			return
		}
		if !set["host"] && fc.Host != "" {
			host = fc.Host
		}
		if !set["port"] && fc.Port != 0 {
			port = fc.Port
		}
		if !set["db-url"] && fc.DBUrl != "" {
			cfg.DBUrl = fc.DBUrl
		}
		if !set["token-secret"] && fc.TokenSecret != "" {
			cfg.TokenSecret = fc.TokenSecret
		}
		if !set["token-ttl"] && fc.TokenTTL != 0 {
			ttl = fc.TokenTTL
		}
		if !set["redis-url"] && fc.RedisUrl != "" {
			cfg.RedisUrl = fc.RedisUrl
		}
		if !set["cache-ttl"] && fc.CacheTTL != 0 {
			cacheTTL = fc.CacheTTL
		}
		if !set["cors-origins"] && len(fc.CorsOrigins) > 0 {
			origins = strings.Join(fc.CorsOrigins, ",")
		}
		if !set["auth-rate-limit"] && fc.AuthRateLimit != 0 {
			cfg.AuthRateLimit = fc.AuthRateLimit
		}
		if !set["debug"] && fc.Debug {
			cfg.Debug = true
		}
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.CacheTTL = time.Duration(cacheTTL) * time.Second
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CorsOrigins = append(cfg.CorsOrigins, o)
		}
	}

	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

func readFile(path string) (fc fileConfig, err error) {
	file, err := os.Open(path)
	if err != nil {
		return fc, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	if err = yaml.NewDecoder(file).Decode(&fc); err != nil {
		return fc, fmt.Errorf("decode config file: %w", err)
	}
	return fc, nil
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
