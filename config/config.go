package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const envPrefix = "MEDIASHARE_"

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database     DatabaseConfigs     `toml:"database"`
	ApiServer    APIServerConfigs    `toml:"api_server"`
	Auth         AuthConfigs         `toml:"auth"`
	Session      SessionConfigs      `toml:"session"`
	Redis        RedisConfigs        `toml:"redis"`
	Kafka        KafkaConfigs        `toml:"kafka"`
	Feed         FeedConfigs         `toml:"feed"`
	Notification NotificationConfigs `toml:"notification"`
	Client       ClientConfigs       `toml:"client"`
}

type DatabaseConfigs struct {
	// Driver is either "mysql" or "sqlite".
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`

	// File is the sqlite database file, used only by the sqlite driver.
	File string `toml:"file"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.Driver == "sqlite" {
		return d.File
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

// MigrationURL is the database url expected by golang-migrate.
func (d *DatabaseConfigs) MigrationURL() string {
	return fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`

	AllowCORS []string `toml:"allow_cors"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs

	MaxLimit     int `toml:"max_limit"`
	DefaultLimit int `toml:"default_limit"`
}

type AuthConfigs struct {
	TokenSecret  string       `toml:"token_secret"`
	AccessToken  TokenConfigs `toml:"access_token"`
	RefreshToken TokenConfigs `toml:"refresh_token"`

	PasswordCost        int           `toml:"password_cost"`
	MaxFailedAttempts   int           `toml:"max_failed_attempts"`
	FailedAttemptWindow time.Duration `toml:"failed_attempt_window"`
}

type TokenConfigs struct {
	Name       string        `toml:"name"`
	Expiration time.Duration `toml:"expiration"`
}

type SessionConfigs struct {
	Secret string `toml:"secret"`
	Name   string `toml:"name"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr string `toml:"addr"`
}

type FeedConfigs struct {
	// EnrichConcurrency bounds the number of items enriched at the same time.
	// Zero means unbounded.
	EnrichConcurrency int `toml:"enrich_concurrency"`
}

type NotificationConfigs struct {
	LikeTopic   string `toml:"like_topic"`
	FollowTopic string `toml:"follow_topic"`

	// NodeID identifies this api node in the snowflake ids of change events,
	// in range [0, 1023].
	NodeID int64 `toml:"node_id"`

	ReconnectAttempts  int           `toml:"reconnect_attempts"`
	ReconnectBaseDelay time.Duration `toml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `toml:"reconnect_max_delay"`
}

type ClientConfigs struct {
	Endpoint       string `toml:"endpoint"`
	TokenCachePath string `toml:"token_cache_path"`

	ProvisionAttempts  int           `toml:"provision_attempts"`
	ProvisionBaseDelay time.Duration `toml:"provision_base_delay"`
}

func Default() Configs {
	return Configs{
		Env:      "local",
		LogLevel: "info",
		Database: DatabaseConfigs{
			Driver: "sqlite",
			File:   "mediashare.db",
			Host:   "localhost",
			Port:   "3306",
		},
		ApiServer: APIServerConfigs{
			ServerConfigs: ServerConfigs{Port: "8080", AllowCORS: []string{"*"}},
			MaxLimit:      50,
			DefaultLimit:  20,
		},
		Auth: AuthConfigs{
			AccessToken:         TokenConfigs{Name: "access_token", Expiration: time.Hour},
			RefreshToken:        TokenConfigs{Name: "refresh_token", Expiration: 30 * 24 * time.Hour},
			PasswordCost:        10,
			MaxFailedAttempts:   5,
			FailedAttemptWindow: 15 * time.Minute,
		},
		Session: SessionConfigs{Name: "mediashare"},
		Redis:   RedisConfigs{Addr: "localhost:6379"},
		Kafka:   KafkaConfigs{Addr: "localhost:9092"},
		Notification: NotificationConfigs{
			LikeTopic:          "media_likes",
			FollowTopic:        "creator_follows",
			ReconnectAttempts:  5,
			ReconnectBaseDelay: time.Second,
			ReconnectMaxDelay:  30 * time.Second,
		},
		Client: ClientConfigs{
			Endpoint:           "http://localhost:8080",
			ProvisionAttempts:  5,
			ProvisionBaseDelay: 200 * time.Millisecond,
		},
	}
}

// Load builds the configurations from the defaults, then the toml file at path
// (skipped if path is empty or missing), then the environment. A .env file in
// the working directory is loaded into the environment first.
func Load(path string) (Configs, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("cannot decode %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if cfg.Auth.TokenSecret == "" {
		return cfg, errors.New("auth token secret must be set")
	}

	return cfg, nil
}

func applyEnv(cfg *Configs) error {
	setString(&cfg.Env, "ENV")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.Database, "DB_DATABASE")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.File, "DB_FILE")

	setString(&cfg.ApiServer.Host, "API_HOST")
	setString(&cfg.ApiServer.Port, "API_PORT")
	if v, ok := lookup("API_ALLOW_CORS"); ok {
		cfg.ApiServer.AllowCORS = strings.Split(v, ",")
	}

	setString(&cfg.Auth.TokenSecret, "TOKEN_SECRET")
	if err := setDuration(&cfg.Auth.AccessToken.Expiration, "ACCESS_TOKEN_EXPIRATION"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Auth.RefreshToken.Expiration, "REFRESH_TOKEN_EXPIRATION"); err != nil {
		return err
	}

	setString(&cfg.Session.Secret, "SESSION_SECRET")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Kafka.Addr, "KAFKA_ADDR")
	if err := setInt(&cfg.Feed.EnrichConcurrency, "FEED_ENRICH_CONCURRENCY"); err != nil {
		return err
	}

	setString(&cfg.Client.Endpoint, "CLIENT_ENDPOINT")
	setString(&cfg.Client.TokenCachePath, "CLIENT_TOKEN_CACHE_PATH")

	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok || v == "" {
		return "", false
	}

	return v, true
}

func setString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func setInt(dst *int, name string) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
	}

	*dst = n
	return nil
}

func setDuration(dst *time.Duration, name string) error {
	v, ok := lookup(name)
	if !ok {
		return nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
	}

	*dst = d
	return nil
}
