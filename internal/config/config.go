package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DBDriver           string        `yaml:"db_driver"`
	DSN                string        `yaml:"dsn"`
	HTTPPort           string        `yaml:"http_port"`
	GRPCPort           string        `yaml:"grpc_port"`
	Username           string        `yaml:"username"`
	Password           string        `yaml:"password"`
	PasswordHash       string        `yaml:"password_hash"`
	FilterWord         string        `yaml:"filter_word"`
	LogLevel           string        `yaml:"log_level"`
	StrictTransitions  bool          `yaml:"strict_transitions"`
	KafkaBrokers       []string      `yaml:"kafka_brokers"`
	KafkaGroupID       string        `yaml:"kafka_group_id"`
	KafkaTopic         string        `yaml:"kafka_topic"`
	EventFormat        string        `yaml:"event_format"`
	AuditBatchSize     int           `yaml:"audit_batch_size"`
	AuditTimeout       time.Duration `yaml:"audit_timeout"`
	AuditWorkers       int           `yaml:"audit_workers"`
	OutboxPollInterval time.Duration `yaml:"outbox_poll_interval"`
	OutboxBatchLimit   int           `yaml:"outbox_batch_limit"`
	CacheRefreshEvery  time.Duration `yaml:"cache_refresh_every"`
}

func defaults() *Config {
	return &Config{
		DBDriver:           "postgres",
		DSN:                "host=localhost user=postgres password=postgres dbname=statusflow sslmode=disable",
		HTTPPort:           "9000",
		GRPCPort:           "9001",
		Username:           "admin",
		Password:           "secret",
		LogLevel:           "info",
		KafkaBrokers:       []string{"localhost:9092"},
		KafkaGroupID:       "statusflow-ws",
		KafkaTopic:         "status-transitions",
		EventFormat:        "json",
		AuditBatchSize:     50,
		AuditTimeout:       2 * time.Second,
		AuditWorkers:       2,
		OutboxPollInterval: time.Second,
		OutboxBatchLimit:   100,
		CacheRefreshEvery:  time.Minute,
	}
}

// LoadConfig reads the optional YAML file named by APP_CONFIG and then lets
// environment variables override individual keys.
func LoadConfig() (*Config, error) {
	cfg := defaults()
	if path, ok := os.LookupEnv("APP_CONFIG"); ok && path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.DBDriver = getEnv("APP_DB_DRIVER", cfg.DBDriver)
	cfg.DSN = getEnv("APP_DSN", cfg.DSN)
	cfg.HTTPPort = getEnv("APP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = getEnv("APP_GRPC_PORT", cfg.GRPCPort)
	cfg.Username = getEnv("APP_USER", cfg.Username)
	cfg.Password = getEnv("APP_PASS", cfg.Password)
	cfg.PasswordHash = getEnv("APP_PASS_HASH", cfg.PasswordHash)
	cfg.FilterWord = getEnv("APP_FILTER", cfg.FilterWord)
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", cfg.LogLevel)
	cfg.KafkaGroupID = getEnv("KAFKA_GROUP_ID", cfg.KafkaGroupID)
	cfg.KafkaTopic = getEnv("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.EventFormat = getEnv("APP_EVENT_FORMAT", cfg.EventFormat)
	if brokers, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		cfg.KafkaBrokers = splitList(brokers)
	}

	var err error
	if cfg.StrictTransitions, err = getBool("APP_STRICT_TRANSITIONS", cfg.StrictTransitions); err != nil {
		return nil, err
	}
	if cfg.AuditBatchSize, err = getInt("APP_AUDIT_BATCH", cfg.AuditBatchSize); err != nil {
		return nil, err
	}
	if cfg.AuditWorkers, err = getInt("APP_AUDIT_WORKERS", cfg.AuditWorkers); err != nil {
		return nil, err
	}
	if cfg.OutboxBatchLimit, err = getInt("APP_OUTBOX_LIMIT", cfg.OutboxBatchLimit); err != nil {
		return nil, err
	}
	if cfg.AuditTimeout, err = getDuration("APP_AUDIT_TIMEOUT", cfg.AuditTimeout); err != nil {
		return nil, err
	}
	if cfg.OutboxPollInterval, err = getDuration("APP_OUTBOX_POLL", cfg.OutboxPollInterval); err != nil {
		return nil, err
	}
	if cfg.CacheRefreshEvery, err = getDuration("APP_CACHE_REFRESH", cfg.CacheRefreshEvery); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, defaultVal int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var res []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.HTTPPort)
}

func (c *Config) GRPCAddr() string {
	return fmt.Sprintf(":%s", c.GRPCPort)
}

// ClientConfig drives bizctl.
type ClientConfig struct {
	BaseURL  string
	Token    string
	Username string
	Password string
	Timeout  time.Duration
}

func LoadClientConfig() (*ClientConfig, error) {
	cfg := &ClientConfig{
		BaseURL:  getEnv("BIZ_API_URL", "http://localhost:9000"),
		Token:    getEnv("BIZ_TOKEN", ""),
		Username: getEnv("BIZ_USER", ""),
		Password: getEnv("BIZ_PASS", ""),
	}
	var err error
	if cfg.Timeout, err = getDuration("BIZ_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	return cfg, nil
}
