package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"vocab_quiz_backend/internal/quiz"
)

type Config struct {
	Server      ServerConfig
	Log         LogConfig         `mapstructure:"log"`
	Data        DataConfig        `mapstructure:"data"`
	Quiz        QuizConfig        `mapstructure:"quiz"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
	Database    DatabaseConfig
	Redis       RedisConfig
	Tracing     TracingConfig   `mapstructure:"tracing"`
	CORS        CORSConfig      `mapstructure:"cors"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// 题库/内容文档来源
const (
	SourceLocal = "local"
	SourceHTTP  = "http"
	SourceMinio = "minio"
)

type DataConfig struct {
	Source        string        `mapstructure:"source"`
	LocalPath     string        `mapstructure:"local_path"`
	BaseURL       string        `mapstructure:"base_url"`
	MinioEndpoint string        `mapstructure:"minio_endpoint"`
	MinioAccessID string        `mapstructure:"minio_access_key"`
	MinioSecret   string        `mapstructure:"minio_secret_key"`
	MinioBucket   string        `mapstructure:"minio_bucket"`
	MinioUseSSL   bool          `mapstructure:"minio_use_ssl"`
	QuestionsFile string        `mapstructure:"questions_file"`
	ContentFile   string        `mapstructure:"content_file"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
}

type QuizConfig struct {
	AutoAdvanceDelay  time.Duration      `mapstructure:"auto_advance_delay"`
	ClearDelay        time.Duration      `mapstructure:"clear_delay"`
	AdvancePolicy     quiz.AdvancePolicy `mapstructure:"advance_policy"`
	RenderMode        quiz.RenderMode    `mapstructure:"render_mode"`
	Sidebar           bool               `mapstructure:"sidebar"`
	ImmediateFeedback bool               `mapstructure:"immediate_feedback"`
	ShuffleQuestions  bool               `mapstructure:"shuffle_questions"`
	ShuffleOptions    bool               `mapstructure:"shuffle_options"`
	Tiers             quiz.TierPolicy    `mapstructure:"tiers"`
}

// 进度存储驱动
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type PersistenceConfig struct {
	Driver    string        `mapstructure:"driver"`
	DSN       string        `mapstructure:"dsn"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
	ServiceName       string `mapstructure:"service_name"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/app.log")

	v.SetDefault("data.source", SourceLocal)
	v.SetDefault("data.local_path", "data")
	v.SetDefault("data.questions_file", "questions.json")
	v.SetDefault("data.content_file", "content.json")
	v.SetDefault("data.fetch_timeout", 10*time.Second)

	v.SetDefault("quiz.auto_advance_delay", time.Second)
	v.SetDefault("quiz.clear_delay", time.Second)
	v.SetDefault("quiz.advance_policy", string(quiz.AdvanceAlways))
	v.SetDefault("quiz.render_mode", string(quiz.RenderSingle))
	v.SetDefault("quiz.sidebar", true)
	v.SetDefault("quiz.shuffle_questions", true)
	v.SetDefault("quiz.shuffle_options", true)

	v.SetDefault("persistence.driver", DriverMemory)
	v.SetDefault("persistence.key_prefix", "vocabquiz:progress:")

	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("redis.port", 6379)

	v.SetDefault("tracing.service_name", "vocab-quiz")
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
}

// LoadConfig 读取 path 目录下的 config.yaml；文件不存在时仅使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("VOCAB_QUIZ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// Data
	v.BindEnv("data.source", "DATA_SOURCE")
	v.BindEnv("data.base_url", "DATA_BASE_URL")
	v.BindEnv("data.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("data.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("data.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("data.minio_bucket", "MINIO_BUCKET")

	// Persistence
	v.BindEnv("persistence.driver", "PERSISTENCE_DRIVER")
	v.BindEnv("persistence.dsn", "PERSISTENCE_DSN")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if len(cfg.Quiz.Tiers) == 0 {
		cfg.Quiz.Tiers = quiz.DefaultTierPolicy()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Data.Source == SourceLocal {
		if _, err := os.Stat(cfg.Data.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Data.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceLocal, SourceMinio:
	case SourceHTTP:
		if c.Data.BaseURL == "" {
			return fmt.Errorf("data.base_url is required for http source")
		}
	default:
		return fmt.Errorf("unknown data source %q", c.Data.Source)
	}
	if c.Data.FetchTimeout <= 0 {
		return fmt.Errorf("data.fetch_timeout must be positive")
	}

	switch c.Persistence.Driver {
	case DriverMemory, DriverRedis, DriverMySQL:
	case DriverSQLite, DriverPostgres:
		if c.Persistence.DSN == "" {
			return fmt.Errorf("persistence.dsn is required for %s", c.Persistence.Driver)
		}
	default:
		return fmt.Errorf("unknown persistence driver %q", c.Persistence.Driver)
	}

	if c.Quiz.AutoAdvanceDelay < 0 || c.Quiz.ClearDelay < 0 {
		return fmt.Errorf("quiz delays must not be negative")
	}
	switch c.Quiz.AdvancePolicy {
	case quiz.AdvanceAlways, quiz.AdvanceIfUnmoved, quiz.AdvanceOff:
	default:
		return fmt.Errorf("unknown advance policy %q", c.Quiz.AdvancePolicy)
	}
	switch c.Quiz.RenderMode {
	case quiz.RenderSingle, quiz.RenderAll:
	default:
		return fmt.Errorf("unknown render mode %q", c.Quiz.RenderMode)
	}
	if err := c.Quiz.Tiers.Validate(); err != nil {
		return fmt.Errorf("quiz.tiers: %w", err)
	}
	return nil
}

// RateWindow 限流窗口
func (c RateLimitConfig) RateWindow() time.Duration {
	if c.WindowMinutes <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowMinutes) * time.Minute
}
