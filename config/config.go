package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"db"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Mail         MailConfig         `mapstructure:"mail"`
	Log          LogConfig          `mapstructure:"log"`
	Upload       UploadConfig       `mapstructure:"upload"`
	Notification NotificationConfig `mapstructure:"notification"`
	RBAC         RBACConfig         `mapstructure:"rbac"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port         int             `mapstructure:"port"`
	BaseURL      string          `mapstructure:"base_url"`
	BodyLimitMB  int64           `mapstructure:"body_limit_mb"`
	CORS         CORSConfig      `mapstructure:"cors"`
	RateLimit    RateLimitConfig `mapstructure:"rate_limit"`
	ReadTimeout  time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout time.Duration   `mapstructure:"write_timeout"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// RateLimitConfig 认证接口限流配置
type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret               string        `mapstructure:"jwt_secret"`
	AccessTokenTTL          time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTLDefault  time.Duration `mapstructure:"refresh_token_ttl_default"`
	RefreshTokenTTLRemember time.Duration `mapstructure:"refresh_token_ttl_remember_me"`
	PasswordResetTTL        time.Duration `mapstructure:"password_reset_ttl"`
}

// MailConfig 邮件配置（SendGrid）
// APIKey 为空时使用日志发送器，仅记录邮件内容
type MailConfig struct {
	APIKey        string `mapstructure:"api_key"`
	FromName      string `mapstructure:"from_name"`
	FromAddress   string `mapstructure:"from_address"`
	ResetURL      string `mapstructure:"reset_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"`
	OutputPaths []string `mapstructure:"output_paths"` // stdout / stderr / 文件路径
}

// UploadConfig 文件上传配置
type UploadConfig struct {
	Dir          string   `mapstructure:"dir"`
	PublicPrefix string   `mapstructure:"public_prefix"`
	MaxSizeMB    int64    `mapstructure:"max_size_mb"`
	AllowedExts  []string `mapstructure:"allowed_exts"`
}

// NotificationConfig 通知配置
type NotificationConfig struct {
	TTL       time.Duration `mapstructure:"ttl"`        // 通知默认有效期
	PurgeSpec string        `mapstructure:"purge_spec"` // 过期通知清理 cron 表达式
}

// RBACConfig 角色 → 权限映射，启动时加载一次
type RBACConfig struct {
	Roles map[string][]string `mapstructure:"roles"`
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值；存在 .env 时先载入环境变量
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.body_limit_mb", 20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.rate_limit.limit", 20)
	v.SetDefault("server.rate_limit.window", "1m")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "faculty_portal")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.access_token_ttl", "90m")
	v.SetDefault("auth.refresh_token_ttl_default", "24h")
	v.SetDefault("auth.refresh_token_ttl_remember_me", "720h")
	v.SetDefault("auth.password_reset_ttl", "10m")

	v.SetDefault("mail.from_name", "Faculty Portal")
	v.SetDefault("mail.from_address", "no-reply@faculty.local")
	v.SetDefault("mail.reset_url", "http://localhost:5173/reset-password")
	v.SetDefault("mail.subject_prefix", "[Faculty Portal] ")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})

	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("upload.public_prefix", "/uploads")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("upload.allowed_exts", []string{".pdf", ".doc", ".docx", ".ppt", ".pptx", ".xlsx", ".zip", ".png", ".jpg", ".jpeg"})

	v.SetDefault("notification.ttl", "720h")
	v.SetDefault("notification.purge_spec", "@every 1h")

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("FACULTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if len(cfg.RBAC.Roles) == 0 {
		cfg.RBAC.Roles = DefaultRoles()
	}

	// ── 关键配置校验 ──
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	if c.Auth.AccessTokenTTL <= 0 {
		return fmt.Errorf("配置校验失败: auth.access_token_ttl 必须大于 0")
	}
	return nil
}

// DefaultRoles 内置角色权限表（未配置 rbac.roles 时使用）
func DefaultRoles() map[string][]string {
	return map[string][]string{
		"admin": {
			"academic:write", "people:write", "enrollment:write", "enrollment:read",
			"research:submit", "research:review", "research:read_all",
			"content:write", "feedback:submit", "feedback:manage", "committee:manage",
			"students:import", "roster:export",
		},
		"faculty": {
			"content:write", "enrollment:read", "research:read_all", "roster:export", "feedback:submit",
		},
		"committee": {
			"research:review", "research:read_all", "content:write", "feedback:submit",
		},
		"student": {
			"research:submit", "enrollment:write", "feedback:submit",
		},
	}
}
