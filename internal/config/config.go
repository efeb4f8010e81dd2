package config

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Pixabay   PixabayConfig
	Pexels    PexelsConfig
	Unsplash  UnsplashConfig
	Search    SearchConfig
	Session   SessionConfig
	Janitor   JanitorConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type RedisConfig struct {
	// Enabled switches the session store and rate limiter from in-memory
	// to Redis.
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	SearchPerMin  int
	RenderPerHour int
}

type StorageConfig struct {
	MediaDir  string
	OutputDir string
	AudioDir  string
}

type PixabayConfig struct {
	BaseURL string
	APIKey  string
}

type PexelsConfig struct {
	BaseURL string
	APIKey  string
}

type UnsplashConfig struct {
	BaseURL   string
	AccessKey string
}

type SearchConfig struct {
	PerPage int
}

type SessionConfig struct {
	TTLMinutes int
}

type JanitorConfig struct {
	// Cron spec for the cleanup sweep and the age after which session
	// files are removed.
	Schedule    string
	MaxAgeHours int
}

func Load() (*Config, error) {
	// .env is a convenience for local development; real deployments set
	// the environment directly.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.SetEnvPrefix("VIDGEN")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "3000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.search_per_min", 30)
	viper.SetDefault("ratelimit.render_per_hour", 10)
	viper.SetDefault("storage.media_dir", "./data/media")
	viper.SetDefault("storage.output_dir", "./data/output")
	viper.SetDefault("storage.audio_dir", "./assets/audio")
	viper.SetDefault("pixabay.base_url", "https://pixabay.com/api")
	viper.SetDefault("pixabay.api_key", "")
	viper.SetDefault("pexels.base_url", "https://api.pexels.com")
	viper.SetDefault("pexels.api_key", "")
	viper.SetDefault("unsplash.base_url", "https://api.unsplash.com")
	viper.SetDefault("unsplash.access_key", "")
	viper.SetDefault("search.per_page", 12)
	viper.SetDefault("session.ttl_minutes", 120)
	viper.SetDefault("janitor.schedule", "@every 1h")
	viper.SetDefault("janitor.max_age_hours", 24)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("redis.enabled"),
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			SearchPerMin:  viper.GetInt("ratelimit.search_per_min"),
			RenderPerHour: viper.GetInt("ratelimit.render_per_hour"),
		},
		Storage: StorageConfig{
			MediaDir:  viper.GetString("storage.media_dir"),
			OutputDir: viper.GetString("storage.output_dir"),
			AudioDir:  viper.GetString("storage.audio_dir"),
		},
		Pixabay: PixabayConfig{
			BaseURL: viper.GetString("pixabay.base_url"),
			APIKey:  viper.GetString("pixabay.api_key"),
		},
		Pexels: PexelsConfig{
			BaseURL: viper.GetString("pexels.base_url"),
			APIKey:  viper.GetString("pexels.api_key"),
		},
		Unsplash: UnsplashConfig{
			BaseURL:   viper.GetString("unsplash.base_url"),
			AccessKey: viper.GetString("unsplash.access_key"),
		},
		Search: SearchConfig{
			PerPage: viper.GetInt("search.per_page"),
		},
		Session: SessionConfig{
			TTLMinutes: viper.GetInt("session.ttl_minutes"),
		},
		Janitor: JanitorConfig{
			Schedule:    viper.GetString("janitor.schedule"),
			MaxAgeHours: viper.GetInt("janitor.max_age_hours"),
		},
	}

	return cfg, nil
}
