package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string            `yaml:"env" env-default:"local"`
	DSN         string            `yaml:"dsn" env:"DSN" env-required:"true"`
	HTTP        HTTPConfig        `yaml:"http"`
	Auth        AuthConfig        `yaml:"auth"`
	FileStorage FileStorageConfig `yaml:"file_storage"`
	Redis       RedisConf         `yaml:"redis"`
	SMTP        SMTPConfig        `yaml:"smtp"`
	YouTube     YouTubeConfig     `yaml:"youtube"`
	Ingest      IngestConfig      `yaml:"ingest"`
}

type HTTPConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port" env-default:"8080"`
	// SessionSecret signs the cookie session store.
	SessionSecret string `yaml:"session_secret" env:"SESSION_SECRET" env-default:"dev-session-secret"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AccessTTL  time.Duration `yaml:"access_ttl" env-default:"15m"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" env-default:"168h"`
	TOTPIssuer string        `yaml:"totp_issuer" env-default:"darkroom"`
}

type FileStorageConfig struct {
	BaseDir string `yaml:"base_dir" env-default:"./uploads"`
	BaseURL string `yaml:"base_url" env-default:"/uploads"`
	MaxSize int64  `yaml:"max_size" env-default:"10485760"`
}

type RedisConf struct {
	RedisAddr     string `yaml:"redis_addr" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db"`
}

type SMTPConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port" env-default:"587"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password" env:"SMTP_PASSWORD"`
	From         string `yaml:"from"`
	ContactTo    string `yaml:"contact_to"`
	ResetURLBase string `yaml:"reset_url_base"`
}

type YouTubeConfig struct {
	ChannelID string        `yaml:"channel_id"`
	Limit     int           `yaml:"limit" env-default:"6"`
	CacheTTL  time.Duration `yaml:"cache_ttl" env-default:"10m"`
}

// IngestConfig drives the batch importer: where the export file lives
// and how external category ids map onto local ones.
type IngestConfig struct {
	ExportPath        string         `yaml:"export_path"`
	CategoryMap       map[int]int64  `yaml:"category_map"`
	DefaultCategoryID int64          `yaml:"default_category_id" env-default:"3"`
	Categories        []CategorySeed `yaml:"categories"`
}

// CategorySeed is upserted before an import so every mapped category id
// resolves to an existing row.
type CategorySeed struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
	Slug string `yaml:"slug"`
}

func MustLoad() *Config {
	path := fetchConfigPath()
	if path == "" {
		panic("config path is empty")
	}

	return MustLoadPath(path)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

func fetchConfigPath() string {
	var res string

	// --config="path/to/config.yaml"
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
