package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      App
	Bot      Bot
	Telegram Telegram
	Storage  Storage
	Postgres Postgres
	Redis    Redis
	Mongo    Mongo
	Kafka    Kafka
	Worker   Worker
	HTTP     HTTP
	Probe    Probe
	Metrics  Metrics
	Notify   Notify
}

type App struct {
	Name     string `env:"APP_NAME" envDefault:"gift-autobuy"`
	Version  string `env:"APP_VERSION" envDefault:"1.3.0"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Bot токен бота и список владельцев, для каждого запускается свой воркер.
type Bot struct {
	Token    string  `env:"BOT_TOKEN,required,notEmpty" json:"-"`
	OwnerIDs []int64 `env:"OWNER_IDS,required,notEmpty" envSeparator:","`
	// LogRequests включает логирование запросов к Bot API.
	LogRequests bool `env:"BOT_LOG_REQUESTS" envDefault:"false"`
}

// Telegram настройки юзербота (MTProto). Юзербот опционален.
type Telegram struct {
	Enabled    bool   `env:"TG_USERBOT_ENABLED" envDefault:"false"`
	APIID      int    `env:"TG_API_ID"`
	APIHash    string `env:"TG_API_HASH" json:"-"`
	Phone      string `env:"TG_PHONE" json:"-"`
	Password   string `env:"TG_PASSWORD" json:"-"`
	SessionDir string `env:"TG_SESSION_DIR" envDefault:"storage/sessions"`
	Debug      bool   `env:"TG_DEBUG" envDefault:"false"`
}

type Storage struct {
	Backend     string `env:"STORAGE_BACKEND" envDefault:"file"`
	FileDir     string `env:"STORAGE_FILE_DIR" envDefault:"storage/configs"`
	MaxProfiles int    `env:"MAX_PROFILES" envDefault:"5"`
}

type Postgres struct {
	DSN             string        `env:"PG_DSN" json:"-"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"5m"`
}

type Redis struct {
	Address            string `env:"REDIS_ADDRESS" envDefault:"127.0.0.1:6379"`
	Username           string `env:"REDIS_USERNAME"`
	Password           string `env:"REDIS_PASSWORD" json:"-"`
	DatabaseNumber     int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize           int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConnections int    `env:"REDIS_MIN_IDLE_CONNS" envDefault:"1"`
	MaxIdleConnections int    `env:"REDIS_MAX_IDLE_CONNS" envDefault:"5"`
	KeyPrefix          string `env:"REDIS_KEY_PREFIX" envDefault:"autobuy:config:"`
}

type Mongo struct {
	URI            string        `env:"MONGO_URI" envDefault:"mongodb://127.0.0.1:27017" json:"-"`
	Database       string        `env:"MONGO_DATABASE" envDefault:"gift_autobuy"`
	Collection     string        `env:"MONGO_COLLECTION" envDefault:"user_configs"`
	MaxPoolSize    uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"10"`
	MinPoolSize    uint64        `env:"MONGO_MIN_POOL_SIZE" envDefault:"1"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
}

// Kafka поток событий о покупках. Пустой список брокеров выключает публикацию.
type Kafka struct {
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	Topic        string        `env:"KAFKA_TOPIC" envDefault:"gift-purchases"`
	BatchTimeout time.Duration `env:"KAFKA_BATCH_TIMEOUT" envDefault:"10ms"`
}

type Worker struct {
	PurchaseCooldown  time.Duration `env:"PURCHASE_COOLDOWN" envDefault:"300ms"`
	IdleInterval      time.Duration `env:"WORKER_IDLE_INTERVAL" envDefault:"1s"`
	CycleInterval     time.Duration `env:"WORKER_CYCLE_INTERVAL" envDefault:"500ms"`
	ErrorDelay        time.Duration `env:"WORKER_ERROR_DELAY" envDefault:"500ms"`
	InventorySource   string        `env:"INVENTORY_SOURCE" envDefault:"bot"`
	IncludeUnlimited  bool          `env:"INVENTORY_INCLUDE_UNLIMITED" envDefault:"false"`
	UserbotCatalogTTL time.Duration `env:"USERBOT_CATALOG_TTL" envDefault:"50s"`
	BalanceCacheTTL   time.Duration `env:"BALANCE_CACHE_TTL" envDefault:"5s"`
}

type HTTP struct {
	Enabled         bool          `env:"HTTP_ENABLED" envDefault:"true"`
	ListenAddress   string        `env:"HTTP_LISTEN_ADDRESS" envDefault:"127.0.0.1:8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
	LogFieldMaxLen  int           `env:"HTTP_LOG_FIELD_MAX_LEN" envDefault:"4096"`
}

type Probe struct {
	ListenAddress string `env:"PROBE_LISTEN_ADDRESS" envDefault:"127.0.0.1:8081"`
}

type Metrics struct {
	ListenAddress string `env:"METRICS_LISTEN_ADDRESS" envDefault:"127.0.0.1:9090"`
}

// Notify включает доставку уведомлений через очередь asynq вместо прямой отправки.
type Notify struct {
	Queued bool   `env:"NOTIFY_QUEUED" envDefault:"false"`
	Queue  string `env:"NOTIFY_QUEUE" envDefault:"notifications"`
}

// StorageConfig подмножество конфигурации, нужное для работы с хранилищем
// без запуска бота (configctl).
type StorageConfig struct {
	Bot      StorageOwner
	Storage  Storage
	Postgres Postgres
	Redis    Redis
	Mongo    Mongo
}

type StorageOwner struct {
	OwnerIDs []int64 `env:"OWNER_IDS" envSeparator:","`
}

// StorageConfig часть конфигурации, нужная для открытия хранилища.
func (c Config) StorageConfig() StorageConfig {
	return StorageConfig{
		Bot:      StorageOwner{OwnerIDs: c.Bot.OwnerIDs},
		Storage:  c.Storage,
		Postgres: c.Postgres,
		Redis:    c.Redis,
		Mongo:    c.Mongo,
	}
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := config.validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func LoadStorage() (StorageConfig, error) {
	_ = godotenv.Load()

	var config StorageConfig

	if err := env.Parse(&config); err != nil {
		return StorageConfig{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := config.Storage.validate(); err != nil {
		return StorageConfig{}, err
	}

	return config, nil
}

func (c Config) validate() error {
	if err := c.Storage.validate(); err != nil {
		return err
	}

	switch c.Worker.InventorySource {
	case InventorySourceBot:
	case InventorySourceUserbot:
		if !c.Telegram.Enabled {
			return fmt.Errorf("INVENTORY_SOURCE=%s requires TG_USERBOT_ENABLED", InventorySourceUserbot)
		}
	default:
		return fmt.Errorf("unknown INVENTORY_SOURCE %q", c.Worker.InventorySource)
	}

	if c.Telegram.Enabled && (c.Telegram.APIID == 0 || c.Telegram.APIHash == "" || c.Telegram.Phone == "") {
		return fmt.Errorf("userbot requires TG_API_ID, TG_API_HASH and TG_PHONE")
	}

	return nil
}

func (s Storage) validate() error {
	switch strings.ToLower(s.Backend) {
	case BackendFile, BackendMemory, BackendPostgres, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", s.Backend)
	}

	if s.MaxProfiles < 1 {
		return fmt.Errorf("MAX_PROFILES must be positive, got %d", s.MaxProfiles)
	}

	return nil
}

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"

	InventorySourceBot     = "bot"
	InventorySourceUserbot = "userbot"
)
