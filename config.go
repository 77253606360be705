package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	ConfigFile = "./config.yml"
	EnvFile    = "./config.env"
	EnvPrefix  = "DCAT"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit               string        `yaml:"git_commit" envconfig:"DCAT_GIT_COMMIT"`
	GitTag                  string        `yaml:"git_tag" envconfig:"DCAT_GIT_TAG"`
	BuildTime               string        `yaml:"build_time" envconfig:"DCAT_BUILD_TIME"`
	IsProduction            bool          `yaml:"is_production" envconfig:"DCAT_IS_PRODUCTION"`
	LogLevel                zapcore.Level `yaml:"log_level" envconfig:"DCAT_LOG_LEVEL"`
	LogFolder               string        `yaml:"log_folder" envconfig:"DCAT_LOG_FOLDER"`
	LogMaxSize              int           `yaml:"log_max_size" envconfig:"DCAT_LOG_MAX_SIZE"` // in megabytes
	OpsEndpointsEnable      bool          `yaml:"ops_endpoints_enable" envconfig:"DCAT_OPS_ENDPOINTS_ENABLE"`
	ProfilerEndpointsEnable bool          `yaml:"profiler_endpoints_enable" envconfig:"DCAT_PROFILER_ENDPOINTS_ENABLE"`
	Server                  ServerConfig  `yaml:"server"`
	Storage                 StorageConfig `yaml:"storage"`
	MongoDB                 MongoDBConfig `yaml:"mongodb"`
	Redis                   RedisConfig   `yaml:"redis"`
	BoltDB                  BoltDBConfig  `yaml:"boltdb"`
	Mirror                  MirrorConfig  `yaml:"mirror"`
	Catalog                 CatalogConfig `yaml:"catalog"`
}

type ServerConfig struct {
	Host                    string        `yaml:"host" envconfig:"DCAT_SERVER_HOST"`
	Port                    string        `yaml:"port" envconfig:"DCAT_SERVER_PORT"`
	ReadTimeout             time.Duration `yaml:"read_timeout" envconfig:"DCAT_SERVER_READ_TIMEOUT"`
	WriteTimeout            time.Duration `yaml:"write_timeout" envconfig:"DCAT_SERVER_WRITE_TIMEOUT"`
	LongRequestWriteTimeout time.Duration `yaml:"long_request_write_timeout" envconfig:"DCAT_SERVER_LONG_REQUEST_WRITE_TIMEOUT"`
	RequestTimeout          time.Duration `yaml:"request_timeout" envconfig:"DCAT_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout         time.Duration `yaml:"shutdown_timeout" envconfig:"DCAT_SERVER_SHUTDOWN_TIMEOUT"`
}

type StorageConfig struct {
	Backend string `yaml:"backend" envconfig:"DCAT_STORAGE_BACKEND"` // mongodb, redis or boltdb
}

type MongoDBConfig struct {
	URI            string        `yaml:"uri" envconfig:"DCAT_MONGODB_URI"`
	Database       string        `yaml:"database" envconfig:"DCAT_MONGODB_DATABASE"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" envconfig:"DCAT_MONGODB_CONNECT_TIMEOUT"`
	MaxPoolSize    uint64        `yaml:"max_pool_size" envconfig:"DCAT_MONGODB_MAX_POOL_SIZE"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"DCAT_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"DCAT_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"DCAT_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"DCAT_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"DCAT_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"DCAT_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"DCAT_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"DCAT_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"DCAT_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"DCAT_REDIS_DATABASE_INDEX"`
}

type BoltDBConfig struct {
	FilePath string        `yaml:"filepath" envconfig:"DCAT_BOLTDB_FILE_PATH"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"DCAT_BOLTDB_TIMEOUT"`
}

// MirrorConfig drives the replication of every write into a
// bolt backup file through the redis queues.
type MirrorConfig struct {
	Enabled  bool          `yaml:"enabled" envconfig:"DCAT_MIRROR_ENABLED"`
	FilePath string        `yaml:"filepath" envconfig:"DCAT_MIRROR_FILE_PATH"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"DCAT_MIRROR_TIMEOUT"`
}

type CatalogConfig struct {
	// StrictCategoryReference rejects books referencing a missing category.
	StrictCategoryReference bool `yaml:"strict_category_reference" envconfig:"DCAT_CATALOG_STRICT_CATEGORY_REFERENCE"`
	// EmptyCategoryNotFound answers 404 when a category has no books.
	EmptyCategoryNotFound bool `yaml:"empty_category_not_found" envconfig:"DCAT_CATALOG_EMPTY_CATEGORY_NOT_FOUND"`
}

// Redacted returns a copy of the configuration without secrets.
func (c Config) Redacted() Config {
	if c.Redis.Password != "" {
		c.Redis.Password = "*****"
	}
	if c.MongoDB.URI != "" {
		c.MongoDB.URI = "*****"
	}
	return c
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and updates the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if len(config.Storage.Backend) == 0 {
		config.Storage.Backend = MongoDBBackend
	}

	switch config.Storage.Backend {
	case MongoDBBackend:
		if len(config.MongoDB.URI) == 0 || len(config.MongoDB.Database) == 0 {
			return errors.New("make sure to set valid mongodb uri and database in configuration file")
		}
		if config.MongoDB.ConnectTimeout == 0 {
			config.MongoDB.ConnectTimeout = 10 * time.Second
		}
	case RedisBackend:
		if err := checkRedisConfig(config); err != nil {
			return err
		}
	case BoltDBBackend:
		if len(config.BoltDB.FilePath) == 0 {
			return errors.New("make sure to set valid boltdb file path in configuration file")
		}
	default:
		return fmt.Errorf("unsupported storage backend %q: use one of mongodb, redis, boltdb", config.Storage.Backend)
	}

	if config.Mirror.Enabled {
		if err := checkRedisConfig(config); err != nil {
			return fmt.Errorf("mirror: %w", err)
		}
		if len(config.Mirror.FilePath) == 0 {
			return errors.New("make sure to set valid mirror file path in configuration file")
		}
		if config.Storage.Backend == BoltDBBackend && config.Mirror.FilePath == config.BoltDB.FilePath {
			return errors.New("mirror file path must differ from the boltdb storage file path")
		}
	}

	if len(config.LogFolder) == 0 {
		config.LogFolder = "./logs"
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 100
	}

	return nil
}

func checkRedisConfig(config *Config) error {
	if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}
	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile(ConfigFile)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration. The file is optional.
	err = godotenv.Load(EnvFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `DCAT`.
	err = LoadConfigEnvs(EnvPrefix, config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
