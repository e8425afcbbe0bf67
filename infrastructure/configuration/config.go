package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"viewtube/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `mapstructure:"app"`
	Database    Database    `mapstructure:"database"`
	RedisClient RedisClient `mapstructure:"redisClient"`
	Remote      Remote      `mapstructure:"remote"`
	Sync        Sync        `mapstructure:"sync"`
	Pubsub      Pubsub      `mapstructure:"pubsub"`
	ServiceBus  ServiceBus  `mapstructure:"serviceBus"`
	Logger      Logger      `mapstructure:"logger"`
	Cors        Cors        `mapstructure:"cors"`
}

type App struct {
	Port        int    `mapstructure:"port"`
	SecretKey   string `mapstructure:"secretKey"`
	TLSEnabled  bool   `mapstructure:"tlsEnabled"`
	TLSCertFile string `mapstructure:"tlsCertFile"`
	TLSKeyFile  string `mapstructure:"tlsKeyFile"`
}

// Database selects the VideoStore backend. Driver is one of memory, postgres, mssql, mysql, mongo.
type Database struct {
	Driver string `mapstructure:"driver"`
	Psql   Db     `mapstructure:"psql"`
	MySql  Db     `mapstructure:"mysql"`
	Mongo  Db     `mapstructure:"mongo"`
	Mssql  Db     `mapstructure:"mssql"`
}

type Db struct {
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type RedisClient struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	Username   string `mapstructure:"username"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttlSeconds"`
}

// Remote configures the RemoteSource. Mode "memory" runs an in-process authority, "http" talks to BaseURL.
type Remote struct {
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"baseURL"`
	TimeoutSeconds int      `mapstructure:"timeoutSeconds"`
	PageSize       int      `mapstructure:"pageSize"`
	ClientID       string   `mapstructure:"clientId"`
	ClientSecret   string   `mapstructure:"clientSecret"`
	TokenURL       string   `mapstructure:"tokenURL"`
	Scopes         []string `mapstructure:"scopes"`
}

type Sync struct {
	CallTimeoutSeconds int  `mapstructure:"callTimeoutSeconds"`
	EventBuffer        int  `mapstructure:"eventBuffer"`
	FetchOnStart       bool `mapstructure:"fetchOnStart"`
}

type Pubsub struct {
	ProjectID string `mapstructure:"projectID"`
	Topic     string `mapstructure:"topic"`
}

type ServiceBus struct {
	Namespace string `mapstructure:"namespace"`
	Queue     string `mapstructure:"queue"`
}

type Logger struct {
	Level string `mapstructure:"level"`
}

type Cors struct {
	AllowOrigins []string `mapstructure:"allowOrigins"`
}

var C Config

func init() {
	Reload()
}

// Reload reads the config file and environment again, e.g. after LoadEnvFromFile.
func Reload() {
	C = Config{}
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initRemote(&C)
	initSync(&C)
	if C.Logger.Level != "" {
		logger.SetLevel(C.Logger.Level)
	}
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	C.Database.Driver = strings.ToLower(getConfigValue(C.Database.Driver, "DB_DRIVER", "memory"))

	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "viewtube")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "localhost")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "postgres")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")

	C.Database.Mssql.Name = getConfigValue(C.Database.Mssql.Name, "MSSQL_DB_NAME", "viewtube")
	C.Database.Mssql.Host = getConfigValue(C.Database.Mssql.Host, "MSSQL_HOST", "localhost")
	C.Database.Mssql.Port = getConfigValue(C.Database.Mssql.Port, "MSSQL_PORT", "1433")
	C.Database.Mssql.User = getConfigValue(C.Database.Mssql.User, "MSSQL_USER", "sa")
	C.Database.Mssql.Password = getConfigValue(C.Database.Mssql.Password, "MSSQL_PASSWORD", "")

	C.Database.MySql.Name = getConfigValue(C.Database.MySql.Name, "MYSQL_DB_NAME", "viewtube")
	C.Database.MySql.Host = getConfigValue(C.Database.MySql.Host, "MYSQL_HOST", "localhost")
	C.Database.MySql.Port = getConfigValue(C.Database.MySql.Port, "MYSQL_PORT", "3306")
	C.Database.MySql.User = getConfigValue(C.Database.MySql.User, "MYSQL_USER", "root")
	C.Database.MySql.Password = getConfigValue(C.Database.MySql.Password, "MYSQL_PASSWORD", "")

	C.Database.Mongo.Name = getConfigValue(C.Database.Mongo.Name, "MONGO_DB_NAME", "viewtube")
	C.Database.Mongo.Host = getConfigValue(C.Database.Mongo.Host, "MONGO_HOST", "localhost")
	C.Database.Mongo.Port = getConfigValue(C.Database.Mongo.Port, "MONGO_PORT", "27017")
	C.Database.Mongo.User = getConfigValue(C.Database.Mongo.User, "MONGO_USER", "")
	C.Database.Mongo.Password = getConfigValue(C.Database.Mongo.Password, "MONGO_PASSWORD", "")
}

func initApp(C *Config) {
	// SECRET_KEY from environment overrides the config file
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; mutating endpoints will reject every token. Provide SECRET_KEY via environment.")
	}
	if len(C.Cors.AllowOrigins) == 0 {
		C.Cors.AllowOrigins = []string{"http://localhost:4200", "https://localhost:4200"}
	}
}

func initRemote(C *Config) {
	C.Remote.Mode = strings.ToLower(getConfigValue(C.Remote.Mode, "REMOTE_MODE", "memory"))
	C.Remote.BaseURL = getConfigValue(C.Remote.BaseURL, "REMOTE_BASE_URL", "")
	C.Remote.ClientID = getConfigValue(C.Remote.ClientID, "REMOTE_CLIENT_ID", "")
	C.Remote.ClientSecret = getConfigValue(C.Remote.ClientSecret, "REMOTE_CLIENT_SECRET", "")
	C.Remote.TokenURL = getConfigValue(C.Remote.TokenURL, "REMOTE_TOKEN_URL", "")
	if C.Remote.TimeoutSeconds <= 0 {
		C.Remote.TimeoutSeconds = 10
	}
	if C.Remote.PageSize <= 0 {
		C.Remote.PageSize = 100
	}
}

func initSync(C *Config) {
	if C.Sync.CallTimeoutSeconds <= 0 {
		C.Sync.CallTimeoutSeconds = 15
	}
	if C.Sync.EventBuffer <= 0 {
		C.Sync.EventBuffer = 64
	}
	if C.RedisClient.TTLSeconds <= 0 {
		C.RedisClient.TTLSeconds = 600
	}
	C.Pubsub.ProjectID = getConfigValue(C.Pubsub.ProjectID, "PUBSUB_PROJECT_ID", "")
	if C.Pubsub.Topic == "" {
		C.Pubsub.Topic = "viewtube-video-events"
	}
	C.ServiceBus.Namespace = getConfigValue(C.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE", "")
	if C.ServiceBus.Queue == "" {
		C.ServiceBus.Queue = "video-events"
	}
}

// RemoteTimeout is the per-request timeout of the HTTP remote client.
func (r Remote) RemoteTimeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// CallTimeout bounds every remote call issued by the sync engine.
func (s Sync) CallTimeout() time.Duration {
	return time.Duration(s.CallTimeoutSeconds) * time.Second
}

func (r RedisClient) TTL() time.Duration {
	return time.Duration(r.TTLSeconds) * time.Second
}

// getConfigValue gets value from environment first, then config, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}
