package config

import (
	"flag"
	"time"

	"github.com/rs/zerolog/log"
	sc "github.com/sksmith/go-spring-config"
	"github.com/spf13/viper"
)

const (
	AppName  = "Summit Air Inventory"
	Revision = "1"
)

var (
	// Build time arguments
	AppVersion  string
	Sha1Version string
	BuildTime   string

	// Runtime flags
	profile      *string
	configSource *string
	configUrl    *string
	configBranch *string
	configUser   *string
	configPass   *string
)

const maxRetries = 5

type Config struct {
	AppName     string       `json:"appName"     yaml:"appName"`
	AppVersion  string       `json:"appVersion"  yaml:"appVersion"`
	Sha1Version string       `json:"sha1Version" yaml:"sha1Version"`
	BuildTime   string       `json:"buildTime"   yaml:"buildTime"`
	Profile     string       `json:"profile"     yaml:"profile"`
	Revision    string       `json:"revision"    yaml:"revision"`
	Port        string       `json:"port"        yaml:"port"`
	Config      ConfigSource `json:"config"      yaml:"config"`
	Log         LogConfig    `json:"log"         yaml:"log"`
	Db          DbConfig     `json:"db"          yaml:"db"`
	RabbitMQ    QueueConfig  `json:"rabbitmq"    yaml:"rabbitmq"`
}

type ConfigSource struct {
	Print  bool         `json:"print"  yaml:"print"`
	Source string       `json:"source" yaml:"source"`
	Spring SpringConfig `json:"spring" yaml:"spring"`
}

type SpringConfig struct {
	Url    string `json:"url"    yaml:"url"`
	Branch string `json:"branch" yaml:"branch"`
	User   string `json:"user"   yaml:"user"`
	Pass   string `json:"pass"   yaml:"pass" sensitive:"true"`
}

type LogConfig struct {
	Level      string `json:"level"      yaml:"level"`
	Structured bool   `json:"structured" yaml:"structured"`
}

type DbConfig struct {
	Name     string `json:"name"     yaml:"name"`
	Host     string `json:"host"     yaml:"host"`
	Port     string `json:"port"     yaml:"port"`
	Migrate  bool   `json:"migrate"  yaml:"migrate"`
	Clean    bool   `json:"clean"    yaml:"clean"`
	InMemory bool   `json:"inMemory" yaml:"inMemory"`
	User     string `json:"user"     yaml:"user"`
	Pass     string `json:"pass"     yaml:"pass" sensitive:"true"`
}

type QueueConfig struct {
	Host        string                 `json:"host" yaml:"host"`
	Port        string                 `json:"port" yaml:"port"`
	User        string                 `json:"user" yaml:"user"`
	Pass        string                 `json:"pass" yaml:"pass" sensitive:"true"`
	Mock        bool                   `json:"mock" yaml:"mock"`
	Movement    MovementQueueConfig    `json:"movement"    yaml:"movement"`
	Reservation ReservationQueueConfig `json:"reservation" yaml:"reservation"`
	Item        ItemQueueConfig        `json:"item"        yaml:"item"`
}

type MovementQueueConfig struct {
	Exchange string `json:"exchange" yaml:"exchange"`
}

type ReservationQueueConfig struct {
	Exchange string `json:"exchange" yaml:"exchange"`
}

type ItemQueueConfig struct {
	Queue string             `json:"queue" yaml:"queue"`
	Dlt   ItemQueueDltConfig `json:"dlt"   yaml:"dlt"`
}

type ItemQueueDltConfig struct {
	Exchange string `json:"exchange" yaml:"exchange"`
}

func (c *Config) Print() {
	if c.Config.Print {
		log.Info().Interface("config", c).Msg("the following configurations have successfully loaded")
	}
}

func init() {
	profile = flag.String("p", "local", "profile for the application config")
	configSource = flag.String("s", "local", "where to get configurations from")
	configUrl = flag.String("cfgUrl", "", "url for application config server")
	configBranch = flag.String("cfgBranch", "", "branch to request from the configuration server (used for spring cloud config)")
	configUser = flag.String("cfgUser", "", "username to use when connecting to the application server")
	configPass = flag.String("cfgPass", "", "password to use when connecting to the application server")

	viper.SetDefault("port", "8080")
	viper.SetDefault("profile", "local")

	viper.SetDefault("config.print", false)

	viper.SetDefault("log.level", "trace")
	viper.SetDefault("log.structured", false)

	viper.SetDefault("db.name", "inventory-db")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.user", "postgres")
	viper.SetDefault("db.pass", "postgres")
	viper.SetDefault("db.migrate", true)
	viper.SetDefault("db.clean", false)
	viper.SetDefault("db.inMemory", false)

	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", "5672")
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.pass", "guest")
	viper.SetDefault("rabbitmq.mock", false)
	viper.SetDefault("rabbitmq.movement.exchange", "stock.movement.exchange")
	viper.SetDefault("rabbitmq.reservation.exchange", "stock.reservation.exchange")
	viper.SetDefault("rabbitmq.item.queue", "catalog.item.queue")
	viper.SetDefault("rabbitmq.item.dlt.exchange", "catalog.item.dlt.exchange")
}

func Load() *Config {
	config, err := createConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configurations")
	}

	switch *configSource {
	case "local":
		err = loadLocalConfigs(config)
	case "spring":
		err = loadRemoteConfigs(config)
	default:
		log.Warn().
			Str("configSource", *configSource).
			Msg("unrecognized configuration source, using local")

		err = loadLocalConfigs(config)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configurations")
	}

	return config
}

// LoadDefaults builds a Config from the built-in defaults without reading
// any local or remote source.
func LoadDefaults() *Config {
	config, err := createConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configurations")
	}
	if err = viper.Unmarshal(config); err != nil {
		log.Fatal().Err(err).Msg("failed to load configurations")
	}

	return config
}

func createConfig() (config *Config, err error) {
	config = &Config{}

	config.Config.Source = *configSource
	config.Config.Spring.Url = *configUrl
	config.Config.Spring.Branch = *configBranch
	config.Config.Spring.User = *configUser
	config.Config.Spring.Pass = *configPass
	config.Profile = *profile

	config.AppName = AppName
	config.Revision = Revision
	config.AppVersion = AppVersion
	config.Sha1Version = Sha1Version
	config.BuildTime = BuildTime

	return config, nil
}

func loadLocalConfigs(config *Config) error {
	log.Info().Msg("loading local configurations...")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return viper.Unmarshal(config)
}

func loadRemoteConfigs(config *Config) error {
	log.Info().Str("url", config.Config.Spring.Url).Msg("loading remote configurations...")

	var remote *sc.Config
	var err error

	for tryCount := 1; tryCount < maxRetries; tryCount++ {
		remote, err = sc.LoadWithCreds(
			config.Config.Spring.Url,
			AppName,
			config.Config.Spring.Branch,
			config.Config.Spring.User,
			config.Config.Spring.Pass,
			config.Profile)
		if err == nil {
			break
		}
		log.Error().Err(err).Msg("failed to load configurations... retrying")
		time.Sleep(5 * time.Second)
	}
	if err != nil {
		return err
	}

	for k, v := range remote.Values {
		viper.Set(k, v)
	}

	return viper.Unmarshal(config)
}
