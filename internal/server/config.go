package server

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the server configuration.
type Config struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	DataDir string `mapstructure:"data_dir"`
}

// Addr returns the listen address as host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.data_dir", "./data")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./data/leasesync.db")

	// Reconciliation defaults
	v.SetDefault("reconcile.fetch_concurrency", 4)
	v.SetDefault("reconcile.transport_timeout", "10s")
	v.SetDefault("reconcile.ping_precheck", false)
	v.SetDefault("reconcile.ping_timeout", "2s")

	// RouterOS transport defaults. Zero ports mean protocol defaults
	// (80/443 for REST, 22 for SSH).
	v.SetDefault("routeros.rest_port", 0)
	v.SetDefault("routeros.use_tls", false)
	v.SetDefault("routeros.ssh_port", 22)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("leasesync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/leasesync")
	}

	// Environment variable support: LS_SERVER_PORT=9090
	v.SetEnvPrefix("LS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}
