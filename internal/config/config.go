// Package config handles input from etc/*.toml files and the environment.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/GoSiteSettings/GoSiteSettings/internal/i18n"
)

const (
	// EnvPrefix prefixes single value overrides, e.g. GO_SITE_SETTINGS_DB_ENGINE.
	EnvPrefix = "GO_SITE_SETTINGS"
	// EnvConfigJSON holds a JSON document merged over the whole configuration.
	EnvConfigJSON = "GO_SITE_SETTINGS_CONFIG_JSON"

	defaultConfigPath   = "./etc/"
	mainConfigName      = "main"
	defaultShutDownTime = 5
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	if path == "" {
		path = defaultConfigPath
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(mainConfigName)
	v.SetConfigType("toml")

	if err = v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "GoSiteSettings")
	v.SetDefault("devmode", false)

	v.SetDefault("db.engine", DBEngineSQLite)
	v.SetDefault("db.path", "./site-settings.db")
	v.SetDefault("db.host", "")
	v.SetDefault("db.port", 0)
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "")
	v.SetDefault("db.extras", "")
	v.SetDefault("db.sslmode", "")
	v.SetDefault("db.maxopenconns", 0)
	v.SetDefault("db.maxidleconns", 0)
	v.SetDefault("db.slowquerythreshold", "200ms")
	v.SetDefault("db.logqueries", false)

	v.SetDefault("log.loglevel", "info")
	v.SetDefault("log.appname", "go-site-settings")
	v.SetDefault("log.servicename", "site-settings")
	v.SetDefault("log.console.enabled", true)

	v.SetDefault("webserver.port", 8080) //nolint:mnd
	v.SetDefault("webserver.url", "http://localhost:8080")
	v.SetDefault("webserver.shutdowntime", defaultShutDownTime)
	v.SetDefault("webserver.apitokenhash", "")

	v.SetDefault("i18n.defaultlanguage", "en")
	v.SetDefault("i18n.languages", []string{})
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config override from "+EnvConfigJSON)
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer

	if err := toml.NewEncoder(&buffer).Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate checks the settings the service cannot start without
// and fills the few defaults that depend on other values.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.DB.Engine == "" {
		c.DB.Engine = DBEngineSQLite
	}

	switch c.DB.Engine {
	case DBEngineSQLite:
		if c.DB.Path == "" {
			return errors.Wrap(ErrEmptySQLitePath, invalidErrMessage)
		}
	case DBEngineMySQL, DBEnginePostgres:
		if c.DB.Host == "" || c.DB.Name == "" {
			return errors.Wrap(ErrMissingDBHostOrName, invalidErrMessage)
		}
	default:
		return errors.Wrapf(ErrUnsupportedDBEngine, "%s: %q", invalidErrMessage, c.DB.Engine)
	}

	if c.I18n.DefaultLanguage == "" {
		return errors.Wrap(ErrEmptyDefaultLanguage, invalidErrMessage)
	}

	if _, err := i18n.New(c.I18n.DefaultLanguage, c.I18n.Languages); err != nil {
		return errors.Wrap(err, invalidErrMessage)
	}

	return nil
}
