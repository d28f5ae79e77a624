package config

import (
	"github.com/GoSiteSettings/GoSiteSettings/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	I18n      I18n
	Sites     []Site // sites seeded on start when missing
}

// Webserver implement webserver settings.
type Webserver struct {
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown in seconds
	URL            string // base url for the webserver
	APITokenHash   string // argon2id hash of the API bearer token, empty disables auth
}

// I18n holds the language settings used by translated settings.
type I18n struct {
	DefaultLanguage string   // fallback language for translated values
	Languages       []string // accepted languages, empty accepts any BCP 47 code
}

// Site is a site created on start if no site with the same domain exists.
type Site struct {
	Name   string
	Domain string
}
