// Package main provides the entry point of GoSiteSettings.
// It stores typed settings per site and key, keeps translated kinds per
// language and serves them through a JSON API built on fiber. Keys decide
// whether a site may hold more than one value. Data lives in SQLite, MySQL
// or PostgreSQL through gorm.
package main
