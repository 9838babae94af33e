// Package config handles application configuration loading and validation.
//
// Configuration is loaded from config.yml and validated using struct tags.
// Values from a .env file and the process environment override the file,
// see ApplyEnv for the recognised variables.
package config
