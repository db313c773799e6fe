package config

import (
	"os"

	"football-app-go/database"
	"football-app-go/events"
	"football-app-go/logging"
)

// ToDatabaseConfig converts Config to database.Config
func (c *Config) ToDatabaseConfig() database.Config {
	return database.Config{
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Username: c.Database.Username,
		Password: c.Database.Password,
		Database: c.Database.Database,
		Timeout:  c.Database.Timeout,
	}
}

// ToLoggingConfig converts Config to logging.Config
func (c *Config) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:       c.Logging.Level,
		Output:      os.Stdout,
		Prefix:      c.Logging.Prefix,
		EnableColor: c.Logging.EnableColor,
	}
}

// ToEventsConfig converts Config to events.Config
func (c *Config) ToEventsConfig() events.Config {
	return events.Config{
		URL:           c.Events.NATSURL,
		SubjectPrefix: c.Events.SubjectPrefix,
	}
}
