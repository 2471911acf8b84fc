package config

import (
	"time"
)

// Database drivers accepted by DATABASE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverMemory   = "memory"
)

// Event bus drivers accepted by EVENTS_DRIVER.
const (
	EventsMemory = "memory"
	EventsKafka  = "kafka"
	EventsRedis  = "redis"
)

type DB struct {
	Driver          string        `envconfig:"DRIVER" default:"sqlite"`
	Url             string        `envconfig:"URL" default:"file:atm.db?cache=shared&_fk=1"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	Seed            bool          `envconfig:"SEED" default:"true"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Cors struct {
	AllowOrigins string `envconfig:"ALLOW_ORIGINS" default:"http://localhost:3000,https://localhost:3000"`
}

type Kafka struct {
	Brokers string `envconfig:"BROKERS" default:"localhost:9092"`
	Topic   string `envconfig:"TOPIC" default:"atm.ledger.events"`
	GroupID string `envconfig:"GROUP_ID" default:"atm"`

	SASLUsername string `envconfig:"SASL_USERNAME"`
	SASLPassword string `envconfig:"SASL_PASSWORD"`
	TLS          bool   `envconfig:"TLS" default:"false"`
}

type Redis struct {
	URL    string `envconfig:"URL" default:"redis://localhost:6379/0"`
	Stream string `envconfig:"STREAM" default:"atm:ledger:events"`
	Group  string `envconfig:"GROUP" default:"atm"`
}

type Events struct {
	Driver string `envconfig:"DRIVER" default:"memory"`
	Kafka  *Kafka `envconfig:"KAFKA"`
	Redis  *Redis `envconfig:"REDIS"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[atm]"`
}

type Server struct {
	Scheme          string        `envconfig:"SCHEME" default:"http"`
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"5000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Cors      *Cors      `envconfig:"CORS"`
	Events    *Events    `envconfig:"EVENTS"`
}
