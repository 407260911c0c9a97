package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lytics/confl"

	"github.com/hrutik5321/pms/internal/db"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Driver      string `confl:"driver"` // [mysql,postgres,sqlite]
	Host        string `confl:"host"`
	Port        string `confl:"port"`
	User        string `confl:"user"`
	Password    string `confl:"password"`
	Database    string `confl:"database"` // database name, file path for sqlite
	MaxConns    int    `confl:"max_conns"`
	ExecTimeout string `confl:"exec_timeout"` // duration, e.g. "10s"
	LogLevel    string `confl:"log_level"`    // [debug,info,warn,error]
	LogFile     string `confl:"log_file"`     // used while the terminal UI owns stdout
}

// Default points at the local productmanagementsystem MySQL database.
func Default() Config {
	return Config{
		Driver:      "mysql",
		Host:        "localhost",
		User:        "root",
		Database:    "productmanagementsystem",
		MaxConns:    db.DefaultMaxConns,
		ExecTimeout: db.DefaultExecTimeout.String(),
		LogLevel:    "info",
		LogFile:     "pms.log",
	}
}

func LoadConfigFromFile(filename string) (*Config, error) {
	confBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return LoadConfig(string(confBytes))
}

// LoadConfig decodes conf over Default.
func LoadConfig(conf string) (*Config, error) {
	c := Default()
	if _, err := confl.Decode(conf, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyEnv overrides fields from PMS_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	for key, dst := range map[string]*string{
		"PMS_DRIVER":   &c.Driver,
		"PMS_HOST":     &c.Host,
		"PMS_PORT":     &c.Port,
		"PMS_USER":     &c.User,
		"PMS_PASSWORD": &c.Password,
		"PMS_DATABASE": &c.Database,
	} {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Driver) {
	case "mysql", "postgres", "postgresql", "pgx", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, c.Driver)
	}
	if c.Database == "" && !strings.HasPrefix(strings.ToLower(c.Driver), "sqlite") {
		return fmt.Errorf("%w: database is required", ErrInvalidConfig)
	}
	if c.MaxConns < 0 {
		return fmt.Errorf("%w: max_conns must not be negative", ErrInvalidConfig)
	}
	if _, err := c.timeout(); err != nil {
		return err
	}
	return nil
}

func (c *Config) timeout() (time.Duration, error) {
	if c.ExecTimeout == "" {
		return db.DefaultExecTimeout, nil
	}
	d, err := time.ParseDuration(c.ExecTimeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: exec_timeout %q", ErrInvalidConfig, c.ExecTimeout)
	}
	return d, nil
}

// Conn converts the config into connection parameters. Call Validate first.
func (c *Config) Conn() db.ConnConfig {
	timeout, _ := c.timeout()
	return db.ConnConfig{
		Driver:      strings.ToLower(c.Driver),
		Host:        c.Host,
		Port:        c.Port,
		User:        c.User,
		Password:    c.Password,
		Database:    c.Database,
		MaxConns:    c.MaxConns,
		ExecTimeout: timeout,
	}
}
