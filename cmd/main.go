package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	u "github.com/araddon/gou"

	"github.com/hrutik5321/pms/internal/app"
	"github.com/hrutik5321/pms/internal/config"
	"github.com/hrutik5321/pms/internal/db"
	"github.com/hrutik5321/pms/internal/db/backend"
	"github.com/hrutik5321/pms/internal/ui/table"
)

var (
	configFile = flag.String("config", "", "pms config file")
	driver     = flag.String("driver", "", "database driver [mysql|postgres|sqlite]")
	host       = flag.String("host", "", "database host")
	port       = flag.String("port", "", "database port")
	user       = flag.String("user", "", "database user")
	database   = flag.String("database", "", "database name, or file path for sqlite")
	logLevel   = flag.String("loglevel", "", "log level [debug|info|warn|error]")
	logFile    = flag.String("logfile", "", "log file used while the terminal UI runs")
	printTable = flag.String("print", "", "print this table and exit instead of starting the UI")
	format     = flag.String("format", "table", "output format for -print [table|json|csv]")
	where      whereFlag
)

func init() {
	flag.Var(&where, "where", "col=value filter for -print, repeatable")
}

// whereFlag collects repeated -where col=value pairs in order.
type whereFlag struct {
	criteria db.Criteria
}

func (w *whereFlag) String() string {
	parts := make([]string, 0, w.criteria.Len())
	for i, col := range w.criteria.Columns() {
		parts = append(parts, fmt.Sprintf("%s=%v", col, w.criteria.Values()[i]))
	}
	return strings.Join(parts, ",")
}

func (w *whereFlag) Set(s string) error {
	col, val, ok := strings.Cut(s, "=")
	col = strings.TrimSpace(col)
	if !ok || col == "" {
		return fmt.Errorf("want col=value, got %q", s)
	}
	w.criteria = w.criteria.And(col, val)
	return nil
}

func main() {
	flag.Parse()

	conf, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pms: %v\n", err)
		os.Exit(2)
	}
	u.SetupLogging(conf.LogLevel)
	u.SetColorIfTerminal()

	if err := run(conf); err != nil {
		u.Errorf("%v", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, PMS_* variables and flags.
func loadConfig() (*config.Config, error) {
	if err := table.CheckFormat(*format); err != nil {
		return nil, fmt.Errorf("-format: %w", err)
	}
	conf := config.Default()
	c := &conf
	if *configFile != "" {
		var err error
		if c, err = config.LoadConfigFromFile(*configFile); err != nil {
			return nil, fmt.Errorf("could not load config: %w", err)
		}
	}
	c.ApplyEnv(os.Getenv)

	for dst, v := range map[*string]string{
		&c.Driver:   *driver,
		&c.Host:     *host,
		&c.Port:     *port,
		&c.User:     *user,
		&c.Database: *database,
		&c.LogLevel: *logLevel,
		&c.LogFile:  *logFile,
	} {
		if v != "" {
			*dst = v
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func run(conf *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := backend.Open(ctx, conf.Conn())
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			u.Warnf("error closing database: %v", err)
		}
	}()

	if *printTable != "" {
		return printRows(ctx, p, os.Stdout, *printTable, where.criteria, *format)
	}

	// the terminal UI owns stdout and stderr from here on
	if conf.LogFile != "" {
		f, err := os.OpenFile(conf.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("could not open log file: %w", err)
		}
		defer f.Close()
		u.SetLogger(log.New(f, "", log.LstdFlags|log.Lshortfile), conf.LogLevel)
	} else {
		u.SetLogger(log.New(io.Discard, "", 0), conf.LogLevel)
	}

	if _, err := app.NewProgram(app.NewStore(p)).Run(); err != nil {
		return fmt.Errorf("program failed: %w", err)
	}
	return nil
}

func printRows(ctx context.Context, p db.Provider, w io.Writer, name string, c db.Criteria, format string) error {
	stmt, err := db.SelectWhereEquals(name, c)
	if err != nil {
		return err
	}
	t, err := db.Query(ctx, p, stmt)
	if err != nil {
		return err
	}
	return table.Write(w, t, format)
}
