// setup collects database settings, writes them to an env file, creates the
// schema and optionally seeds demo accounts.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spec-kit/client-query-service/internal/config"
	"github.com/spec-kit/client-query-service/internal/observability"
	"github.com/spec-kit/client-query-service/internal/repository"
	"github.com/spec-kit/client-query-service/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var envFile string
	var seed bool
	var interactive bool

	flagSet := pflag.NewFlagSet("setup", pflag.ContinueOnError)
	flagSet.StringVar(&envFile, "env-file", ".env", "file the database settings are written to")
	flagSet.BoolVar(&seed, "seed", false, "create the demo Client and Support accounts")
	flagSet.BoolVar(&interactive, "interactive", true, "prompt for database settings")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	if interactive {
		if err := promptDatabase(newPrompter(os.Stdin, os.Stderr), &cfg.Database); err != nil {
			return err
		}
	}
	if err := config.SaveDatabaseSettings(envFile, cfg.Database); err != nil {
		return err
	}
	logger.Info("database settings saved", zap.String("file", envFile), zap.String("driver", cfg.Database.Driver))

	ctx := context.Background()
	cfg.Database.RunMigrations = true
	store, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()
	logger.Info("schema ready", zap.String("database", cfg.Database.Name))

	if !seed {
		return nil
	}
	authService := service.NewAuthService(*cfg, service.AuthDependencies{UserRepo: store.Users, Logger: logger})
	result, err := service.SeedUsers(ctx, authService, service.DemoUsers)
	if err != nil {
		return err
	}
	logger.Info("demo users seeded", zap.Strings("created", result.Created), zap.Strings("skipped", result.Skipped))
	return nil
}

// prompter reads answers line by line. Passwords are read without echo when
// the input is a terminal.
type prompter struct {
	reader   *bufio.Reader
	out      io.Writer
	passwdFD int
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{reader: bufio.NewReader(in), out: out, passwdFD: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.passwdFD = int(f.Fd())
	}
	return p
}

func (p *prompter) ask(label, current string) (string, error) {
	fmt.Fprintf(p.out, "%s [%s]: ", label, current)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	if answer := strings.TrimSpace(line); answer != "" {
		return answer, nil
	}
	return current, nil
}

// askDriver repeats the question until the answer names a supported backend.
func (p *prompter) askDriver(current string) (string, error) {
	for {
		answer, err := p.ask("Storage driver (postgres, mysql, sqlite)", current)
		if err != nil {
			return "", err
		}
		driver, err := config.ParseDriver(answer)
		if err == nil {
			return driver, nil
		}
		fmt.Fprintln(p.out, err)
	}
}

// askPassword keeps the current password on a blank answer.
func (p *prompter) askPassword(current string) (string, error) {
	fmt.Fprint(p.out, "Database password (leave blank to keep current): ")
	var answer string
	if p.passwdFD >= 0 {
		raw, err := term.ReadPassword(p.passwdFD)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		answer = string(raw)
	} else {
		line, err := p.reader.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: %w", err)
		}
		answer = strings.TrimRight(line, "\r\n")
	}
	if answer == "" {
		return current, nil
	}
	return answer, nil
}

func promptDatabase(p *prompter, db *config.DatabaseConfig) error {
	var err error
	if db.Driver, err = p.askDriver(db.Driver); err != nil {
		return err
	}
	if db.Driver == config.DriverSQLite {
		db.SQLitePath, err = p.ask("SQLite file", db.SQLitePath)
		return err
	}
	if db.Host, err = p.ask("Database host", db.Host); err != nil {
		return err
	}
	if db.User, err = p.ask("Database user", db.User); err != nil {
		return err
	}
	if db.Password, err = p.askPassword(db.Password); err != nil {
		return err
	}
	db.Name, err = p.ask("Database name", db.Name)
	return err
}
