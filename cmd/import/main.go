// import loads a CSV export of client queries into the configured store.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spec-kit/client-query-service/internal/config"
	"github.com/spec-kit/client-query-service/internal/importer"
	"github.com/spec-kit/client-query-service/internal/observability"
	"github.com/spec-kit/client-query-service/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var filePath string

	flagSet := pflag.NewFlagSet("import", pflag.ContinueOnError)
	flagSet.StringVarP(&filePath, "file", "f", importer.DefaultFile, "CSV file to import")
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

	filePath, err = resolveFile(filePath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	result, err := importer.New(store.Queries, logger).ImportFile(ctx, filePath)
	if err != nil {
		return err
	}
	for _, rowErr := range result.Errors {
		logger.Debug("rejected row", zap.Int("row", rowErr.Row), zap.Error(rowErr.Err))
	}
	fmt.Printf("%d rows inserted, %d rows failed\n", result.Inserted, result.Failed)
	return nil
}

// resolveFile asks for another path when the given file is missing and a
// terminal is attached.
func resolveFile(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("csv file %s not found", path)
	}

	fmt.Fprintf(os.Stderr, "File %q not found. Path to CSV file: ", path)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read path: %w", err)
	}
	alt := strings.TrimSpace(line)
	if _, err := os.Stat(alt); err != nil {
		return "", fmt.Errorf("csv file %s not found", alt)
	}
	return alt, nil
}
