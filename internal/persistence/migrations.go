package persistence

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationFiles embed.FS

// RunMigrations executes the embedded Postgres migrations in filename order.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	scripts, err := migrationScripts("postgres")
	if err != nil {
		return err
	}

	for _, script := range scripts {
		logger.Info("applying migration", zap.String("file", script.name))
		if _, err := pool.Exec(ctx, script.body); err != nil {
			return fmt.Errorf("apply migration %s: %w", script.name, err)
		}
	}

	logger.Info("migrations applied", zap.Int("count", len(scripts)))
	return nil
}

// SQLiteSchema returns the concatenated SQLite schema script.
func SQLiteSchema() (string, error) {
	scripts, err := migrationScripts("sqlite")
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, script := range scripts {
		b.WriteString(script.body)
		b.WriteString("\n")
	}
	return b.String(), nil
}

type migrationScript struct {
	name string
	body string
}

func migrationScripts(dialect string) ([]migrationScript, error) {
	dir := path.Join("migrations", dialect)
	entries, err := fs.ReadDir(migrationFiles, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	filenames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		filenames = append(filenames, entry.Name())
	}
	sort.Strings(filenames)

	scripts := make([]migrationScript, 0, len(filenames))
	for _, name := range filenames {
		content, err := fs.ReadFile(migrationFiles, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		scripts = append(scripts, migrationScript{name: name, body: string(content)})
	}
	return scripts, nil
}
