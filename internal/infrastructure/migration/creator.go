package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// versionWidth is the zero padding of migration version numbers
const versionWidth = 6

const migrationUpTemplate = `-- Migration: {{.Name}}
-- Created: {{.Timestamp}}
-- Description: {{.Description}}

-- Write your UP migration SQL here

`

const migrationDownTemplate = `-- Migration: {{.Name}} (Rollback)
-- Created: {{.Timestamp}}
-- Description: Rollback for {{.Description}}

-- Write your DOWN migration SQL here

`

// MigrationFile represents a migration file pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes the next numbered migration pair into migrationsDir
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, errors.New("migration name must contain letters or digits")
	}

	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	next, err := nextVersion(migrationsDir)
	if err != nil {
		return nil, err
	}
	version := fmt.Sprintf("%0*d", versionWidth, next)

	baseName := version + "_" + slug
	mf := &MigrationFile{
		Version:     version,
		Name:        name,
		Description: description,
		Timestamp:   time.Now().Format(time.RFC3339),
		UpPath:      filepath.Join(migrationsDir, baseName+".up.sql"),
		DownPath:    filepath.Join(migrationsDir, baseName+".down.sql"),
	}

	if err := createMigrationFile(mf.UpPath, migrationUpTemplate, mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := createMigrationFile(mf.DownPath, migrationDownTemplate, mf); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}

	return mf, nil
}

// nextVersion returns one past the highest version present in dir
func nextVersion(dir string) (uint64, error) {
	names, err := ListMigrations(dir)
	if err != nil {
		return 0, err
	}
	var highest uint64
	for _, name := range names {
		v, ok := parseVersion(name)
		if ok && v > highest {
			highest = v
		}
	}
	return highest + 1, nil
}

func parseVersion(baseName string) (uint64, bool) {
	prefix, _, found := strings.Cut(baseName, "_")
	if !found {
		return 0, false
	}
	v, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func createMigrationFile(path, tmplContent string, data *MigrationFile) error {
	tmpl, err := template.New("migration").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	// O_EXCL so a racing create never clobbers an existing migration
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// sanitizeName converts a migration name to a safe file name format
func sanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
			result = append(result, c)
		case c >= 'A' && c <= 'Z':
			result = append(result, c+'a'-'A')
		case c >= '0' && c <= '9':
			result = append(result, c)
		case c == ' ' || c == '-' || c == '_':
			if len(result) > 0 && result[len(result)-1] != '_' {
				result = append(result, '_')
			}
		}
	}
	if len(result) > 0 && result[len(result)-1] == '_' {
		result = result[:len(result)-1]
	}
	return string(result)
}

// ListMigrations returns the base names of the migrations in a directory,
// sorted by version
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	migrations := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			migrations = append(migrations, base)
		}
	}

	sort.Slice(migrations, func(i, j int) bool {
		vi, _ := parseVersion(migrations[i])
		vj, _ := parseVersion(migrations[j])
		if vi != vj {
			return vi < vj
		}
		return migrations[i] < migrations[j]
	})
	return migrations, nil
}
