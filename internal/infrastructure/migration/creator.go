package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- {{.Version}}_{{.Slug}}.up.sql
-- {{.Description}}
-- Generated {{.CreatedAt}}

-- Forward migration SQL goes here.

`

const downTemplate = `-- {{.Version}}_{{.Slug}}.down.sql
-- Reverts: {{.Description}}
-- Generated {{.CreatedAt}}

-- Rollback SQL goes here.

`

// MigrationFile describes the up/down SQL pair written for one schema
// change.
type MigrationFile struct {
	Version     string
	Slug        string
	Description string
	CreatedAt   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down migration pair into dir. The
// version prefix is the creation time, so files sort in apply order.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	now := time.Now()
	if description == "" {
		description = name
	}

	mf := &MigrationFile{
		Version:     now.Format("20060102150405"),
		Slug:        slugify(name),
		Description: description,
		CreatedAt:   now.Format(time.RFC3339),
	}
	base := mf.Version + "_" + mf.Slug
	mf.UpPath = filepath.Join(dir, base+".up.sql")
	mf.DownPath = filepath.Join(dir, base+".down.sql")

	if err := renderFile(mf.UpPath, upTemplate, mf); err != nil {
		return nil, fmt.Errorf("failed to create up migration: %w", err)
	}
	if err := renderFile(mf.DownPath, downTemplate, mf); err != nil {
		// Do not leave a half pair behind, golang-migrate refuses to
		// run a version that has only one side.
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("failed to create down migration: %w", err)
	}

	return mf, nil
}

func renderFile(path, tmplText string, data *MigrationFile) error {
	tmpl, err := template.New(filepath.Base(path)).Parse(tmplText)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

// slugify lowercases a migration name and collapses everything that is
// not alphanumeric into single underscores.
func slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the base names of the migration pairs in dir,
// sorted by version. A missing directory yields an empty list.
func ListMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base, ok := strings.CutSuffix(entry.Name(), ".up.sql")
		if !ok {
			continue
		}
		names = append(names, base)
	}
	sort.Strings(names)
	return names, nil
}
