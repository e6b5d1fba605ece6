// Package migrations embeds the SQL schema applied by the seed tool.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed *.sql
var files embed.FS

// Script is a named SQL migration.
type Script struct {
	Name string
	SQL  string
}

// All returns the embedded migrations in lexical order.
func All() ([]Script, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	scripts := make([]Script, 0, len(names))
	for _, name := range names {
		data, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, Script{Name: name, SQL: string(data)})
	}
	return scripts, nil
}
