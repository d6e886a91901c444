package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	devenv "gtrends/dev/env"
	reportcachedb "gtrends/lib/reportcache/db"
)

func createDb(filename, schema string) error {
	path, err := devenv.ResolvePath(filepath.Join("<dev_state>", filename))
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(schema)
	return err
}

func CreateEmptyDBs() error {
	return createDb("report_cache.db", reportcachedb.Schema)
}

// fields of devenv.TrendsTestConfig
const trendsConfigTemplate = `{
  // an account that can export from the trends site
  username: "",
  password: "",
  term: "golang",
}
`

// CreateConfigTemplates writes empty test configs that the live tests read,
// existing files are left alone.
func CreateConfigTemplates() error {
	path, err := devenv.GetStateFilePath("trends_config.json5")
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		return nil
	}

	fmt.Println("writing config template at", path)
	return os.WriteFile(path, []byte(trendsConfigTemplate), 0600)
}

func PrintConfigLocations() {
	slog.Info("tests against the live site are skipped until dev/.state/trends_config.json5 has a username and password, point the cache of config.json5 at <dev_state>/report_cache.db to reuse downloads.")
}
