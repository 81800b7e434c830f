package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Load reads settings from path, dispatching on extension: `.kdl` uses
// the primary KDL format, `.toml` the secondary/migration format. The
// result is validated before being returned.
func Load(path string) (Settings, error) {
	var cfg Settings
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".kdl":
		cfg, err = LoadKDL(path)
	case ".toml":
		cfg, err = LoadTOML(path)
	default:
		return Settings{}, fmt.Errorf("dupscan: unrecognized config extension %q", filepath.Ext(path))
	}
	if err != nil {
		return Settings{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

// Matches reports whether relPath is selected by s.Include/Exclude: it
// must match at least one Include pattern (or Include is empty, meaning
// "everything"), and must match no Exclude pattern.
func (s Settings) Matches(relPath string) bool {
	relPath = filepath.ToSlash(relPath)

	if len(s.Include) > 0 {
		included := false
		for _, pat := range s.Include {
			if ok, _ := doublestar.Match(pat, relPath); ok {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}
	for _, pat := range s.Exclude {
		if ok, _ := doublestar.Match(pat, relPath); ok {
			return false
		}
	}
	return true
}
