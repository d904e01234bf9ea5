package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/reckon/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// defaultDirMode is the permission mode for runtime directories.
var defaultDirMode os.FileMode = 0o700

var (
	// debugBinName matches dlv's default build output, __debug_bin<pid>.
	debugBinName = regexp.MustCompile(`^__debug_bin\d+$`)
	leadingDots  = regexp.MustCompile(`^\.+`)
)

// basePrefix returns the directory name appended to the user's config and
// cache directories. It is the executable's base name, except that dlv
// debug binaries report [pkg.Name] and leading dots are stripped.
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))
		id = debugBinName.ReplaceAllString(id, pkg.Name)

		return leadingDots.ReplaceAllString(id, "")
	},
)

// userDir resolves a per-user base directory, falling back to a dot
// directory under the user's home, and finally to the working directory.
func userDir(base func() (string, error), dotName string) string {
	dir, err := base()
	if err == nil {
		return dir
	}

	dir, err = os.UserHomeDir()
	if err == nil {
		return filepath.Join(dir, dotName)
	}

	dir, err = os.Getwd()
	if err != nil {
		dir = "."
	}

	return dir
}

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserConfigDir, ".config"), basePrefix())
	},
)

// cacheDir returns the cache directory path used for transient files,
// such as interactive history and profiler output.
var cacheDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserCacheDir, ".cache"), basePrefix())
	},
)

// configPath joins the given path elements onto the configuration directory.
//
// With no elements, it is equivalent to calling [configDir].
func configPath(elem ...string) string {
	return filepath.Join(configDir(), filepath.Join(elem...))
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
