package manifest

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/mung"

	"github.com/ardnew/argot/pkg"
)

// FileName is the manifest file name [Find] looks for by default.
const FileName = "argot.yaml"

// PathEnv returns the environment variable holding extra manifest
// directories, such as ARGOT_PATH.
func PathEnv() string { return pkg.EnvPrefix() + "_PATH" }

// SearchPath returns the directories [Find] searches, in order: the
// working directory, the configuration directory, then each entry of
// [PathEnv]. Blank and repeated entries are dropped.
func SearchPath() []string {
	path := mung.Make(
		mung.WithSubjectItems(os.Getenv(PathEnv())),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(pkg.ConfigDir(), "."),
		mung.WithFilter(notBlank),
	)

	return slices.Collect(path.Filtered())
}

func notBlank(dir string) bool { return strings.TrimSpace(dir) != "" }

// Find locates a manifest. A name containing a path separator is checked
// as given; otherwise each [SearchPath] directory is tried in order. An
// empty name means [FileName].
func Find(name string) (string, error) {
	if name == "" {
		name = FileName
	}

	if filepath.Base(name) != name {
		if isFile(name) {
			return name, nil
		}

		return "", ErrNotFound.Wrapf("%s", name)
	}

	for _, dir := range SearchPath() {
		if path := filepath.Join(dir, name); isFile(path) {
			return path, nil
		}
	}

	return "", ErrNotFound.Wrapf("%s", name)
}

func isFile(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}
