package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/morozRed/bit/internal/ignore"
	"github.com/morozRed/bit/internal/parser"
)

// HashFile returns a short content hash of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

// ScanFiles lists every file under rootPath that a registered parser handles
// and the matcher keeps, as sorted slash-separated relative paths.
func ScanFiles(rootPath string, registry *parser.Registry, matcher *ignore.Matcher) ([]string, error) {
	files := make([]string, 0)
	err := walkSupported(rootPath, registry, matcher, func(relPath, _ string) error {
		files = append(files, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ScanFileHashes walks rootPath and hashes every file a registered parser
// handles. Keys are slash-separated paths relative to rootPath.
func ScanFileHashes(rootPath string, registry *parser.Registry, matcher *ignore.Matcher) (map[string]string, error) {
	hashes := make(map[string]string)
	err := walkSupported(rootPath, registry, matcher, func(relPath, path string) error {
		hash, err := HashFile(path)
		if err != nil {
			return err
		}
		hashes[relPath] = hash
		return nil
	})
	return hashes, err
}

func walkSupported(rootPath string, registry *parser.Registry, matcher *ignore.Matcher, visit func(relPath, path string) error) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		relPath, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if matcher.ShouldIgnore(relPath, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() || !registry.Supports(path) {
			return nil
		}
		return visit(relPath, path)
	})
}
