package utils

import (
	"os"
	"path/filepath"
)

func Exists(path string) (isDir bool, exists bool, err error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return info.IsDir(), true, nil
}

// SiblingPath returns a path in the same directory as path with the given base name.
func SiblingPath(path, base string) string {
	return filepath.Join(filepath.Dir(path), base)
}

// SameFile reports whether both paths name the same existing file, following
// symbolic links and hard links. A missing path never matches.
func SameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}
