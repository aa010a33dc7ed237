package file

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mensylisir/aymcctl/common"
)

// PathExists checks if a path exists.
// A "not exist" error yields false with no error; any other stat error is returned.
func PathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// IsDir checks if the given path is a directory.
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// RegularFileSize returns the size of a regular file, or false if path does
// not exist or is not a regular file.
func RegularFileSize(path string) (uint64, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if !info.Mode().IsRegular() {
		return 0, false, nil
	}
	return uint64(info.Size()), true, nil
}

// CreateDir creates a directory and all its parents if they don't exist.
func CreateDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("path %s exists but is not a directory", path)
	}
	if os.IsNotExist(err) {
		return os.MkdirAll(path, common.FileMode0755)
	}
	return fmt.Errorf("failed to check directory %s: %w", path, err)
}

// CreateFileDir creates the parent directory of filePath, e.g. ./aa/bb for ./aa/bb/x.txt.
func CreateFileDir(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." || dir == "" {
		return nil
	}
	return CreateDir(dir)
}

// WriteFrom copies r into filePath with the given mode, creating parent
// directories as needed. It returns the number of bytes written.
func WriteFrom(filePath string, r io.Reader, mode os.FileMode) (int64, error) {
	if err := CreateFileDir(filePath); err != nil {
		return 0, fmt.Errorf("failed to create directory for file %s: %w", filePath, err)
	}
	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("failed to close file %s: %w", filePath, err)
	}
	return n, nil
}
