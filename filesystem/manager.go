package filesystem

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Manager handles file system operations for exported reports
type Manager struct {
	// opener builds the command that shows a file in the desktop viewer
	opener func(path string) *exec.Cmd
}

// NewManager creates a new filesystem manager
func NewManager() *Manager {
	return &Manager{opener: openCommand}
}

func openCommand(path string) *exec.Cmd {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	case "darwin":
		return exec.Command("open", path)
	default: // "linux", "freebsd", "openbsd", "netbsd"
		return exec.Command("xdg-open", path)
	}
}

// Open shows path in the platform's default application without waiting
// for it to exit
func (f *Manager) Open(path string) error {
	if !f.FileExists(path) {
		return fmt.Errorf("cannot open %s: file does not exist", path)
	}
	return f.opener(path).Start()
}

// CreateDirectory creates a directory if it doesn't exist
func (f *Manager) CreateDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// DirectoryExists checks if a directory exists
func (f *Manager) DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// FileExists checks if a regular file exists
func (f *Manager) FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// WriteFile writes data to path, creating missing parent directories. The
// data is written to a temporary file in the same directory and renamed
// into place.
func (f *Manager) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := f.CreateDirectory(dir); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
