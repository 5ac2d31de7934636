package config

import (
	"fmt"
	"io/fs"
)

// PermissionError is returned when the config file cannot be read or
// written. It matches fs.ErrPermission.
type PermissionError struct {
	Path    string
	Op      string // "read" or "write"
	Fix     string // Suggested fix command
	Details string // Additional context
}

func (e *PermissionError) Error() string {
	msg := fmt.Sprintf("permission denied (cannot %s config): %s\n", e.Op, e.Path)
	if e.Details != "" {
		msg += e.Details + "\n"
	}
	msg += "💡 Fix: " + e.Fix
	return msg
}

func (e *PermissionError) Is(target error) bool {
	return target == fs.ErrPermission
}

// ConfigNotFoundError is returned for a missing config file. It matches
// fs.ErrNotExist.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n\n💡 %s", e.Path, e.Hint)
}

func (e *ConfigNotFoundError) Is(target error) bool {
	return target == fs.ErrNotExist
}

// InvalidConfigError is returned when the file does not parse or a value
// is out of range. Err holds the underlying parse or validation error.
type InvalidConfigError struct {
	Path    string
	Message string
	Hint    string
	Err     error
}

func (e *InvalidConfigError) Error() string {
	msg := fmt.Sprintf("invalid config: %s\n", e.Path)
	if e.Message != "" {
		msg += e.Message + "\n"
	}
	if e.Hint != "" {
		msg += "💡 " + e.Hint
	}
	return msg
}

func (e *InvalidConfigError) Unwrap() error {
	return e.Err
}
