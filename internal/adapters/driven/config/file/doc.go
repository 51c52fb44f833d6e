// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with change watching
//
// LoadSettings turns a ConfigStore plus TASKDASH_* environment variables
// into domain.Settings.
package file
