// Package cli implements the reflow command surface: scenario I/O,
// verification, reflow runs, storage lifecycle, backups, and OS keyring
// credential management.
package cli

import (
	"fmt"
	"os"

	"github.com/shiftforge/reflow/internal/backup"
	"github.com/shiftforge/reflow/internal/config"
	"github.com/shiftforge/reflow/internal/constants"
	"github.com/shiftforge/reflow/internal/storage"
)

// Context carries the resolved storage provider and configuration into
// every command.
type Context struct {
	Store  storage.Provider
	Config config.Config
}

// PerformAutomaticBackup creates a backup and swallows any failure, so a
// backup hiccup never blocks the command the operator actually ran.
func (c *Context) PerformAutomaticBackup() {
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(constants.BackupReasonAutomatic); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: automatic backup failed: %v\n", err)
	}
}
