package cli

import (
	"fmt"

	"github.com/shiftforge/reflow/internal/backup"
	"github.com/shiftforge/reflow/internal/constants"
)

// BackupCreateCmd snapshots the current store.
type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	path, err := mgr.CreateBackup(constants.BackupReasonManual)
	if err != nil {
		return err
	}
	fmt.Printf("Created backup: %s\n", path)
	return nil
}

// BackupListCmd lists available backups, newest first.
type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *Context) error {
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	infos, err := mgr.ListBackups()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No backups found.")
		return nil
	}
	for _, info := range infos {
		fmt.Printf("%s  %-10s %8d bytes  %s\n", info.Timestamp.Format("2006-01-02 15:04:05"), info.Reason, info.Size, info.Path)
	}
	return nil
}

// BackupRestoreCmd restores the store from a backup file.
type BackupRestoreCmd struct {
	Path string `arg:"" help:"Path to the backup file." type:"existingfile"`
}

func (c *BackupRestoreCmd) Run(ctx *Context) error {
	ok, err := confirm("Restore store from backup?", "This overwrites the current store at "+ctx.Store.GetConfigPath()+".")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Aborted.")
		return nil
	}

	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	if err := mgr.RestoreBackup(c.Path); err != nil {
		return err
	}
	fmt.Printf("Restored store from: %s\n", c.Path)
	return nil
}
