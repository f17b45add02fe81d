package cli

import (
	"fmt"
	"os"

	"github.com/shiftforge/reflow/internal/keyring"
)

// InitCmd initializes the scenario store (creates the database file or
// schema and runs pending migrations).
type InitCmd struct {
	Force bool `help:"Delete the existing store before initializing."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if c.Force {
		path := ctx.Store.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			ok, err := confirm("Delete existing store?", path+" will be removed before reinitializing.")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing store: %w", err)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing store: %w", err)
			}
			fmt.Printf("Deleted existing store at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing store: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized reflow storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}

// MigrateCmd applies pending schema migrations to the scenario store.
type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	fmt.Println("Storage schema is up to date.")
	return nil
}

// DoctorCmd runs health checks against the store and OS keyring.
type DoctorCmd struct{}

func (c *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")

	path := ctx.Store.GetConfigPath()
	fmt.Printf("  store path/DSN: %s\n", path)
	fmt.Printf("  debug logging:  %v\n", ctx.Config.Debug)
	fmt.Printf("  timezone:       %s\n", ctx.Config.Timezone)

	if err := ctx.Store.Load(); err != nil {
		fmt.Printf("  store:          FAIL (%v)\n", err)
	} else {
		fmt.Println("  store:          OK")
	}

	if keyring.IsAvailable() {
		fmt.Println("  OS keyring:     OK")
	} else {
		fmt.Println("  OS keyring:     unavailable")
	}

	return nil
}

// KeyringSetCmd stores the scenario store connection string in the OS keyring.
type KeyringSetCmd struct {
	ConnString string `arg:"" help:"Connection string to store."`
}

func (c *KeyringSetCmd) Run(ctx *Context) error {
	if err := keyring.SetConnectionString(c.ConnString); err != nil {
		return err
	}
	fmt.Println("Connection string stored in OS keyring.")
	return nil
}

// KeyringGetCmd retrieves the stored connection string.
type KeyringGetCmd struct{}

func (c *KeyringGetCmd) Run(ctx *Context) error {
	connStr, err := keyring.GetConnectionString()
	if err != nil {
		return err
	}
	fmt.Println(connStr)
	return nil
}

// KeyringDeleteCmd removes the stored connection string.
type KeyringDeleteCmd struct{}

func (c *KeyringDeleteCmd) Run(ctx *Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		return err
	}
	fmt.Println("Connection string removed from OS keyring.")
	return nil
}

// KeyringStatusCmd reports whether the OS keyring is usable.
type KeyringStatusCmd struct{}

func (c *KeyringStatusCmd) Run(ctx *Context) error {
	if keyring.IsAvailable() {
		fmt.Println("OS keyring is available.")
	} else {
		fmt.Println("OS keyring is not available on this system.")
	}
	return nil
}
