package constants

import "time"

const (
	AppName            = "reflow"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/reflow/reflow.db"
	Version            = "v0.1.0"

	// DateFormat is a date layout (YYYY-MM-DD).
	DateFormat = "2006-01-02"

	// TimeFormat is a time-of-day layout (HH:MM).
	TimeFormat = "15:04"

	// MaxCursorIterations bounds the calendar-walking loops in the reflow
	// engine (findNextAvailableStart, findEndDate) so a malformed work
	// center (no shifts at all, or an unreachable slot) cannot make them
	// spin forever. When the cap is hit the loop returns its cursor as it
	// stands; no error is reported.
	MaxCursorIterations = 10_000

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "reflow-"
	BackupFileSuffix = ".db"

	// Backup reason tags, recorded in the backup filename so `backup list`
	// shows what triggered each snapshot.
	BackupReasonManual     = "manual"
	BackupReasonAutomatic  = "auto"
	BackupReasonPreRestore = "prerestore"

	// Notify constants
	NotifyMaxRetries = 3
	NotifyRetryDelay = 100 * time.Millisecond

	// ReflowRunStatus constants
	RunStatusClean      = "clean"
	RunStatusRepaired   = "repaired"
	RunStatusNotFixable = "not_fixable"

	// Notifier constants: the CLI notifies a locally running shop-floor
	// agent process over a loopback webhook, the same way the tray app
	// handshake works - a lockfile names the port, pid, and shared secret.
	NotifierLockfileName   = "reflow-agent.lock"
	NotificationDurationMs = 5000
	AgentProcessName       = "reflow-agent"
)
