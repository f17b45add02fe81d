// Package notifier delivers reflow run outcomes to a locally running
// shop-floor agent process over a loopback webhook. The agent's lockfile
// names the port and shared secret; the process table confirms the PID
// in the lockfile is actually the agent before anything is sent to it.
package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/shiftforge/reflow/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// Notifier sends reflow run outcomes to the shop-floor agent.
type Notifier struct{}

// Payload describes a completed reflow run for the agent to relay.
type Payload struct {
	ScenarioName string `json:"scenario_name"`
	Status       string `json:"status"` // constants.RunStatus*
	ChangeCount  int    `json:"change_count"`
	Summary      string `json:"summary"`
	DurationMs   uint32 `json:"duration_ms"`
}

func New() *Notifier {
	return &Notifier{}
}

// Notify posts payload to the running agent. It returns an error if no
// agent process can be found and validated; callers treat that as
// non-fatal (the reflow run itself already completed).
func (n *Notifier) Notify(payload Payload) error {
	configDir, err := agentConfigDir()
	if err != nil {
		return err
	}

	port, secret, err := findAndValidateAgent(filepath.Join(configDir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}

	payload.DurationMs = constants.NotificationDurationMs
	return sendNotification(port, secret, payload)
}

func agentConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(configDir, constants.AppName, "agent"), nil
}

func findAndValidateAgent(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", errors.New("reflow-agent is not running")
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port := strings.TrimSpace(parts[0])
	if port == "" {
		return "", "", errors.New("port in lockfile is empty")
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("invalid port %q in lockfile", port)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", errors.New("reflow-agent process not running")
	}
	if !strings.HasPrefix(process.Executable(), constants.AgentProcessName) {
		return "", "", fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.AgentProcessName, process.Executable())
	}

	return port, secret, nil
}

func sendNotification(port, secret string, payload Payload) error {
	url := fmt.Sprintf("http://127.0.0.1:%s", port)

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Reflow-Secret", secret)

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	respBody, _ := io.ReadAll(res.Body)
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(respBody))
}
