package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// logTimeLayout sorts lexically in chronological order
const logTimeLayout = "2006-01-02T15-04-05"

// SetupLogFile opens <dir>/<service>-<timestamp>.log and prunes that
// service's older logs down to maxFiles. Logs of other services sharing dir
// are left alone. The caller closes the file.
func SetupLogFile(dir, service string, maxFiles int) (*os.File, error) {
	if service == "" {
		return nil, fmt.Errorf("log file: service name is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(dir, fmt.Sprintf("%s-%s.log", service, time.Now().Format(logTimeLayout)))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	if err := pruneLogs(dir, service, maxFiles); err != nil {
		// Not fatal: the new file is usable.
		fmt.Fprintf(os.Stderr, "warning: prune %s logs: %v\n", service, err)
	}
	return f, nil
}

// pruneLogs keeps the newest maxFiles logs of service. maxFiles < 1 keeps all.
func pruneLogs(dir, service string, maxFiles int) error {
	if maxFiles < 1 {
		return nil
	}

	logs, err := filepath.Glob(filepath.Join(dir, service+"-*.log"))
	if err != nil {
		return err
	}
	if len(logs) <= maxFiles {
		return nil
	}

	slices.Sort(logs)
	for _, old := range logs[:len(logs)-maxFiles] {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("remove %s: %w", old, err)
		}
	}
	return nil
}
