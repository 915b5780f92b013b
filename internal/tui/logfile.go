package tui

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// If NPMFLOW_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.npmflow/logs/npmflow.log
func GetLogFilePath() string {
	if customPath := os.Getenv("NPMFLOW_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "npmflow.log"
	}

	return filepath.Join(homeDir, ".npmflow", "logs", "npmflow.log")
}
