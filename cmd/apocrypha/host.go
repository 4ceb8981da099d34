package main

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultHost = "localhost:9999"

func memoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".apocrypha_host"
	}
	return filepath.Join(home, ".apocrypha_host")
}

// resolveHost returns the address to connect to: an explicit --host
// flag wins and is remembered for next time; otherwise the last
// remembered host is used; otherwise defaultHost.
func resolveHost(flagValue string) (string, error) {
	path := memoryPath()

	if flagValue != "" {
		if err := os.WriteFile(path, []byte(flagValue), 0o644); err != nil {
			return "", err
		}
		return flagValue, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return defaultHost, nil
	}
	host := strings.TrimSpace(string(data))
	if host == "" {
		return defaultHost, nil
	}
	return host, nil
}
