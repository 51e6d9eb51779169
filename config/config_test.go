package config

import (
	"testing"
)

func TestLoadDefaultOptions(t *testing.T) {
	opts := GetDefaultOptions()

	t.Logf(`Options
		Version: %s
		Host: %s
		Port: %d
		DSN: %s
		LogLevel: %s
		Data: %s
		`, opts.Version, opts.Host, opts.Port, opts.DSN, opts.LogLevel, opts.Data)

	if opts.Port != defaultPort {
		t.Errorf("Port not set")
	}
	if opts.ViewRetentionDays != defaultViewRetentionDays {
		t.Errorf("ViewRetentionDays not set")
	}
	if opts.WorkerPoolSize != defaultWorkerPoolSize {
		t.Errorf("WorkerPoolSize not set")
	}
}

func TestLoadConfigFile(t *testing.T) {
	GetDefaultOptions()
	opts, err := ParseFile("config_test.toml")
	if err != nil {
		t.Fatalf("Error loading config: %s", err)
	}
	t.Logf(`Options
		Host: %s
		Port: %d
		LogLevel: %s
		LogFile: %s
		`, opts.Host, opts.Port, opts.LogLevel, opts.LogFile)
	if opts.Host != "127.0.0.1" {
		t.Errorf("Host not set")
	}
	if opts.Port != 2333 {
		t.Errorf("Port not set")
	}
	if opts.LogFile != "test.log" {
		t.Errorf("LogFile not set")
	}
	if opts.LogLevel != "debug" {
		t.Errorf("LogLevel not set")
	}
	if opts.ViewRetentionDays != 30 {
		t.Errorf("ViewRetentionDays not set")
	}
}

func TestCheckSupportedCoverType(t *testing.T) {
	GetDefaultOptions()
	if !CheckSupportedCoverType("image/jpeg") {
		t.Errorf("jpeg should be supported")
	}
	if CheckSupportedCoverType("application/zip") {
		t.Errorf("zip should not be supported")
	}
}
