package config

import "github.com/yomu-app/yomu/version"

const (
	defaultLogFile           = "yomu.log"
	defaultLogLevel          = "info"
	defaultLogFileMaxSize    = 20
	defaultLogFileMaxBackups = 3
	defaultLogFileMaxAge     = 28
	defaultLogCompress       = false
	defaultPort              = 8080
	defaultHost              = "0.0.0.0"
	defaultData              = "/var/opt/yomu"
	defaultDSN               = defaultData + "/yomu.db"
	defaultWorkerPoolSize    = 4
	defaultMaxUploadSize     = 10
	defaultViewRetentionDays = 180
	defaultRetentionSweep    = 60
)

var Opts *Options

// Options is unmarshalled by viper, hence the mapstructure tags.
// see: https://pkg.go.dev/github.com/mitchellh/mapstructure#hdr-Field_Tags
type Options struct {
	// LogFile is the file to write logs to
	LogFile string `mapstructure:"log_file"`
	// LogLevel is the level of logging to show
	LogLevel string `mapstructure:"log_level"`
	// LogFileMaxSize is the maximum size of the log file before it is rotated
	LogFileMaxSize int `mapstructure:"log_file_max_size"`
	// LogFileMaxBackups is the maximum number of log files to keep
	LogFileMaxBackups int `mapstructure:"log_file_max_backups"`
	// LogFileMaxAge is the maximum number of days to keep a log file
	LogFileMaxAge int `mapstructure:"log_file_max_age"`
	// LogCompress is whether or not to compress the log files
	LogCompress bool `mapstructure:"log_compress"`
	// DSN is the path of the sqlite database
	DSN string `mapstructure:"dsn_uri"`
	// Port is the port to listen on
	Port int `mapstructure:"port"`
	// Host is the host to listen on
	Host string `mapstructure:"host"`
	// Data is the directory to store data (database, covers)
	Data    string `mapstructure:"data"`
	Version string `mapstructure:"version"`
	// WorkerPoolSize is the number of view-recording workers
	WorkerPoolSize int `mapstructure:"worker_pool_size"`
	// MaxUploadSize is the maximum size of a cover upload, in MiB
	MaxUploadSize int64 `mapstructure:"max_upload_size"`
	// SupportedCoverTypes is the accepted cover image MIME types
	SupportedCoverTypes []string `mapstructure:"supported_cover_types"`
	// ViewRetentionDays is how long view events are kept before pruning
	ViewRetentionDays int `mapstructure:"view_retention_days"`
	// RetentionSweepInterval is the pruning interval, in minutes
	RetentionSweepInterval int `mapstructure:"retention_sweep_interval"`
}

func GetDefaultOptions() *Options {
	Opts = &Options{
		LogFile:                defaultLogFile,
		LogLevel:               defaultLogLevel,
		LogFileMaxSize:         defaultLogFileMaxSize,
		LogFileMaxBackups:      defaultLogFileMaxBackups,
		LogFileMaxAge:          defaultLogFileMaxAge,
		LogCompress:            defaultLogCompress,
		DSN:                    defaultDSN,
		Port:                   defaultPort,
		Host:                   defaultHost,
		Data:                   defaultData,
		Version:                version.GetCurrentVersion(),
		WorkerPoolSize:         defaultWorkerPoolSize,
		MaxUploadSize:          defaultMaxUploadSize,
		SupportedCoverTypes:    []string{"image/jpeg", "image/png", "image/webp"},
		ViewRetentionDays:      defaultViewRetentionDays,
		RetentionSweepInterval: defaultRetentionSweep,
	}
	return Opts
}

// CheckSupportedCoverType checks if the uploaded cover MIME type is accepted.
func CheckSupportedCoverType(fileType string) bool {
	if Opts == nil || len(Opts.SupportedCoverTypes) == 0 {
		return false
	}

	for _, t := range Opts.SupportedCoverTypes {
		if t == fileType {
			return true
		}
	}

	return false
}
