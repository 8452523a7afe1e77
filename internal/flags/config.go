package flags

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const (
	// Env vars
	EnvVarConfigFile = "FORCEMCP_CONFIG_FILE"
	EnvVarLogPath    = "FORCEMCP_LOG_PATH"
	EnvVarLogLevel   = "FORCEMCP_LOG_LEVEL"
	EnvVarSFBinary   = "FORCEMCP_SF_BINARY"

	// Defaults
	DefaultConfigFile = ".forcemcp.toml"
	DefaultLogPath    = ""
	DefaultLogLevel   = "info"

	// Flag names
	FlagNameConfigFile = "config-file"
	FlagNameLogPath    = "log-path"
	FlagNameLogLevel   = "log-level"
)

var (
	ConfigFile string
	LogPath    string
	LogLevel   string
)

func InitFlags(fs *pflag.FlagSet) {
	initConfigFile(fs)
	initLogger(fs)
}

func initConfigFile(fs *pflag.FlagSet) {
	if ConfigFile == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarConfigFile)); env != "" {
			ConfigFile = env
		} else {
			ConfigFile = DefaultConfigFile
		}
	}
	fs.StringVar(&ConfigFile, FlagNameConfigFile, ConfigFile, "path to config file")
}

// SFBinaryOrDefault returns the Salesforce CLI binary commands should run
// when the configuration file does not name one: the FORCEMCP_SF_BINARY
// environment variable when set, otherwise the given fallback.
func SFBinaryOrDefault(fallback string) string {
	if env := strings.TrimSpace(os.Getenv(EnvVarSFBinary)); env != "" {
		return env
	}

	return fallback
}

func initLogger(fs *pflag.FlagSet) {
	if LogPath == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarLogPath)); env != "" {
			LogPath = env
		} else {
			LogPath = DefaultLogPath
		}
	}
	fs.StringVar(&LogPath, FlagNameLogPath, LogPath, "path to generated log file")

	if LogLevel == "" {
		if env := strings.TrimSpace(os.Getenv(EnvVarLogLevel)); env != "" {
			LogLevel = strings.ToLower(env)
		} else {
			LogLevel = DefaultLogLevel
		}
	}
	fs.StringVar(&LogLevel, FlagNameLogLevel, LogLevel, "log level for forcemcp logs")
}
