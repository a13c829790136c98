package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	serverURLEnvVar = "PRISM_SERVER_URL"
	stateDirEnvVar  = "PRISM_STATE_DIR"
	logFileEnvVar   = "PRISM_LOG_FILE"

	defaultServerURL = "http://localhost:8000"
	stateSubdir      = "prism"

	credentialFile = "credential.json"
	transcriptFile = "transcript.json"
	logFileName    = "prism.log"
)

// Config carries the process-level settings resolved once at startup.
type Config struct {
	ServerURL string
	StateDir  string
	LogFile   string
}

// Load resolves settings from a .env file (when present) and the
// environment, and ensures the state directory exists.
func Load() (Config, error) {
	// Missing .env is the normal case; the real environment still applies.
	_ = godotenv.Load()

	stateDir := getEnv(stateDirEnvVar, defaultStateDir())
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return Config{}, err
	}

	return Config{
		ServerURL: strings.TrimRight(getEnv(serverURLEnvVar, defaultServerURL), "/"),
		StateDir:  stateDir,
		LogFile:   getEnv(logFileEnvVar, filepath.Join(stateDir, logFileName)),
	}, nil
}

// CredentialPath is where the saved bearer token lives between runs.
func (c Config) CredentialPath() string {
	return filepath.Join(c.StateDir, credentialFile)
}

// TranscriptPath is the default destination for exported conversations.
func (c Config) TranscriptPath() string {
	return filepath.Join(c.StateDir, transcriptFile)
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), stateSubdir)
	}
	return filepath.Join(base, stateSubdir)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
