package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/config"
	"github.com/nishizumi-maho/nishizumi-setups-sync/pkg/errors"
)

// Mocked for unit testing.
var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
	exit             = os.Exit
)

// configPathKey overrides the default config file location.
const configPathKey = "SETUPS_SYNC_CONFIG"

// ParseConfig loads the config from the default path, or from the path in
// the SETUPS_SYNC_CONFIG environment variable when set. A missing file is
// turned into a friendly pointer at `config init`.
func ParseConfig() (config.Config, error) {
	cfg, err := config.Parse(os.Getenv(configPathKey))
	if err != nil {
		if _, ok := errors.RootCause(err).(errors.FileNotFound); ok {
			return config.Config{}, errors.NewFriendlyError(
				"No configuration found.\n" +
					"Run `setups-sync config init` to create one.")
		}
		return config.Config{}, err
	}
	return cfg, nil
}

// SaveConfig persists the config to the same location ParseConfig reads.
func SaveConfig(cfg config.Config) error {
	return config.Write(cfg, os.Getenv(configPathKey))
}

// SetupFileLogging tees log output into the configured log file, in
// addition to stderr. Failing to open the file only costs the file sink.
func SetupFileLogging(cfg config.Config) {
	if !cfg.EnableLogging || cfg.LogFile == "" {
		return
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		log.WithError(err).Warn("Failed to open log file")
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
}

// HandleFatalError prints the user-facing representation of `err` and exits.
func HandleFatalError(err error) {
	fmt.Fprintln(os.Stderr, errors.GetPrintableMessage(err))
	exit(1)
}

// HandlePanic recovers from an unexpected crash, prints the stack, and
// exits non-zero. It should be deferred at the top of main.
func HandlePanic() {
	if r := recover(); r != nil {
		log.WithField("panic", r).Error("Unexpected crash")
		fmt.Fprintf(os.Stderr, "%s\n", debug.Stack())
		exit(1)
	}
}

// PromptString asks the user a free-form question. The second return is
// false when the user submits an empty answer or input is closed.
func PromptString(question string) (string, bool) {
	fmt.Fprintf(stdout, "%s ", question)

	scanner := bufio.NewScanner(stdin)
	if !scanner.Scan() {
		return "", false
	}

	answer := strings.TrimSpace(scanner.Text())
	return answer, answer != ""
}

// PromptYesOrNo asks the user a yes or no question and keeps asking until
// it gets an intelligible answer.
func PromptYesOrNo(question string) (bool, error) {
	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprintf(stdout, "%s (y/n) ", question)
		if !scanner.Scan() {
			return false, errors.New("unexpected end of input")
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}
