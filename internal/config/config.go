// Package config loads runtime settings through viper: registered defaults,
// HDX_* environment variables and an optional hdx-visualizer.toml.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hdxvis/internal/filesystem"
	"hdxvis/pkg/spec"

	"github.com/spf13/viper"
)

const (
	envPrefix   = "HDX"
	fileName    = spec.AppName
	stateFile   = ".hdx-visualizer-state"
	logFile     = ".hdx-visualizer.log"
	socketFile  = "/tmp/hdx-visualizer.sock"
	libraryName = "Music"
)

// Field is one registered setting.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Env returns the environment variable that overrides the field.
func (f Field) Env() string {
	return envPrefix + "_" + strings.ToUpper(envKeyReplacer.Replace(f.Key))
}

var envKeyReplacer = strings.NewReplacer(".", "_")

// Defaults holds every registered field in registration order.
var Defaults []Field

func register(key string, value any, desc string) {
	for _, f := range Defaults {
		if f.Key == key {
			panic("duplicate config key: " + key)
		}
	}
	Defaults = append(Defaults, Field{Key: key, Value: value, Description: desc})
}

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	register(LibraryPath, filepath.Join(home, libraryName), "Directory scanned for .wav tracks")
	register(ClockInterval, spec.ClockInterval, "Position clock tick interval")
	register(AudioSampleRate, spec.SampleRate, "Speaker sample rate in Hz")
	register(AudioBuffer, spec.SpeakerLatch, "Speaker buffer length")
	register(AudioVolume, 0.0, "Playback gain, base-2 exponent (0 = unchanged)")
	register(ControlSocket, socketFile, "Unix socket for remote control, empty to disable")
	register(StatePath, filepath.Join(home, stateFile), "File holding the last track and position")
	register(StateRestore, true, "Reopen the last track at its saved position on startup")
	register(LogsWrite, false, "Write logs to logs.path instead of stderr")
	register(LogsPath, filepath.Join(home, logFile), "Log file")
	register(LogsLevel, "warn", "panic, fatal, error, warn, info, debug, trace")
	register(LogsJSON, false, "Use the JSON log formatter")
}

// Setup registers defaults and env bindings, then reads the config file if one exists.
func Setup(configDirs ...string) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	for _, dir := range configDirs {
		viper.AddConfigPath(dir)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(envKeyReplacer)

	viper.SetTypeByDefaultValue(true)
	for _, f := range Defaults {
		viper.SetDefault(f.Key, f.Value)
		if err := viper.BindEnv(f.Key); err != nil {
			return err
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// ClockIntervalValue returns the clock interval, falling back to the default
// when the configured value is not positive.
func ClockIntervalValue() time.Duration {
	d := viper.GetDuration(ClockInterval)
	if d <= 0 {
		return spec.ClockInterval
	}
	return d
}
