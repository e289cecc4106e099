package config

// Configuration keys. Environment names are derived as HDX_<KEY> with "." -> "_".
const (
	LibraryPath = "library.path"

	ClockInterval = "clock.interval"

	AudioSampleRate = "audio.sample_rate"
	AudioBuffer     = "audio.buffer"
	AudioVolume     = "audio.volume"

	ControlSocket = "control.socket"

	StatePath    = "state.path"
	StateRestore = "state.restore"

	LogsWrite = "logs.write"
	LogsPath  = "logs.path"
	LogsLevel = "logs.level"
	LogsJSON  = "logs.json"
)
