package spec

import "time"

const (
	// === IDENTITY & VERSIONING ===
	AppName      = "hdx-visualizer"
	VersionMajor = 1
	VersionMinor = 0

	// === ENGINE SPECS ===
	SampleRate   = 48000
	Channels     = 2
	SpeakerLatch = 100 * time.Millisecond // speaker buffer length

	// === POSITION CLOCK ===
	ClockInterval = 1000 * time.Millisecond

	// === CAPTURE LIMITS ===
	// Capture sizes are powers of two, rates are in milliHertz.
	CaptureSizeMin = 128
	CaptureSizeMax = 1024
	CaptureRateMax = 20000

	// Unsigned 8-bit waveform samples are centred here.
	WaveformCenter = 128

	// === LIBRARY ===
	TrackExt = ".wav"
)

// Control socket verbs.
const (
	CmdPing    = "PING"
	CmdWhoami  = "WHOAMI"
	CmdAbout   = "ABOUT"
	CmdStatus  = "STATUS"
	CmdList    = "LIST"
	CmdOpen    = "OPEN"
	CmdPlay    = "PLAY"
	CmdPause   = "PAUSE"
	CmdResume  = "RESUME"
	CmdSeek    = "SEEK"
	CmdRestart = "RESTART"
	CmdStop    = "STOP"
)

// Control socket error codes, sent as "ERR <CODE>".
const (
	ErrArg           = "ARG"
	ErrUnknown       = "UNKNOWN"
	ErrNoTrack       = "NO_TRACK"
	ErrTrackNotFound = "TRACK_NOT_FOUND"
	ErrLoadFailed    = "LOAD_FAILED"
	ErrPlayback      = "PLAYBACK"
	ErrControlLocked = "CONTROL_LOCKED"
	ErrInternal      = "INTERNAL"
)
