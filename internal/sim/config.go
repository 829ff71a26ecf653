package sim

// Window defaults.
const (
	WindowWidth  = 1280
	WindowHeight = 720
	WindowTitle  = "RX-7 Sim"
)

// Particles.
const (
	MaxParticles = 1000
)

// Camera orbit limits.
const (
	MinCamDistance = 2.0
	MaxCamDistance = 14.0
	MinCamPitch    = 0.05
	MaxCamPitch    = 1.35
)

// Drive model.
const (
	// Time-scale ramp rate in units per second: a full stop->drive
	// spin-up takes 1/DriveRampRate seconds.
	DriveRampRate = 0.8
)

// Exhaust emitter defaults.
const (
	// Seconds between spawns at cruise; halved while accelerating.
	SmokeAddTime      = 0.02
	AccelAddTimeScale = 0.5
	AccelSpeedBoost   = 1.5
	BackfireDuration  = 0.5
	BackfireAddTime   = 0.008
)

// Audio.
const (
	SampleRate   = 44100
	ChannelCount = 2
	BitDepth     = 0 // 32-bit float (oto.FormatFloat32LE)

	// Per-call gain step for perspective cross-fades. 0.2 per frame
	// reaches any target within five updates without audible clicks.
	GainStep = 0.2

	// Baseline gain applied to every perspective when no solo is active.
	MixBaselineGain = 0.6
)
