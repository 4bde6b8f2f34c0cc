package config

import "time"

// app constants
const (
	AppName        = "inspectd"
	AppDescription = "SmartInspect log receiver, recorder and relay"
	Version        = "0.1.0"

	ConfigFile = "inspectd.yaml"
	EnvFile    = ".env"
	EnvPrefix  = "INSPECTD"
)

// logging constants
const (
	LogLevel  = "info"
	LogFormat = "console"
)

// tcp listener constants
const (
	TCPPort = 4228
	Banner  = "SmartInspect inspectd v" + Version
)

// pipe listener constants
const (
	PipeName      = "smartinspect"
	PipeDir       = "/tmp"
	PipeSuffix    = ".sock"
	PipeInstances = 10

	PipeDialTimeout = 100 * time.Millisecond
	PipePermissions = 0o666

	AcceptBackoffInitial = 100 * time.Millisecond
	AcceptBackoffMax     = 30 * time.Second
	ErrorReportCooldown  = 30 * time.Second
)

// websocket listener constants
const (
	WebSocketPort = 4229

	WebSocketCloseTimeout = time.Second
)

// shared listener constants
const (
	ShutdownGrace  = 5 * time.Second
	MaxPayloadSize = 100 * 1024 * 1024
	BusBuffer      = 1024
)

// tap constants
const (
	TapDir    = "/tmp"
	TapPrefix = "inspectd-"
	TapSuffix = ".sock"
	TapName   = "default"
	TapBuffer = 100
)

// relay constants
const (
	RelayAddress = ":8080"
	RelayTarget  = "ws://localhost:4229"
	RelayBuffer  = 10000
	RelayWorkers = 32

	ReconnectDelay    = 5 * time.Second
	MaxReconnectDelay = 30 * time.Second
	HealthInterval    = time.Second

	RelayWriteTimeout = 5 * time.Second
	RelayDialTimeout  = 5 * time.Second
	MaxRequestBody    = 10 * 1024 * 1024
)

// container constants
const (
	RecordFlushInterval = time.Second
)

// error reporting constants
const (
	ReportFlushTimeout = 2 * time.Second
)
