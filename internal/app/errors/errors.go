package errors

import (
	"errors"
)

var (
	ErrFailedToReadConfig  = errors.New("failed to read config file")
	ErrFailedToParseConfig = errors.New("failed to parse config file")
	ErrFailedToReadEnv     = errors.New("failed to read env file")
	ErrInvalidConfig       = errors.New("invalid configuration")

	ErrInvalidPort           = errors.New("invalid port")
	ErrPipeNameRequired      = errors.New("pipe name is required")
	ErrInvalidPipeInstances  = errors.New("pipe instances must be greater than 0")
	ErrInvalidMaxPayload     = errors.New("listener max payload must be greater than 0")
	ErrInvalidListenerBuffer = errors.New("listener buffer must be greater than 0")
	ErrInvalidShutdownGrace  = errors.New("listener shutdown grace must not be negative")
	ErrInvalidTapBuffer      = errors.New("tap buffer must be greater than 0")
	ErrInvalidRelayBuffer    = errors.New("relay buffer must be greater than 0")
	ErrInvalidRelayDelay     = errors.New("relay reconnect delay must be positive and not exceed the max delay")
	ErrInvalidHealthInterval = errors.New("relay health interval must be greater than 0")
	ErrInvalidRelayAttempts  = errors.New("relay max attempts must not be negative")
	ErrInvalidRelayWorkers   = errors.New("relay workers must be greater than 0")

	ErrUnknownPacketType = errors.New("unknown packet type")
	ErrPayloadTooShort   = errors.New("payload too short")
	ErrInvalidLength     = errors.New("invalid field length")
	ErrFrameTooLarge     = errors.New("frame exceeds maximum payload size")
	ErrTruncatedFrame    = errors.New("truncated frame")

	ErrFileTooSmall      = errors.New("file too small to be a packet container")
	ErrInvalidMagic      = errors.New("invalid packet container magic")
	ErrFollowCompressed  = errors.New("cannot follow a compressed container")
	ErrFailedToWriteFile = errors.New("failed to write packet container")
	ErrRecorderClosed    = errors.New("recorder closed")

	ErrInvalidJSON        = errors.New("invalid json message")
	ErrMissingType        = errors.New("message type is required")
	ErrUnknownMessageType = errors.New("unknown message type")

	ErrAlreadyListening      = errors.New("listener already started")
	ErrFailedToListen        = errors.New("failed to listen")
	ErrFailedToCleanupSocket = errors.New("failed to cleanup socket")
	ErrSocketAlreadyInUse    = errors.New("socket already in use")
	ErrNoListeners           = errors.New("no listener is enabled")
	ErrFailedToConnectSocket = errors.New("failed to connect to socket")
	ErrFailedToWriteSocket   = errors.New("failed to write to socket")
	ErrFailedToReadSocket    = errors.New("failed to read from socket")
	ErrFailedToMarshal       = errors.New("failed to marshal message")
	ErrHandshakeFailed       = errors.New("banner handshake failed")
	ErrTapNotFound           = errors.New("no running tap found")
	ErrMultipleTaps          = errors.New("multiple taps running")

	ErrNotConnected       = errors.New("relay target not connected")
	ErrFailedToConnect    = errors.New("failed to connect to relay target")
	ErrFailedToSend       = errors.New("failed to send to relay target")
	ErrInvalidBody        = errors.New("invalid request body")
	ErrForwarderStopped   = errors.New("forwarder stopped")
	ErrMaxRetriesExceeded = errors.New("max reconnect attempts exceeded")
	ErrUnauthorized       = errors.New("invalid or missing relay key")
	ErrEmptyBatch         = errors.New("request contains no messages")
	ErrServerBusy         = errors.New("relay is busy, retry later")

	ErrInvalidPattern = errors.New("invalid filter pattern")

	ErrFailedToInitReporter = errors.New("failed to initialize error reporting")

	ErrUnknownCommand = errors.New("unknown command")
	ErrFileExists     = errors.New("file already exists, use --force to overwrite")
	ErrFailedToRender = errors.New("failed to render config")
	ErrFailedToWrite  = errors.New("failed to write config")
)

var (
	As   = errors.As
	Is   = errors.Is
	Join = errors.Join
	New  = errors.New
)
