// Package audio wraps microphone capture and speaker playback behind
// small interfaces so the session layer can run against fakes.
package audio

// WAVHeaderSize is the byte length of a canonical PCM WAV header.
const WAVHeaderSize = 44

// DataCallback receives raw 16-bit little-endian PCM as it is captured.
type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

// Context owns the platform audio backend and creates devices from it.
type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	NewPlayback(config CaptureConfig) (PlaybackDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
}

// PlaybackDevice drains a PCM buffer to the default output device.
type PlaybackDevice interface {
	// Play blocks until the buffer has been consumed or Stop is called.
	Play(pcm []byte) error
	Stop()
	Close()
}
