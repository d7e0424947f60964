// Package encoder turns captured PCM into an upload-ready container,
// either WAV or FLAC depending on configuration.
package encoder

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
	Format() string // file extension, "wav" or "flac"
}

// New returns an encoder for the given format, defaulting to WAV.
func New(format string) (Encoder, error) {
	if format == "flac" {
		return NewFlac()
	}
	return NewWav(), nil
}

// DurationSec converts a frame count to whole seconds, rounding up so
// a fraction of a second still bills as one.
func DurationSec(frames uint64) int {
	return int((frames + SampleRate - 1) / SampleRate)
}
