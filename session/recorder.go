package session

import (
	"encoding/binary"
	"fmt"

	"nativo/audio"
	"nativo/encoder"
)

// micRecorder streams capture callbacks into an encoder. One instance
// per recording cycle.
type micRecorder struct {
	capture audio.CaptureDevice
	enc     encoder.Encoder
}

// NewMicRecorderFactory builds recorders on the given audio backend,
// encoding to the configured format.
func NewMicRecorderFactory(ctx audio.Context, format string) RecorderFactory {
	return func() (Recorder, error) {
		enc, err := encoder.New(format)
		if err != nil {
			return nil, err
		}
		capture, err := ctx.NewCapture(nil, audio.CaptureConfig{
			SampleRate: encoder.SampleRate,
			Channels:   encoder.Channels,
		})
		if err != nil {
			return nil, fmt.Errorf("opening capture device: %w", err)
		}
		r := &micRecorder{capture: capture, enc: enc}
		capture.SetCallback(r.onData)
		return r, nil
	}
}

func (r *micRecorder) onData(data []byte, frameCount uint32) {
	block := make([]int16, frameCount)
	for i := range block {
		block[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	if err := r.enc.EncodeBlock(block); err != nil {
		// Dropped block; the stream stays decodable.
		return
	}
}

func (r *micRecorder) Start() error {
	return r.capture.Start()
}

func (r *micRecorder) Stop() ([]byte, string, uint64, error) {
	r.capture.Stop()
	r.capture.ClearCallback()
	r.capture.Close()
	if err := r.enc.Close(); err != nil {
		return nil, r.enc.Format(), 0, err
	}
	return r.enc.Bytes(), r.enc.Format(), r.enc.TotalFrames(), nil
}
