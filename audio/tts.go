package audio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TTSPlayer downloads synthesized speech from the backend's audio URL
// and plays it through the default output device. The backend serves
// 16-bit PCM WAV.
type TTSPlayer struct {
	ctx    Context
	client *http.Client
	config CaptureConfig
}

func NewTTSPlayer(ctx Context, sampleRate uint32) *TTSPlayer {
	return &TTSPlayer{
		ctx:    ctx,
		client: &http.Client{Timeout: 30 * time.Second},
		config: CaptureConfig{SampleRate: sampleRate, Channels: 1},
	}
}

func (p *TTSPlayer) Play(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("fetching tts audio: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(data) > WAVHeaderSize {
		data = data[WAVHeaderSize:]
	}

	dev, err := p.ctx.NewPlayback(p.config)
	if err != nil {
		return err
	}
	defer dev.Close()
	return dev.Play(data)
}
