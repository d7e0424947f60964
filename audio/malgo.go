package audio

import (
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:   hex.EncodeToString(d.ID[:]),
			Name: d.Name(),
		})
	}
	return result, nil
}

func (m *malgoContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	if device != nil {
		idBytes, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device ID: %w", err)
		}
		var devID malgo.DeviceID
		copy(devID[:], idBytes)
		deviceConfig.Capture.DeviceID = devID.Pointer()
	}

	capture := &malgoCapture{}
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, frameCount uint32) {
			capture.mu.Lock()
			cb := capture.cb
			capture.mu.Unlock()
			if cb != nil {
				cb(data, frameCount)
			}
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, err
	}
	capture.device = dev
	return capture, nil
}

func (m *malgoContext) NewPlayback(config CaptureConfig) (PlaybackDevice, error) {
	return &malgoPlayback{ctx: m.ctx, config: config}, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoCapture struct {
	device *malgo.Device

	mu sync.Mutex
	cb DataCallback
}

func (c *malgoCapture) Start() error {
	return c.device.Start()
}

func (c *malgoCapture) Stop() {
	c.device.Stop()
}

func (c *malgoCapture) Close() {
	c.device.Uninit()
}

func (c *malgoCapture) SetCallback(cb DataCallback) {
	c.mu.Lock()
	c.cb = cb
	c.mu.Unlock()
}

func (c *malgoCapture) ClearCallback() {
	c.mu.Lock()
	c.cb = nil
	c.mu.Unlock()
}

// malgoPlayback initializes a fresh playback device per Play call. The
// device lifetime matches the buffer, which keeps state trivial.
type malgoPlayback struct {
	ctx    *malgo.AllocatedContext
	config CaptureConfig

	mu      sync.Mutex
	stopped chan struct{}
}

func (p *malgoPlayback) Play(pcm []byte) error {
	p.mu.Lock()
	p.stopped = make(chan struct{})
	stopped := p.stopped
	p.mu.Unlock()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = p.config.Channels
	deviceConfig.SampleRate = p.config.SampleRate

	done := make(chan struct{})
	var once sync.Once
	pos := 0
	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			n := copy(out, pcm[pos:])
			pos += n
			if pos >= len(pcm) {
				once.Do(func() { close(done) })
			}
		},
	}

	dev, err := malgo.InitDevice(p.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return err
	}
	defer dev.Uninit()

	if err := dev.Start(); err != nil {
		return err
	}
	select {
	case <-done:
	case <-stopped:
	}
	dev.Stop()
	return nil
}

func (p *malgoPlayback) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped != nil {
		select {
		case <-p.stopped:
		default:
			close(p.stopped)
		}
	}
}

func (p *malgoPlayback) Close() {}
