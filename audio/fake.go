package audio

import "sync"

// FakeContext hands out scripted capture devices. PCM given to the
// context is replayed through the callback when capture starts.
type FakeContext struct {
	PCM []byte

	mu        sync.Mutex
	captures  []*FakeCapture
	playbacks []*FakePlayback
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "00", Name: "fake mic"}}, nil
}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	c := &FakeCapture{pcm: f.PCM}
	f.mu.Lock()
	f.captures = append(f.captures, c)
	f.mu.Unlock()
	return c, nil
}

func (f *FakeContext) NewPlayback(_ CaptureConfig) (PlaybackDevice, error) {
	p := &FakePlayback{}
	f.mu.Lock()
	f.playbacks = append(f.playbacks, p)
	f.mu.Unlock()
	return p, nil
}

func (f *FakeContext) Close() {}

// Played returns every buffer handed to fake playback devices.
func (f *FakeContext) Played() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all [][]byte
	for _, p := range f.playbacks {
		all = append(all, p.Buffers()...)
	}
	return all
}

type FakeCapture struct {
	pcm []byte

	mu      sync.Mutex
	cb      DataCallback
	started bool
	stops   int
}

func (c *FakeCapture) SetCallback(cb DataCallback) {
	c.mu.Lock()
	c.cb = cb
	c.mu.Unlock()
}

func (c *FakeCapture) ClearCallback() {
	c.mu.Lock()
	c.cb = nil
	c.mu.Unlock()
}

// Start feeds the scripted PCM synchronously in 1024-frame chunks.
// Tests read the encoded output immediately after, no goroutine races.
func (c *FakeCapture) Start() error {
	c.mu.Lock()
	cb := c.cb
	c.started = true
	c.mu.Unlock()

	if cb == nil {
		return nil
	}
	const chunkBytes = 1024 * 2 // 16-bit mono frames
	for pos := 0; pos < len(c.pcm); {
		end := min(pos+chunkBytes, len(c.pcm))
		chunk := make([]byte, end-pos)
		copy(chunk, c.pcm[pos:end])
		cb(chunk, uint32(len(chunk)/2))
		pos = end
	}
	return nil
}

func (c *FakeCapture) Stop() {
	c.mu.Lock()
	c.stops++
	c.mu.Unlock()
}

func (c *FakeCapture) Close() {}

func (c *FakeCapture) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

func (c *FakeCapture) Stops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stops
}

type FakePlayback struct {
	mu      sync.Mutex
	buffers [][]byte
}

func (p *FakePlayback) Play(pcm []byte) error {
	p.mu.Lock()
	p.buffers = append(p.buffers, pcm)
	p.mu.Unlock()
	return nil
}

func (p *FakePlayback) Stop()  {}
func (p *FakePlayback) Close() {}

func (p *FakePlayback) Buffers() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.buffers...)
}
