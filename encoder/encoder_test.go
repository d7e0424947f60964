package encoder

import (
	"encoding/binary"
	"testing"
)

func sine(n int) []int16 {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16((i % 200) * 100)
	}
	return samples
}

func TestWavEncoder(t *testing.T) {
	enc := NewWav()
	samples := sine(SampleRate) // one second
	for i := 0; i < len(samples); i += BlockSize {
		end := min(i+BlockSize, len(samples))
		if err := enc.EncodeBlock(samples[i:end]); err != nil {
			t.Fatalf("EncodeBlock: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}

	out := enc.Bytes()
	if len(out) != 44+len(samples)*2 {
		t.Fatalf("len = %d, want %d", len(out), 44+len(samples)*2)
	}
	if string(out[:4]) != "RIFF" || string(out[8:12]) != "WAVE" {
		t.Fatal("bad WAV magic")
	}
	if got := binary.LittleEndian.Uint32(out[24:28]); got != SampleRate {
		t.Errorf("sample rate in header = %d", got)
	}
	if got := binary.LittleEndian.Uint32(out[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("data size in header = %d", got)
	}
	if enc.TotalFrames() != uint64(len(samples)) {
		t.Errorf("TotalFrames = %d", enc.TotalFrames())
	}
}

func TestFlacEncoder(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	samples := sine(BlockSize * 3)
	var totalFed uint64
	for i := 0; i < len(samples); i += BlockSize {
		end := min(i+BlockSize, len(samples))
		block := samples[i:end]
		if err := enc.EncodeBlock(block); err != nil {
			t.Fatalf("EncodeBlock at offset %d: %v", i, err)
		}
		totalFed += uint64(len(block))
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if enc.TotalFrames() != totalFed {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), totalFed)
	}

	flacData := enc.Bytes()
	if len(flacData) < 4 || string(flacData[:4]) != "fLaC" {
		t.Fatal("output does not start with FLAC magic")
	}
}

func TestFlacEncoderPartialBlock(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	partial := sine(BlockSize / 4)
	if err := enc.EncodeBlock(partial); err != nil {
		t.Fatalf("EncodeBlock partial: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if enc.TotalFrames() != uint64(len(partial)) {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), len(partial))
	}
}

func TestNewByFormat(t *testing.T) {
	for format, want := range map[string]string{"wav": "wav", "flac": "flac", "": "wav"} {
		enc, err := New(format)
		if err != nil {
			t.Fatalf("New(%q): %v", format, err)
		}
		if enc.Format() != want {
			t.Errorf("New(%q).Format() = %q, want %q", format, enc.Format(), want)
		}
	}
}

func TestDurationSec(t *testing.T) {
	for frames, want := range map[uint64]int{
		0:                  0,
		1:                  1,
		SampleRate:         1,
		SampleRate + 1:     2,
		SampleRate * 5:     5,
		SampleRate*5 + 100: 6,
	} {
		if got := DurationSec(frames); got != want {
			t.Errorf("DurationSec(%d) = %d, want %d", frames, got, want)
		}
	}
}
