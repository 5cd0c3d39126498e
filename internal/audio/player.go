// Package audio provides notification sound playback.
package audio

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
)

// Player plays notification sounds. Decoded sounds are cached so a
// busy notification stream doesn't re-read the file each time.
type Player struct {
	mu          sync.Mutex
	logger      *slog.Logger
	initialized bool
	sampleRate  beep.SampleRate
	cache       map[string]*beep.Buffer
}

// NewPlayer creates a new audio player.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		logger:     logger,
		sampleRate: beep.SampleRate(44100),
		cache:      make(map[string]*beep.Buffer),
	}
}

// Play plays a sound file. Supports WAV, OGG, and MP3.
func (p *Player) Play(path string) error {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	p.mu.Lock()
	buffer, ok := p.cache[path]
	p.mu.Unlock()

	if !ok {
		var err error
		buffer, err = p.load(path)
		if err != nil {
			return err
		}
		p.mu.Lock()
		p.cache[path] = buffer
		p.mu.Unlock()
	}

	streamer := beep.Streamer(buffer.Streamer(0, buffer.Len()))
	p.mu.Lock()
	rate := p.sampleRate
	p.mu.Unlock()
	if buffer.Format().SampleRate != rate {
		streamer = beep.Resample(4, buffer.Format().SampleRate, rate, streamer)
	}
	speaker.Play(streamer)
	return nil
}

// load decodes a sound file into a buffer, initializing the speaker on
// first use.
func (p *Player) load(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode sound: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		bufferSize := format.SampleRate.N(100 * time.Millisecond)
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			return nil, fmt.Errorf("failed to initialize speaker: %w", err)
		}
		p.sampleRate = format.SampleRate
		p.initialized = true
		p.logger.Debug("speaker initialized", "sample_rate", format.SampleRate)
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	return buffer, nil
}

// Close stops playback and releases the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		speaker.Close()
		p.initialized = false
	}
	p.cache = make(map[string]*beep.Buffer)
}
