// Package audio plays the typewriter click that accompanies each revealed
// character.
package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	"github.com/Faultbox/textensions/internal/textension"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// Click shape.
const (
	DefaultClickHz = 1800.0
	clickDuration  = 35 * time.Millisecond
	clickDecay     = 120.0 // Envelope decay per second
)

// Manager mixes click sounds onto the speaker.
type Manager struct {
	mu sync.RWMutex

	// State
	initialized bool
	sampleRate  beep.SampleRate
	muted       bool

	// Volume (0.0 to 1.0)
	masterVolume float64
	clickHz      float64

	// sample replaces the synthesized click when set.
	sample *beep.Buffer

	// Mixer for overlapping clicks
	mixer *beep.Mixer
}

// New creates a new audio manager.
func New() *Manager {
	return &Manager{
		sampleRate:   DefaultSampleRate,
		masterVolume: 1.0,
		clickHz:      DefaultClickHz,
		mixer:        &beep.Mixer{},
	}
}

// Init initializes the speaker.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30))
	if err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	// Start click mixer
	speaker.Play(m.mixer)

	m.initialized = true
	return nil
}

// Close shuts down the audio system.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	speaker.Clear()
	m.initialized = false
}

// IsInitialized returns whether the speaker is running.
func (m *Manager) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// SetMasterVolume sets the master volume (0.0 to 1.0).
func (m *Manager) SetMasterVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
}

// GetMasterVolume returns the master volume.
func (m *Manager) GetMasterVolume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.masterVolume
}

// SetMuted silences clicks without touching the volume.
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

// IsMuted returns whether clicks are silenced.
func (m *Manager) IsMuted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.muted
}

// SetClickHz sets the pitch of the synthesized click. Non-positive values
// restore the default.
func (m *Manager) SetClickHz(hz float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hz <= 0 {
		hz = DefaultClickHz
	}
	m.clickHz = hz
}

// SetClickSample replaces the synthesized click with WAV data.
func (m *Manager) SetClickSample(data []byte) error {
	streamer, format, err := wav.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("decode wav: %w", err)
	}
	defer streamer.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Resample once so every click plays at the speaker rate
	var resampled beep.Streamer = streamer
	if format.SampleRate != m.sampleRate {
		resampled = beep.Resample(4, format.SampleRate, m.sampleRate, streamer)
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: m.sampleRate, NumChannels: 2, Precision: 2})
	buf.Append(resampled)
	m.sample = buf
	return nil
}

// ClickStreamer returns one click at the current volume, or nil when muted or
// silent.
func (m *Manager) ClickStreamer() beep.Streamer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vol := m.masterVolume
	if m.muted || vol <= 0 {
		return nil
	}

	var s beep.Streamer
	if m.sample != nil {
		s = m.sample.Streamer(0, m.sample.Len())
	} else {
		s = newClick(m.clickHz, clickDuration, m.sampleRate)
	}

	return &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   volumeToDb(vol) / 6.0206, // dB to base-2 steps
		Silent:   false,
	}
}

// Click plays one click.
func (m *Manager) Click() error {
	if !m.IsInitialized() {
		return fmt.Errorf("audio not initialized")
	}
	s := m.ClickStreamer()
	if s == nil {
		return nil
	}

	// The mixer is streamed from the speaker goroutine
	speaker.Lock()
	m.mixer.Add(s)
	speaker.Unlock()
	return nil
}

// RevealHook returns a reveal observer that clicks for every printing
// character.
func (m *Manager) RevealHook() func(c *textension.Character) {
	return func(c *textension.Character) {
		if !c.IsVisible() {
			return
		}
		_ = m.Click()
	}
}

// volumeToDb converts a 0-1 volume to decibel scale.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100 // Effectively silent
	}
	// vol=1 -> 0dB, vol=0.5 -> -6dB, vol=0.25 -> -12dB
	return 20 * math.Log10(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// click is a sine burst with an exponential decay.
type click struct {
	freq     float64
	phase    float64
	position int
	duration int
	rate     beep.SampleRate
}

func newClick(freq float64, duration time.Duration, rate beep.SampleRate) *click {
	return &click{freq: freq, duration: rate.N(duration), rate: rate}
}

func (c *click) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if c.position >= c.duration {
			return i, i > 0
		}
		t := float64(c.position) / float64(c.rate)
		val := math.Sin(2*math.Pi*c.phase) * math.Exp(-clickDecay*t)

		samples[i][0] = val
		samples[i][1] = val

		c.phase += c.freq / float64(c.rate)
		c.phase -= math.Floor(c.phase)
		c.position++
	}
	return len(samples), true
}

func (c *click) Err() error { return nil }
