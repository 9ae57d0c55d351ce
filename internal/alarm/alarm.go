// Package alarm implements domain.AlarmSink with an audible tone played
// through the system audio device. Adapted from the oto playback
// pattern used for synthesized speech: a synthesized PCM tone replaces
// a decoded WAV payload since an alarm cue has no text to render.
package alarm

import (
	"bytes"
	"context"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/aeegmon/core/internal/domain"
	"github.com/aeegmon/core/internal/logger"
)

// Audio parameters for the synthesized tone.
const (
	SampleRate   = 24000
	ChannelCount = 1
)

var _ domain.AlarmSink = (*Sink)(nil)

type tone struct {
	freqHz   float64
	duration time.Duration
}

// toneForKind maps the urgent subset of audit kinds to a distinct tone.
// Kinds not listed here still play, at a neutral default tone, since
// SoundAlarm accepts any AuditKind (§ coordinator drift escalation
// reuses SerialError — see internal/coordinator).
func toneForKind(kind domain.AuditKind) tone {
	switch kind {
	case domain.DeviceLost:
		return tone{freqHz: 880, duration: 600 * time.Millisecond}
	case domain.CRCError, domain.SerialError:
		return tone{freqHz: 1046.5, duration: 400 * time.Millisecond}
	default:
		return tone{freqHz: 660, duration: 300 * time.Millisecond}
	}
}

// Sink plays alarm tones via oto. Only one tone plays at a time; a new
// call interrupts whatever is currently sounding.
type Sink struct {
	ctx *oto.Context
	log *logger.Logger

	mu     sync.Mutex
	active *oto.Player
}

// NewSink initializes the system audio context. Returns an error if the
// audio device is unavailable.
func NewSink(log *logger.Logger) (*Sink, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("alarm sink initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Sink{ctx: ctx, log: log}, nil
}

// SoundAlarm plays the tone for kind, blocking until it finishes or the
// context is cancelled.
func (s *Sink) SoundAlarm(ctx context.Context, kind domain.AuditKind) error {
	s.Stop()

	t := toneForKind(kind)
	pcm := generateTone(t.freqHz, t.duration)

	player := s.ctx.NewPlayer(bytes.NewReader(pcm))
	s.mu.Lock()
	s.active = player
	s.mu.Unlock()

	player.Play()
	s.log.Debug("alarm: sounding %s tone (%.1fHz, %s)", kind, t.freqHz, t.duration)

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()

	return player.Close()
}

// Stop interrupts whatever tone is currently sounding, if any.
func (s *Sink) Stop() {
	s.mu.Lock()
	active := s.active
	s.mu.Unlock()

	if active != nil {
		active.Pause()
		s.log.Debug("alarm: interrupted")
	}
}

// generateTone synthesizes a mono 16-bit signed little-endian PCM sine
// wave at freqHz for duration, with a short fade-in/out to avoid clicks.
func generateTone(freqHz float64, duration time.Duration) []byte {
	n := int(float64(SampleRate) * duration.Seconds())
	buf := make([]byte, n*2)

	fadeSamples := n / 20
	if fadeSamples == 0 {
		fadeSamples = 1
	}

	for i := 0; i < n; i++ {
		amp := 1.0
		if i < fadeSamples {
			amp = float64(i) / float64(fadeSamples)
		} else if i > n-fadeSamples {
			amp = float64(n-i) / float64(fadeSamples)
		}

		sample := amp * math.Sin(2*math.Pi*freqHz*float64(i)/float64(SampleRate))
		v := int16(sample * 0.8 * math.MaxInt16)
		buf[2*i] = byte(v)
		buf[2*i+1] = byte(v >> 8)
	}
	return buf
}
