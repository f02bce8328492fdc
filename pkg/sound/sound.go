package sound

import (
	"fmt"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"github.com/tigerbot-team/kartbot/pkg/events"
)

// Cues maps flag events to the WAV file played for them.
type Cues map[events.Kind]string

func DefaultCues() Cues {
	return Cues{
		events.FlagDropped:        "/sounds/flag.wav",
		events.CautionFlagDropped: "/sounds/caution.wav",
		events.GameOver:           "/sounds/finish.wav",
	}
}

// Player announces events on the speaker.  Announce never blocks the event
// loop; a cue that arrives while the player is busy is dropped.
type Player struct {
	cues  Cues
	sound chan string
}

func NewPlayer(cues Cues, sounds chan string) *Player {
	return &Player{cues: cues, sound: sounds}
}

func (p *Player) Announce(k events.Kind) {
	file, ok := p.cues[k]
	if !ok {
		return
	}
	select {
	case p.sound <- file:
	default:
		fmt.Println("SOUND: Busy, dropping", file)
	}
}

// InitSound starts the speaker goroutine.  Each file sent on the returned
// channel interrupts whatever is playing.
func InitSound() chan string {
	soundsToPlay := make(chan string, 1)
	go func() {
		defer func() {
			recover()
			for s := range soundsToPlay {
				fmt.Println("Unable to play", s)
			}
		}()
		sampleRate := beep.SampleRate(44100)
		err := speaker.Init(sampleRate, sampleRate.N(time.Second/5))
		if err != nil {
			fmt.Println("Failed to open speaker", err)
			for s := range soundsToPlay {
				fmt.Println("Unable to play", s)
			}
		}
		var ctrl *beep.Ctrl
		var s beep.StreamSeekCloser
		for soundToPlay := range soundsToPlay {
			if ctrl != nil {
				speaker.Lock()
				ctrl.Paused = true
				ctrl.Streamer = nil
				speaker.Unlock()
				ctrl = nil
			}
			if s != nil {
				s.Close()
				s = nil
			}

			f, err := os.Open(soundToPlay)
			if err != nil {
				fmt.Println("Failed to open sound", err)
				continue
			}
			s, _, err = wav.Decode(f)
			if err != nil {
				fmt.Println("Failed to decode sound", err)
				f.Close()
				continue
			}
			ctrl = &beep.Ctrl{Streamer: s}
			speaker.Play(ctrl)
		}
	}()
	return soundsToPlay
}
