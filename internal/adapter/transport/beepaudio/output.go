package beepaudio

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Output is the audio sink the transport mixes into.
// The default implementation is the process-wide beep speaker.
type Output interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
	Close()
}

// SpeakerOutput plays through the system audio device.
type SpeakerOutput struct{}

// Init initializes the speaker.
func (SpeakerOutput) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

// Play adds s to the speaker mixer.
func (SpeakerOutput) Play(s beep.Streamer) { speaker.Play(s) }

// Clear removes every streamer from the speaker.
func (SpeakerOutput) Clear() { speaker.Clear() }

// Lock locks the speaker so streamers can be mutated safely.
func (SpeakerOutput) Lock() { speaker.Lock() }

// Unlock unlocks the speaker.
func (SpeakerOutput) Unlock() { speaker.Unlock() }

// Close closes the audio device.
func (SpeakerOutput) Close() { speaker.Close() }
