package main

import (
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/example/dotmatrix/internal/console"
)

const (
	// Audio output sample rate (Hz).
	sampleRate = 48000

	// Audio buffer size in float32 samples (interleaved stereo).
	// Larger buffer = more latency but less chance of underrun.
	audioBufferSize = 4096

	// highPassCutoff and lowPassCutoff are one-pole filter coefficients
	// tuned for a 48 kHz stream; they trade brightness for a cleaner
	// noise floor the way most DMG emulators post-process their mixer.
	highPassCutoff = 0.999958
	lowPassCutoff  = 0.65
)

// AudioOptions toggles the post-processing stages applied to the APU's raw
// mix before it reaches the host's audio device.
type AudioOptions struct {
	EnableLowPass  bool
	EnableHighPass bool
	EnableSoftClip bool
	EnableDither   bool
}

// AudioPlayer manages audio output for the emulator.
type AudioPlayer struct {
	console      *console.Console
	opts         AudioOptions
	audioContext *audio.Context
	audioPlayer  *audio.Player
	sampleBuffer []float32

	// Filter state, one pole per stereo channel.
	lpLeft, lpRight     float32
	hpLeft, hpRight     float32
	hpPrevL, hpPrevR    float32
	ditherLeft, ditherRight float32
}

// NewAudioPlayer creates a new audio player for cons.
func NewAudioPlayer(cons *console.Console, opts AudioOptions) (*AudioPlayer, error) {
	audioContext := audio.NewContext(sampleRate)

	ap := &AudioPlayer{
		console:      cons,
		opts:         opts,
		audioContext: audioContext,
		sampleBuffer: make([]float32, 0, audioBufferSize),
	}

	player, err := audioContext.NewPlayer(&infiniteStream{player: ap})
	if err != nil {
		return nil, err
	}
	ap.audioPlayer = player

	return ap, nil
}

// Start starts audio playback.
func (ap *AudioPlayer) Start() {
	if ap.audioPlayer != nil {
		ap.audioPlayer.Play()
	}
}

// Stop stops audio playback.
func (ap *AudioPlayer) Stop() {
	if ap.audioPlayer != nil {
		ap.audioPlayer.Pause()
	}
}

// Update pulls freshly generated samples from the console, filters them,
// and appends them to the playback buffer.
func (ap *AudioPlayer) Update() {
	samples := ap.console.GetAudioSamples()
	for i := 0; i+1 < len(samples); i += 2 {
		left, right := ap.process(samples[i], samples[i+1])
		ap.sampleBuffer = append(ap.sampleBuffer, left, right)
	}

	maxBufferSize := audioBufferSize * 4
	if len(ap.sampleBuffer) > maxBufferSize {
		ap.sampleBuffer = ap.sampleBuffer[len(ap.sampleBuffer)-maxBufferSize:]
	}
}

// process runs one stereo sample through the enabled filter stages.
func (ap *AudioPlayer) process(left, right float32) (float32, float32) {
	if ap.opts.EnableHighPass {
		newL := left - ap.hpPrevL + highPassCutoff*ap.hpLeft
		newR := right - ap.hpPrevR + highPassCutoff*ap.hpRight
		ap.hpPrevL, ap.hpPrevR = left, right
		ap.hpLeft, ap.hpRight = newL, newR
		left, right = newL, newR
	}

	if ap.opts.EnableLowPass {
		ap.lpLeft += lowPassCutoff * (left - ap.lpLeft)
		ap.lpRight += lowPassCutoff * (right - ap.lpRight)
		left, right = ap.lpLeft, ap.lpRight
	}

	if ap.opts.EnableDither {
		left += ap.triangularDither(&ap.ditherLeft)
		right += ap.triangularDither(&ap.ditherRight)
	}

	if ap.opts.EnableSoftClip {
		left = softClip(left)
		right = softClip(right)
	} else {
		left = hardClip(left)
		right = hardClip(right)
	}

	return left, right
}

// triangularDither returns the next value of a deterministic dither offset
// kept in state: successive calls alternate between 1/32768 and 0. It uses
// no RNG, and the values do not follow a triangular distribution.
func (ap *AudioPlayer) triangularDither(state *float32) float32 {
	const amplitude = 1.0 / 32768.0
	*state = -*state + amplitude
	return *state
}

func softClip(x float32) float32 {
	const threshold = 0.8
	if x > threshold {
		return threshold + (x-threshold)/(1+(x-threshold)*(x-threshold))
	}
	if x < -threshold {
		return -threshold + (x+threshold)/(1+(x+threshold)*(x+threshold))
	}
	return x
}

func hardClip(x float32) float32 {
	switch {
	case x > 1:
		return 1
	case x < -1:
		return -1
	default:
		return x
	}
}

// Read reads audio samples for playback (implements io.Reader).
func (ap *AudioPlayer) Read(buf []byte) (int, error) {
	numSamples := len(buf) / 4 // 4 bytes per stereo sample (2 channels x 2 bytes)

	if len(ap.sampleBuffer) < numSamples*2 {
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	}

	for i := 0; i < numSamples; i++ {
		left := ap.sampleBuffer[i*2]
		leftInt16 := int16(left * 32767.0)
		buf[i*4] = byte(leftInt16)
		buf[i*4+1] = byte(leftInt16 >> 8)

		right := ap.sampleBuffer[i*2+1]
		rightInt16 := int16(right * 32767.0)
		buf[i*4+2] = byte(rightInt16)
		buf[i*4+3] = byte(rightInt16 >> 8)
	}

	ap.sampleBuffer = ap.sampleBuffer[numSamples*2:]

	return len(buf), nil
}

// infiniteStream wraps AudioPlayer to implement an infinite audio stream.
type infiniteStream struct {
	player *AudioPlayer
}

// Read implements io.Reader for infinite audio streaming.
func (s *infiniteStream) Read(buf []byte) (int, error) {
	return s.player.Read(buf)
}
