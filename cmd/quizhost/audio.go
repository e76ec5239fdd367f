package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gen2brain/malgo"

	"github.com/quizhost-go/quizhost/pkg/core/audio"
)

// speakerBufferSize sets how much audio oto keeps queued at the device.
// Small keeps latency low; too small and playback underruns.
const speakerBufferSize = 100 * time.Millisecond

// micFrameMs is the capture period: each ReadFrame returns this much audio.
const micFrameMs = 20

// micMaxBacklogFrames bounds the capture backlog to roughly a second.
const micMaxBacklogFrames = 50

// initSpeaker sets up speaker output for the given playback format.
func initSpeaker(format audio.Config) (*speakerWriter, func(), error) {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   speakerBufferSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init speaker: %w", err)
	}
	<-ready

	speaker := newSpeakerWriter(otoCtx, format)
	return speaker, speaker.Close, nil
}

// initMic sets up microphone capture in the given format. The returned
// cleanup stops the device and tears down the audio context.
func initMic(format audio.Config) (*micReader, func(), error) {
	malgoConfig := malgo.ContextConfig{}
	malgoConfig.ThreadPriority = malgo.ThreadPriorityRealtime

	malgoCtx, err := malgo.InitContext(nil, malgoConfig, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("init audio context: %w", err)
	}

	mic, err := newMicReader(malgoCtx.Context, format)
	if err != nil {
		malgoCtx.Uninit()
		return nil, nil, err
	}

	cleanup := func() {
		mic.Close()
		malgoCtx.Uninit()
	}
	return mic, cleanup, nil
}

// micReader captures audio from the microphone. The device runs in
// float32 and each captured period is converted to 16-bit PCM before
// it is buffered, so consumers always see wire-format frames.
type micReader struct {
	device *malgo.Device
	frames *audio.Buffer
}

func newMicReader(ctx malgo.Context, format audio.Config) (*micReader, error) {
	m := &micReader{
		frames: audio.NewBuffer(format.BytesForDurationMs(micFrameMs), micMaxBacklogFrames),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(format.Channels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.PeriodSizeInMilliseconds = micFrameMs

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInputSamples []byte, _ uint32) {
			m.frames.Push(audio.EncodeFloat32(decodeF32LE(pInputSamples)))
		},
	}

	device, err := malgo.InitDevice(ctx, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("init microphone: %w", err)
	}
	m.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("start microphone: %w", err)
	}
	return m, nil
}

// ReadFrame blocks until a full capture frame of 16-bit PCM is
// available. Returns nil after Close.
func (m *micReader) ReadFrame() []byte {
	return m.frames.ReadFrame()
}

func (m *micReader) Close() {
	m.frames.Close()

	if m.device != nil {
		m.device.Stop()
		m.device.Uninit()
	}
}

// decodeF32LE reinterprets raw little-endian float32 device samples.
func decodeF32LE(raw []byte) []float32 {
	samples := make([]float32, len(raw)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return samples
}

// speakerWriter plays audio through the speaker.
type speakerWriter struct {
	otoCtx  *oto.Context
	format  audio.Config
	player  *oto.Player
	buf     []byte
	mu      sync.Mutex
	cond    *sync.Cond
	playing bool
	closed  bool
}

func newSpeakerWriter(ctx *oto.Context, format audio.Config) *speakerWriter {
	s := &speakerWriter{
		otoCtx: ctx,
		format: format,
		buf:    make([]byte, 0, 2*format.BytesPerSecond()),
	}
	s.cond = sync.NewCond(&s.mu)
	// The player starts lazily on first write.
	return s
}

func (s *speakerWriter) Write(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = append(s.buf, data...)

	if !s.playing && !s.closed {
		s.playing = true
		s.player = s.otoCtx.NewPlayer(s)
		s.player.Play()
	}
	s.cond.Signal()
}

// Read implements io.Reader for oto.Player; oto pulls audio from here.
func (s *speakerWriter) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.buf) == 0 && !s.closed {
		s.cond.Wait()
	}

	if s.closed && len(s.buf) == 0 {
		// Return silence so oto drains gracefully.
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// Pending returns the bytes buffered but not yet pulled by the player.
func (s *speakerWriter) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf)
}

func (s *speakerWriter) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()

	if s.player != nil {
		s.player.Close()
	}
}

// Flush discards pending audio and stops playback immediately. The
// next Write starts a fresh player so stale audio never overlaps new.
func (s *speakerWriter) Flush() {
	s.mu.Lock()
	s.buf = s.buf[:0]

	if s.player != nil && s.playing {
		s.playing = false
		player := s.player
		s.player = nil
		s.mu.Unlock()

		// Pause stops output now; Reset clears oto's internal buffer.
		player.Pause()
		player.Reset()
		player.Close()
		return
	}
	s.mu.Unlock()
}
