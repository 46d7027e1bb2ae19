package audio

import (
	"sync"
	"testing"
	"time"
)

type pacerRecorder struct {
	mu     sync.Mutex
	chunks [][]float32
	times  []time.Time
}

func (r *pacerRecorder) emit(chunk []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = append(r.chunks, chunk)
	r.times = append(r.times, time.Now())
}

func (r *pacerRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chunks)
}

func pcmOfSamples(n int) []byte {
	return make([]byte, n*2)
}

func TestPacer_EmitsImmediately(t *testing.T) {
	rec := &pacerRecorder{}
	p := NewPacer(24000, rec.emit)

	p.AddPCM16(pcmOfSamples(240))

	if rec.count() != 1 {
		t.Fatalf("expected first chunk emitted synchronously, got %d", rec.count())
	}
	if len(rec.chunks[0]) != 240 {
		t.Errorf("expected 240 samples, got %d", len(rec.chunks[0]))
	}
}

func TestPacer_PacesSecondChunk(t *testing.T) {
	rec := &pacerRecorder{}
	p := NewPacer(24000, rec.emit)

	// 2400 samples at 24kHz is 100ms of audio.
	p.AddPCM16(pcmOfSamples(2400))
	p.AddPCM16(pcmOfSamples(2400))

	if rec.count() != 1 {
		t.Fatalf("second chunk should wait for cadence, got %d emissions", rec.count())
	}

	deadline := time.Now().Add(500 * time.Millisecond)
	for rec.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rec.count() != 2 {
		t.Fatalf("expected 2 emissions, got %d", rec.count())
	}

	gap := rec.times[1].Sub(rec.times[0])
	if gap < 90*time.Millisecond {
		t.Errorf("second chunk released too early: %v", gap)
	}
}

func TestPacer_StopPreventsScheduledEmission(t *testing.T) {
	rec := &pacerRecorder{}
	p := NewPacer(24000, rec.emit)

	p.AddPCM16(pcmOfSamples(2400))
	p.AddPCM16(pcmOfSamples(2400))

	p.Stop()

	time.Sleep(200 * time.Millisecond)
	if rec.count() != 1 {
		t.Errorf("stop should prevent the queued chunk's emission, got %d", rec.count())
	}
	if p.QueueLen() != 0 {
		t.Errorf("stop should clear the queue, got %d", p.QueueLen())
	}
}

func TestPacer_ResumesAfterStop(t *testing.T) {
	rec := &pacerRecorder{}
	p := NewPacer(24000, rec.emit)

	p.AddPCM16(pcmOfSamples(240))
	p.Stop()

	p.AddPCM16(pcmOfSamples(240))

	deadline := time.Now().Add(500 * time.Millisecond)
	for rec.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rec.count() != 2 {
		t.Errorf("pacer should resume on new audio after stop, got %d", rec.count())
	}
}

func TestPacer_GoesIdleAndRearms(t *testing.T) {
	rec := &pacerRecorder{}
	p := NewPacer(24000, rec.emit)

	p.AddPCM16(pcmOfSamples(24))

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		p.mu.Lock()
		playing := p.playing
		p.mu.Unlock()
		if !playing {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}

	p.AddPCM16(pcmOfSamples(24))
	deadline = time.Now().Add(200 * time.Millisecond)
	for rec.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if rec.count() != 2 {
		t.Errorf("idle pacer should re-arm on enqueue, got %d emissions", rec.count())
	}
}

func TestPacer_EmptyBufferIgnored(t *testing.T) {
	rec := &pacerRecorder{}
	p := NewPacer(24000, rec.emit)

	p.AddPCM16(nil)
	p.AddPCM16([]byte{0x01})

	if rec.count() != 0 {
		t.Errorf("empty buffers should not emit, got %d", rec.count())
	}
}

func TestPacer_StopIsSafeWhenIdle(t *testing.T) {
	p := NewPacer(24000, func([]float32) {})
	p.Stop()
	p.Stop()
}
