package audio

import (
	"sync"
	"time"
)

// Pacer queues decoded model audio and releases it to its consumer at
// real-time cadence: each chunk is emitted, then the next dequeue waits
// len(chunk)/sampleRate. The loop goes idle on an empty queue and is
// re-armed by the next AddPCM16; at most one loop instance runs at a time.
type Pacer struct {
	sampleRate int
	emit       func([]float32)

	mu       sync.Mutex
	queue    [][]float32
	playing  bool
	complete bool
	timer    *time.Timer
}

func NewPacer(sampleRate int, emit func([]float32)) *Pacer {
	if sampleRate <= 0 {
		sampleRate = PlaybackRate
	}
	return &Pacer{
		sampleRate: sampleRate,
		emit:       emit,
	}
}

// AddPCM16 converts a little-endian 16-bit PCM buffer to normalized float
// samples and enqueues it. A stopped pacer resumes on the next chunk.
func (p *Pacer) AddPCM16(data []byte) {
	samples := Int16ToFloat32(PCMBytesToInt16(data))
	if len(samples) == 0 {
		return
	}

	p.mu.Lock()
	p.complete = false
	p.queue = append(p.queue, samples)
	start := !p.playing
	if start {
		p.playing = true
	}
	p.mu.Unlock()

	if start {
		p.next()
	}
}

func (p *Pacer) next() {
	p.mu.Lock()
	if p.complete || len(p.queue) == 0 {
		p.playing = false
		p.mu.Unlock()
		return
	}
	chunk := p.queue[0]
	p.queue = p.queue[1:]
	p.mu.Unlock()

	p.emit(chunk)

	wait := time.Duration(float64(len(chunk)) / float64(p.sampleRate) * float64(time.Second))

	p.mu.Lock()
	if p.complete {
		p.playing = false
		p.mu.Unlock()
		return
	}
	p.timer = time.AfterFunc(wait, p.next)
	p.mu.Unlock()
}

// Stop clears the queue and halts the loop. A dequeue already scheduled on
// the timer observes the complete flag and emits nothing.
func (p *Pacer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = nil
	p.complete = true
	p.playing = false
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// QueueLen reports the number of chunks awaiting release.
func (p *Pacer) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}
