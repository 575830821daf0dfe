package modules

import (
	"fmt"
	"sync"

	"github.com/halvorsen-audio/patchrack/pkg/module"
	"github.com/halvorsen-audio/patchrack/pkg/registry"
	"github.com/halvorsen-audio/patchrack/pkg/wavio"
)

// initialRecordSeconds sizes a take's first buffer allocation; Go's
// append-driven growth handles anything past that without a manual
// realloc-doubling step.
const initialRecordSeconds = 1.0

type recorderState int

const (
	recorderIdle recorderState = iota
	recorderRecording
)

// recordJob is one completed take handed to the writer goroutine: a copy
// of every per-channel stem plus the mix, so the audio thread's buffers
// can be reused for the next take immediately.
type recordJob struct {
	takeID     int
	sampleRate float64
	channels   [][]float32
	mix        []float32
}

// Recorder implements e_recorder: a pass-through mixer that, while
// recording, accumulates every fan-in audio input as a separate stem
// plus their uniform-gain mix, and on stop hands the completed take to
// a dedicated writer goroutine that serializes it to WAV. The
// pthread_cond_wait/pthread_cond_signal producer/consumer handoff a
// C implementation would use becomes a channel send/receive here, and
// realloc-doubling buffer growth becomes plain slice append. The audio
// thread (ProcessMultiAudio) never performs I/O, only appends to
// in-memory slices and hands a finished take off by channel send.
type Recorder struct {
	*module.Base

	mu             sync.Mutex
	state          recorderState
	takeID         int
	buffers        [][]float32
	mix            []float32
	sampleCounter  uint64
	displaySeconds float64

	jobs chan recordJob
	wg   sync.WaitGroup
}

func newRecorder(alias, config string, sampleRate float64) (module.Module, error) {
	_ = wavio.EnsureDir()

	b := module.NewBase(alias, "e_recorder", sampleRate, 0, true, false, module.MaxBlockSize)
	r := &Recorder{
		Base: b,
		jobs: make(chan recordJob, 1),
	}
	r.wg.Add(1)
	go r.writerMain()
	return r, nil
}

func (r *Recorder) writerMain() {
	defer r.wg.Done()
	for job := range r.jobs {
		r.writeTake(job)
	}
}

func (r *Recorder) writeTake(job recordJob) {
	channelPaths, mixPath := wavio.TakeFilenames(job.takeID, len(job.channels))
	sr := int(job.sampleRate)
	for ch, samples := range job.channels {
		_ = wavio.WriteMono(channelPaths[ch], samples, sr)
	}
	_ = wavio.WriteMono(mixPath, job.mix, sr)
}

// submitJob hands a finished take to the writer, replacing any job the
// writer has not yet started, matching submit_job_locked's overwrite of
// a still-pending job.
func (r *Recorder) submitJob(job recordJob) {
	select {
	case <-r.jobs:
	default:
	}
	r.jobs <- job
}

func (r *Recorder) ensureBuffers(numInputs int) {
	if numInputs <= 0 {
		return
	}
	if len(r.buffers) == numInputs {
		return
	}
	cap0 := int(r.SampleRate() * initialRecordSeconds)
	r.buffers = make([][]float32, numInputs)
	for ch := range r.buffers {
		r.buffers[ch] = make([]float32, 0, cap0)
	}
	r.mix = make([]float32, 0, cap0)
	r.sampleCounter = 0
}

// ProcessMultiAudio implements module.MultiAudioProcessor: while
// recording, every input channel is appended to its own stem buffer and
// the uniform-gain mix to out and the mix buffer; otherwise it's a plain
// pass-through mix.
func (r *Recorder) ProcessMultiAudio(ins [][]float32, out []float32, frames int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensureBuffers(len(ins))
	gain := float32(1)
	if len(ins) > 1 {
		gain = 1.0 / float32(len(ins))
	}

	recording := r.state == recorderRecording
	for i := 0; i < frames; i++ {
		var sum float32
		for ch, src := range ins {
			var v float32
			if src != nil && i < len(src) {
				v = src[i]
			}
			sum += v
			if recording {
				r.buffers[ch] = append(r.buffers[ch], v)
			}
		}
		mixed := sum * gain
		if out != nil {
			out[i] = mixed
		}
		if recording {
			r.mix = append(r.mix, mixed)
		}
	}

	if recording {
		r.sampleCounter += uint64(frames)
		r.displaySeconds = float64(r.sampleCounter) / r.SampleRate()
	}
}

func (r *Recorder) startLocked() {
	r.state = recorderRecording
	r.sampleCounter = 0
	r.displaySeconds = 0
	for ch := range r.buffers {
		r.buffers[ch] = r.buffers[ch][:0]
	}
	r.mix = r.mix[:0]
}

func (r *Recorder) stopLocked() {
	r.state = recorderIdle
	if r.sampleCounter > 0 {
		channels := make([][]float32, len(r.buffers))
		for ch, buf := range r.buffers {
			channels[ch] = append([]float32(nil), buf...)
		}
		r.submitJob(recordJob{
			takeID:     r.takeID,
			sampleRate: r.SampleRate(),
			channels:   channels,
			mix:        append([]float32(nil), r.mix...),
		})
		r.takeID++
	}
	r.sampleCounter = 0
	r.displaySeconds = 0
}

// HandleInput toggles record/idle on SPACE.
func (r *Recorder) HandleInput(key rune) {
	if key != ' ' {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == recorderIdle {
		r.startLocked()
	} else {
		r.stopLocked()
	}
}

// SetParam maps the OSC "rec" address onto the same start/stop logic.
func (r *Recorder) SetParam(name string, value float64) {
	if name != "rec" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if value >= 0.5 && r.state == recorderIdle {
		r.startLocked()
	} else if value < 0.5 && r.state == recorderRecording {
		r.stopLocked()
	}
}

// DrawUI renders record state, elapsed seconds, and the next take id.
func (r *Recorder) DrawUI(y, x int) string {
	r.mu.Lock()
	st, sec, take := r.state, r.displaySeconds, r.takeID
	r.mu.Unlock()

	stateStr := "IDLE"
	if st == recorderRecording {
		stateStr = "REC"
	}
	return fmt.Sprintf("[e_recorder:%s] state: %s | t: %.3f s | take: %03d | SPACE = rec/stop",
		r.Alias(), stateStr, sec, take)
}

// Destroy stops the writer goroutine, flushing nothing further: a take
// still recording when the patch tears down is dropped, not flushed.
func (r *Recorder) Destroy() {
	close(r.jobs)
	r.wg.Wait()
}

func init() {
	registry.Register("e_recorder", newRecorder)
}
