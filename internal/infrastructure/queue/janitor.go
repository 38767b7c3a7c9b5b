package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/civicvote/voting-system/internal/core/ports"
)

const (
	defaultWorkers = 2
	channelBuffer  = 128
)

var _ ports.ImageCleaner = (*Janitor)(nil)

// Janitor removes orphaned candidate images in the background. A filename
// always lands on the same worker.
type Janitor struct {
	workers []chan string
	store   ports.ImageStore
	log     zerolog.Logger
	wg      sync.WaitGroup
}

func NewJanitor(numWorkers int, store ports.ImageStore, log zerolog.Logger) *Janitor {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	j := &Janitor{
		workers: make([]chan string, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range j.workers {
		j.workers[i] = make(chan string, channelBuffer)
	}
	return j
}

// Start launches the workers. They stop when ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	for i, ch := range j.workers {
		j.wg.Add(1)
		go j.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (j *Janitor) Wait() {
	j.wg.Wait()
}

// Discard schedules filename for removal without blocking. When the worker
// queue is full the file is left on disk and a warning is logged.
func (j *Janitor) Discard(filename string) {
	if filename == "" {
		return
	}
	select {
	case j.workers[j.shardIndex(filename)] <- filename:
	default:
		j.log.Warn().Str("image", filename).Msg("janitor queue full, image left on disk")
	}
}

func (j *Janitor) shardIndex(filename string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(filename))
	return int(h.Sum32() % uint32(len(j.workers)))
}

func (j *Janitor) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer j.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case filename := <-ch:
			if err := j.store.Remove(ctx, filename); err != nil {
				j.log.Error().Err(err).
					Str("image", filename).
					Int("worker_id", id).
					Msg("image removal failed")
				continue
			}
			j.log.Debug().Str("image", filename).Msg("image removed")
		}
	}
}
