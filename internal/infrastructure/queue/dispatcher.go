package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/sunflower/sunflower-api/internal/core/ports"
	"github.com/sunflower/sunflower-api/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

type verificationJob struct {
	to   string
	link string
}

// Dispatcher delivers verification emails asynchronously. Jobs are sharded by
// recipient with consistent hashing so mails to one address stay ordered.
//
// Dispatcher implements ports.Notifier; SendVerificationEmail never blocks.
type Dispatcher struct {
	workers []chan verificationJob
	sender  ports.Notifier
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers, each
// buffering up to bufferSize jobs. Non-positive values select the defaults.
func NewDispatcher(numWorkers, bufferSize int, sender ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if bufferSize <= 0 {
		bufferSize = channelBuffer
	}
	d := &Dispatcher{
		workers: make([]chan verificationJob, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan verificationJob, bufferSize)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// SendVerificationEmail enqueues the email and returns immediately. When the
// worker's buffer is full the job is dropped and logged; delivery is best-effort.
func (d *Dispatcher) SendVerificationEmail(_ context.Context, to, link string) error {
	idx := d.shardIndex(to)
	depth := metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx))
	// Counted before the send so a fast worker never drives the gauge negative.
	depth.Inc()
	select {
	case d.workers[idx] <- verificationJob{to: to, link: link}:
	default:
		depth.Dec()
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Int("worker_id", idx).Msg("notification queue full, verification email dropped")
	}
	return nil
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan verificationJob) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(label).Dec()
			// Delivery outlives the request that enqueued it.
			if err := d.sender.SendVerificationEmail(context.WithoutCancel(ctx), job.to, job.link); err != nil {
				metrics.NotificationsTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).Int("worker_id", id).Msg("verification email delivery failed")
				continue
			}
			metrics.NotificationsTotal.WithLabelValues("sent").Inc()
		}
	}
}
