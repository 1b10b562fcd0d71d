// Package notifier delivers outbound email without ever blocking or failing
// the request that triggered it. Messages are queued in memory and sent by a
// single worker; delivery failures are logged and dropped.
package notifier

import (
	"context"
	"log"
	"sync"
	"time"
)

type Message struct {
	To      []string
	Subject string
	Body    string
}

// Sender performs a single delivery. Implementations must honor ctx.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Queue is what the workflows depend on; satisfied by *Notifier and by test
// fakes.
type Queue interface {
	Enqueue(msg Message)
}

const defaultSendTimeout = 15 * time.Second

type Notifier struct {
	sender  Sender
	queue   chan Message
	timeout time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(sender Sender, buffer int) *Notifier {
	if buffer <= 0 {
		buffer = 64
	}
	return &Notifier{
		sender:  sender,
		queue:   make(chan Message, buffer),
		timeout: defaultSendTimeout,
	}
}

// Start launches the worker loop. Safe to call once.
func (n *Notifier) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-n.queue:
				n.deliver(ctx, msg)
			}
		}
	}()
}

// Stop drains nothing; queued but unsent messages are dropped. Notification
// loss is acceptable here, delayed shutdown is not.
func (n *Notifier) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
	n.wg.Wait()
}

// Enqueue hands a message to the worker. Never blocks: when the queue is
// full the message is dropped and logged.
func (n *Notifier) Enqueue(msg Message) {
	if len(msg.To) == 0 {
		log.Println("Skipping notification with no recipients")
		return
	}

	select {
	case n.queue <- msg:
	default:
		log.Printf("Notification queue full, dropping %q to %d recipients", msg.Subject, len(msg.To))
	}
}

func (n *Notifier) deliver(ctx context.Context, msg Message) {
	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.sender.Send(sendCtx, msg); err != nil {
		log.Printf("Failed to send %q to %d recipients: %v", msg.Subject, len(msg.To), err)
		return
	}

	log.Printf("Sent %q to %d recipients", msg.Subject, len(msg.To))
}
