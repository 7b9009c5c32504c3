// Package notify is the single-slot message bus that carries the outcome of
// the most recent operation to the view layer. A new message replaces any
// unread one; nothing is queued. Clearing is left to the view.
package notify

import (
	"errors"
	"sync"
	"time"
)

// GenericError is shown when a failure carries no message of its own.
const GenericError = "An error occurred while performing the operation"

// Kind tells the view how to render a message.
type Kind string

const (
	Ok    Kind = "ok"
	Error Kind = "error"
)

// Message is the content of the slot.
type Message struct {
	Text        string    `json:"text"`
	Kind        Kind      `json:"type"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Channel holds at most one message.
type Channel struct {
	mu     sync.Mutex
	msg    Message
	full   bool
	seq    uint64
	nextID int
	subs   map[int]func(Message, bool)
	now    func() time.Time

	// deliver orders callbacks; shown is the seq last handed to them.
	deliver sync.Mutex
	shown   uint64
}

// New returns an empty channel.
func New() *Channel {
	return &Channel{subs: make(map[int]func(Message, bool)), now: time.Now}
}

// Publish replaces the current message.
func (c *Channel) Publish(text string, kind Kind) {
	c.mu.Lock()
	c.msg = Message{Text: text, Kind: kind, PublishedAt: c.now().UTC()}
	c.full = true
	c.seq++
	c.mu.Unlock()

	c.flush()
}

// Clear empties the slot. Clearing an empty channel still notifies
// subscribers so views can reset their timers.
func (c *Channel) Clear() {
	c.mu.Lock()
	c.msg = Message{}
	c.full = false
	c.seq++
	c.mu.Unlock()

	c.flush()
}

// flush delivers the slot as it is now. A message replaced before its turn
// is skipped, so subscribers always end on what Current returns.
func (c *Channel) flush() {
	c.deliver.Lock()
	defer c.deliver.Unlock()

	c.mu.Lock()
	msg, full, seq := c.msg, c.full, c.seq
	subs := c.subscribers()
	c.mu.Unlock()

	if seq == c.shown {
		return
	}
	c.shown = seq
	for _, fn := range subs {
		fn(msg, full)
	}
}

// Current returns the message in the slot, if any.
func (c *Channel) Current() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.msg, c.full
}

// Subscribe registers fn to run after every Publish or Clear. Callbacks run
// one at a time on a publishing goroutine, must not block and must not
// publish. The returned func
// removes the subscription.
func (c *Channel) Subscribe(fn func(msg Message, ok bool)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Channel) subscribers() []func(Message, bool) {
	out := make([]func(Message, bool), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

// userMessager is implemented by errors that carry text meant for the user,
// such as the backend's {msg} error body.
type userMessager interface {
	UserMessage() string
}

// ErrorText picks the best text to show for err: the first user message
// found in its chain, or GenericError.
func ErrorText(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		if s := um.UserMessage(); s != "" {
			return s
		}
	}
	return GenericError
}
