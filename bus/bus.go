// bus.go
package bus

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
)

// -----------------------------------------------------------------------------
// Topics
// -----------------------------------------------------------------------------

// Topic is a sequence of comparable tokens, usually strings and ints.
// In subscriptions "+" matches exactly one token and a trailing "#" matches
// any number of remaining tokens, including none.
type Topic []any

const (
	wildOne  = "+"
	wildRest = "#"
)

// T builds a topic. It panics on a non-comparable token, since such a
// token could never be used as a trie key.
func T(tokens ...any) Topic {
	for _, tok := range tokens {
		if tok == nil || !reflect.TypeOf(tok).Comparable() {
			panic("bus: non-comparable topic token")
		}
	}
	return Topic(tokens)
}

// -----------------------------------------------------------------------------
// Message
// -----------------------------------------------------------------------------

type Message struct {
	Topic    Topic
	Payload  any
	Retained bool
	ReplyTo  Topic
}

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

type Subscription struct {
	topic Topic
	ch    chan *Message
	conn  *Connection
}

func (s *Subscription) Topic() Topic             { return s.topic }
func (s *Subscription) Channel() <-chan *Message { return s.ch }
func (s *Subscription) Unsubscribe()             { s.conn.Unsubscribe(s) }

// -----------------------------------------------------------------------------
// Trie node
// -----------------------------------------------------------------------------

type node struct {
	children map[any]*node
	subs     []*Subscription
	retained *Message
}

func (n *node) child(tok any, create bool) *node {
	if c, ok := n.children[tok]; ok || !create {
		return c
	}
	if n.children == nil {
		n.children = make(map[any]*node)
	}
	c := &node{}
	n.children[tok] = c
	return c
}

// -----------------------------------------------------------------------------
// Bus
// -----------------------------------------------------------------------------

type Bus struct {
	mu    sync.Mutex
	root  *node
	qLen  int
	reqID atomic.Uint64
}

// NewBus creates a new bus with the given subscription queue length.
func NewBus(queueLen int) *Bus {
	if queueLen <= 0 {
		queueLen = 8
	}
	return &Bus{root: &node{}, qLen: queueLen}
}

func (b *Bus) NewMessage(topic Topic, payload any, retained bool) *Message {
	return &Message{Topic: topic, Payload: payload, Retained: retained}
}

// deliver never blocks: a full queue loses its oldest message.
func deliver(sub *Subscription, msg *Message) {
	select {
	case sub.ch <- msg:
		return
	default:
	}
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- msg:
	default:
	}
}

func (b *Bus) addSubscription(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	for _, tok := range sub.topic {
		n = n.child(tok, true)
	}
	n.subs = append(n.subs, sub)

	collectRetained(b.root, sub.topic, func(m *Message) { deliver(sub, m) })
}

// collectRetained visits retained messages on concrete topics matching pattern.
func collectRetained(n *node, pattern Topic, visit func(*Message)) {
	if len(pattern) == 0 {
		if n.retained != nil {
			visit(n.retained)
		}
		return
	}
	switch pattern[0] {
	case wildRest:
		var walk func(*node)
		walk = func(x *node) {
			if x.retained != nil {
				visit(x.retained)
			}
			for tok, c := range x.children {
				if tok != wildOne && tok != wildRest {
					walk(c)
				}
			}
		}
		walk(n)
	case wildOne:
		for tok, c := range n.children {
			if tok != wildOne && tok != wildRest {
				collectRetained(c, pattern[1:], visit)
			}
		}
	default:
		if c := n.child(pattern[0], false); c != nil {
			collectRetained(c, pattern[1:], visit)
		}
	}
}

// matchSubs visits subscriptions whose pattern matches topic.
func matchSubs(n *node, topic Topic, visit func(*Subscription)) {
	if c := n.child(wildRest, false); c != nil {
		for _, s := range c.subs {
			visit(s)
		}
	}
	if len(topic) == 0 {
		for _, s := range n.subs {
			visit(s)
		}
		return
	}
	if c := n.child(topic[0], false); c != nil {
		matchSubs(c, topic[1:], visit)
	}
	if c := n.child(wildOne, false); c != nil {
		matchSubs(c, topic[1:], visit)
	}
}

// Publish delivers a message to all matching subscribers. A retained
// message is stored for future subscribers; a retained nil payload clears.
func (b *Bus) Publish(msg *Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	matchSubs(b.root, msg.Topic, func(s *Subscription) { deliver(s, msg) })

	if !msg.Retained {
		return
	}
	n := b.root
	for _, tok := range msg.Topic {
		if n = n.child(tok, msg.Payload != nil); n == nil {
			return
		}
	}
	if msg.Payload == nil {
		n.retained = nil
	} else {
		n.retained = msg
	}
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.root
	path := []*node{n}
	for _, tok := range sub.topic {
		if n = n.child(tok, false); n == nil {
			return
		}
		path = append(path, n)
	}
	for i, s := range n.subs {
		if s == sub {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			break
		}
	}
	// Prune empty nodes bottom-up.
	for i := len(sub.topic) - 1; i >= 0; i-- {
		c := path[i+1]
		if len(c.subs) > 0 || len(c.children) > 0 || c.retained != nil {
			break
		}
		delete(path[i].children, sub.topic[i])
	}
}

// -----------------------------------------------------------------------------
// Connection
// -----------------------------------------------------------------------------

type Connection struct {
	bus  *Bus
	id   string
	mu   sync.Mutex
	subs []*Subscription
}

func (b *Bus) NewConnection(id string) *Connection {
	return &Connection{bus: b, id: id}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) NewMessage(topic Topic, payload any, retained bool) *Message {
	return c.bus.NewMessage(topic, payload, retained)
}

func (c *Connection) Publish(msg *Message) { c.bus.Publish(msg) }

// Subscribe registers a subscription owned by this connection. Matching
// retained messages are queued immediately.
func (c *Connection) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan *Message, c.bus.qLen),
		conn:  c,
	}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	c.bus.addSubscription(sub)
	return sub
}

// Unsubscribe removes and closes a subscription owned by this connection.
func (c *Connection) Unsubscribe(sub *Subscription) {
	c.mu.Lock()
	found := false
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if !found {
		return
	}
	c.bus.unsubscribe(sub)
	close(sub.ch)
}

// Disconnect closes all subscriptions.
func (c *Connection) Disconnect() {
	c.mu.Lock()
	subs := c.subs
	c.subs = nil
	c.mu.Unlock()
	for _, sub := range subs {
		c.bus.unsubscribe(sub)
		close(sub.ch)
	}
}

// -----------------------------------------------------------------------------
// Request–Reply
// -----------------------------------------------------------------------------

// Request publishes msg with a private ReplyTo topic and returns the
// subscription replies arrive on. The caller unsubscribes it.
func (c *Connection) Request(msg *Message) *Subscription {
	if len(msg.ReplyTo) == 0 {
		msg.ReplyTo = T("_reply", c.id, int(c.bus.reqID.Add(1)))
	}
	sub := c.Subscribe(msg.ReplyTo)
	c.Publish(msg)
	return sub
}

// RequestWait sends msg and waits for the first reply or ctx expiry.
func (c *Connection) RequestWait(ctx context.Context, msg *Message) (*Message, error) {
	sub := c.Request(msg)
	defer c.Unsubscribe(sub)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case m := <-sub.Channel():
		return m, nil
	}
}

// Reply answers req on its ReplyTo topic. Requests without one are ignored.
func (c *Connection) Reply(req *Message, payload any, retained bool) {
	if len(req.ReplyTo) == 0 {
		return
	}
	c.Publish(c.NewMessage(req.ReplyTo, payload, retained))
}
