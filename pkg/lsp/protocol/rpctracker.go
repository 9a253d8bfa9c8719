package protocol

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
)

type rpcTrackerContextKey struct{}

type Direction string

const (
	// Incoming is a request or notification from the editor.
	Incoming Direction = "incoming"
	// Outgoing is a response to an incoming request.
	Outgoing Direction = "outgoing"
	// Pushed is a notification the server sent on its own.
	Pushed Direction = "pushed"
)

// RPCMessage is one message seen by an RPCTracker.
type RPCMessage struct {
	Direction Direction
	Method    string
	Request   *jrpc2.Request
	Response  *jrpc2.Response
	// Params holds the JSON of pushed notifications.
	Params json.RawMessage
	Time   time.Time
}

// RPCTracker records traffic through a ServerInstance so tests can wait for
// notifications that arrive asynchronously.
type RPCTracker struct {
	mu sync.RWMutex

	messages     []RPCMessage
	subs         map[chan RPCMessage]struct{}
	knownMethods map[string]string
}

var _ CallbackRPCLogger = (*RPCTracker)(nil)

func NewRPCTracker() *RPCTracker {
	return &RPCTracker{
		subs:         make(map[chan RPCMessage]struct{}),
		knownMethods: make(map[string]string),
	}
}

func (t *RPCTracker) LogRequest(ctx context.Context, req *jrpc2.Request) {
	if !req.IsNotification() {
		t.mu.Lock()
		t.knownMethods[req.ID()] = req.Method()
		t.mu.Unlock()
	}
	t.Track(RPCMessage{Direction: Incoming, Method: req.Method(), Request: req})
}

func (t *RPCTracker) LogResponse(ctx context.Context, resp *jrpc2.Response) {
	t.mu.RLock()
	method := t.knownMethods[resp.ID()]
	t.mu.RUnlock()
	t.Track(RPCMessage{Direction: Outgoing, Method: method, Response: resp})
}

func (t *RPCTracker) LogCallbackRequestRaw(ctx context.Context, method string, params any) {
	raw, err := json.Marshal(params)
	if err != nil {
		raw = nil
	}
	t.Track(RPCMessage{Direction: Pushed, Method: method, Params: raw})
}

func (t *RPCTracker) LogCallbackResponse(ctx context.Context, res *jrpc2.Response) {}

// Subscribe delivers every message tracked after the call. The returned
// function unsubscribes and closes the channel.
func (t *RPCTracker) Subscribe(bufSize int) (<-chan RPCMessage, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan RPCMessage, bufSize)
	t.subs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subs, ch)
			close(ch)
		})
	}
}

func (t *RPCTracker) Track(msg RPCMessage) {
	if t == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	msg.Time = time.Now()
	t.messages = append(t.messages, msg)

	for ch := range t.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (t *RPCTracker) GetMessages() []RPCMessage {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.messages)
}

func (t *RPCTracker) MessagesSinceLike(since time.Time, predicate func(RPCMessage) bool) []RPCMessage {
	return slices.DeleteFunc(t.GetMessages(), func(msg RPCMessage) bool {
		return msg.Time.Before(since) || !predicate(msg)
	})
}

func (t *RPCTracker) Clear() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = nil
}

// WaitForMessages waits until count messages tracked at or after since match
// predicate. It returns what it found and whether that was enough.
func (t *RPCTracker) WaitForMessages(since time.Time, count int, timeout time.Duration, predicate func(RPCMessage) bool) ([]RPCMessage, bool) {
	ch, unsub := t.Subscribe(64)
	defer unsub()

	result := t.MessagesSinceLike(since, predicate)
	if len(result) >= count {
		return result, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ch:
			result = t.MessagesSinceLike(since, predicate)
			if len(result) >= count {
				return result, true
			}
		case <-timer.C:
			return result, len(result) >= count
		}
	}
}

// PushedNotifications returns the params of every notification the server
// pushed for method, decoded into T.
func PushedNotifications[T any](t *RPCTracker, method string) []T {
	var out []T
	for _, msg := range t.GetMessages() {
		if msg.Direction != Pushed || msg.Method != method {
			continue
		}
		var v T
		if err := json.Unmarshal(msg.Params, &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}

func GetRPCTrackerFromContext(ctx context.Context) *RPCTracker {
	if tracker, ok := ctx.Value(rpcTrackerContextKey{}).(*RPCTracker); ok {
		return tracker
	}
	return nil
}

func ContextWithRPCTracker(ctx context.Context, tracker *RPCTracker) context.Context {
	return context.WithValue(ctx, rpcTrackerContextKey{}, tracker)
}
