package transport

// Sink delivers one framed sentence to an output. Delivery is
// fire-and-forget: implementations report errors, the caller logs them and
// keeps ticking.
type Sink interface {
	Send(sentence []byte) error
	Close() error
}
