package osp

// Transport is the external collaborator that performs SOF/EOF framing,
// checksums and byte delivery over the underlying link. The core only needs
// to hand it fully-formed payloads to send; inbound payloads arrive through
// Engine.Dispatch, called by the transport's own reader goroutine.
type Transport interface {
	// Send transmits a single payload (mid byte followed by its fields).
	Send(payload []byte) error
}
