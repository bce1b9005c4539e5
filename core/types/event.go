package types

// Event is a typed payload emitted during marketplace state transitions. The
// attribute map holds canonical string encodings so events can be forwarded to
// JSON consumers without further conversion.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
