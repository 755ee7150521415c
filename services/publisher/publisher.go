package publisher

// Publisher pushes stored advertisements to downstream consumers.
type Publisher interface {
	// Publish publishes a message under the given source key.
	Publish(source string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length.
	TrimStreams() error

	// Close closes the publisher connection.
	Close() error
}
