package line

// EventKind discriminates the inbound event variants the bot answers.
type EventKind string

const (
	// EventText is a plain text message.
	EventText EventKind = "text"
	// EventImage is an image message whose content must be fetched
	// separately by message ID.
	EventImage EventKind = "image"
)

// Event is one parsed unit of platform delivery requiring a reply. The reply
// token is opaque, single-use, and time-limited; it is owned by the platform.
type Event struct {
	Kind       EventKind
	ReplyToken string

	// Text is set for EventText.
	Text string
	// MessageID is set for EventImage and keys the media fetch.
	MessageID string
}
