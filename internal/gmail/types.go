package gmail

// Header placeholders used when a message omits the corresponding header.
const (
	DefaultSubject = "No Subject"
	DefaultSender  = "Unknown Sender"
	DefaultDate    = "Unknown Date"
)

// Fetch defaults. The result cap bounds both latency and downstream
// classification cost.
const (
	DefaultWindowDays = 1
	DefaultMaxResults = 20
)

// Message is one fetched mail message. Category is filled in by the caller
// after classification; everything else comes from the provider. Messages
// live for one fetch cycle and are never persisted.
type Message struct {
	ID       string
	Subject  string
	From     string
	Date     string // raw header value, unparsed
	Body     string // normalized, length-capped
	Category string
}
