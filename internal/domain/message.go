package domain

// Types for the inbound Telegram webhook payload. Field names mirror the
// Bot API wire format; only the fields the pipeline consumes are modeled.

type User struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

type Chat struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Type      string `json:"type"` // private | group | supergroup | channel
}

// PhotoSize is one rendition of a photo. Telegram sends several per image;
// the pipeline always uses the first one listed.
type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileSize     int64  `json:"file_size,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

type Voice struct {
	Duration     int    `json:"duration"`
	MimeType     string `json:"mime_type"`
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileSize     int64  `json:"file_size,omitempty"`
}

type Document struct {
	FileName     string `json:"file_name"`
	MimeType     string `json:"mime_type"`
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	FileSize     int64  `json:"file_size,omitempty"`
}

// MessageKind classifies which variant of a Message is populated.
type MessageKind int

const (
	KindUnknown MessageKind = iota
	KindText
	KindImage
	KindVoice
	KindDocument
)

func (k MessageKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	case KindVoice:
		return "voice"
	case KindDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Message is one inbound chat message. Exactly one of the variant payloads
// (Text, Photos, Voice, Document) is set per message; Kind reports which.
type Message struct {
	MessageID int64       `json:"message_id"`
	Chat      Chat        `json:"chat"`
	From      User        `json:"from"`
	Date      int64       `json:"date"` // unix seconds, from the sender's clock
	Text      string      `json:"text,omitempty"`
	Caption   string      `json:"caption,omitempty"` // accompanies the image and document variants
	Photos    []PhotoSize `json:"photo,omitempty"`
	Voice     *Voice      `json:"voice,omitempty"`
	Document  *Document   `json:"document,omitempty"`
}

func (m *Message) Kind() MessageKind {
	switch {
	case m.Text != "":
		return KindText
	case len(m.Photos) > 0:
		return KindImage
	case m.Voice != nil:
		return KindVoice
	case m.Document != nil:
		return KindDocument
	default:
		return KindUnknown
	}
}

// Update is one webhook delivery.
type Update struct {
	UpdateID int64   `json:"update_id"`
	Message  Message `json:"message"`
}
