package domain

import "time"

// Book is a paginated reading item and the subject of newBook push notifications.
type Book struct {
	BookID     string `json:"id" dynamodbav:"book_id"`
	Title      string `json:"title" dynamodbav:"title"`
	Author     string `json:"author" dynamodbav:"author"`
	Translator string `json:"translator,omitempty" dynamodbav:"translator"`
	Category   string `json:"category" dynamodbav:"category"`

	// CoverImage is an external URL; CoverKey is an uploaded object key.
	// CoverURL() prefers the uploaded asset.
	CoverImage string `json:"cover_image,omitempty" dynamodbav:"cover_image"`
	CoverKey   string `json:"-" dynamodbav:"cover_key"`
	PDFPath    string `json:"pdf_path,omitempty" dynamodbav:"pdf_path"`

	Active    bool      `json:"is_active" dynamodbav:"active"`
	Version   int       `json:"version" dynamodbav:"version"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`

	NotificationTracking
}

// NotificationTracking records the dispatch state of a notifiable entity.
// The fields are owned by the dispatcher: they change only through the
// post-success tracking update and the administrative reset. The invariant
// NotificationSent == (NotificationCount > 0) holds at all times, and
// NotificationSentAt is non-nil exactly when NotificationSent is true.
type NotificationTracking struct {
	NotificationSent   bool       `json:"notification_sent" dynamodbav:"notification_sent"`
	NotificationSentAt *time.Time `json:"notification_sent_at,omitempty" dynamodbav:"notification_sent_at"`
	NotificationCount  int        `json:"notification_count" dynamodbav:"notification_count"`
}

// CoverURL resolves the cover image for a book: an uploaded asset wins over
// an external URL. objectURL turns an object key into a public URL and is
// supplied by the media store.
func (b *Book) CoverURL(objectURL func(key string) string) string {
	if b.CoverKey != "" && objectURL != nil {
		return objectURL(b.CoverKey)
	}
	return b.CoverImage
}
