package domain

import "time"

// NotificationType is the closed set of notification kinds the mobile client
// understands. The string values are part of the wire contract.
type NotificationType string

const (
	NotificationNewBook      NotificationType = "newBook"
	NotificationNewQuiz      NotificationType = "newQuiz"
	NotificationUpdate       NotificationType = "update"
	NotificationAnnouncement NotificationType = "announcement"
)

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationNewBook, NotificationNewQuiz, NotificationUpdate, NotificationAnnouncement:
		return true
	}
	return false
}

// Notification is an immutable history entry appended after a successful
// dispatch (or composed manually by an administrator). It is distinct from
// the tracking fields on the subject entity and may drift from them: the
// tracker is authoritative for "was this entity notified".
type Notification struct {
	NotificationID string           `json:"id" dynamodbav:"notification_id"`
	Title          string           `json:"title" dynamodbav:"title"`
	Description    string           `json:"description" dynamodbav:"description"`
	Type           NotificationType `json:"type" dynamodbav:"type"`
	BookID         *string          `json:"book_id,omitempty" dynamodbav:"book_id"`
	QuizID         *string          `json:"quiz_id,omitempty" dynamodbav:"quiz_id"`
	ImageURL       string           `json:"image_url,omitempty" dynamodbav:"image_url"`
	CreatedAt      time.Time        `json:"created_at" dynamodbav:"created_at"`

	// Active is a visibility toggle for the history feed; records are
	// deactivated, never deleted. Stored as 0/1 so it can key a GSI.
	Active int `json:"-" dynamodbav:"active"`
}
