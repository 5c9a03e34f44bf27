package domain

import "time"

// Quiz belongs to a book and is the subject of newQuiz push notifications.
// Quiz IDs are caller-supplied strings (the mobile client references them
// directly), unlike books which get generated ULIDs.
type Quiz struct {
	QuizID    string    `json:"id" dynamodbav:"quiz_id"`
	BookID    string    `json:"book_id" dynamodbav:"book_id"`
	Title     string    `json:"title" dynamodbav:"title"`
	Active    bool      `json:"is_active" dynamodbav:"active"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`

	NotificationTracking
}

// Question is a single quiz question. Answer options are stored inline:
// they are only ever read together with the question.
type Question struct {
	QuestionID         string   `json:"id" dynamodbav:"question_id"`
	QuizID             string   `json:"quiz_id" dynamodbav:"quiz_id"`
	Text               string   `json:"text" dynamodbav:"text"`
	Options            []string `json:"options" dynamodbav:"options"`
	CorrectOptionIndex int      `json:"correct_option_index" dynamodbav:"correct_option_index"`
	Order              int      `json:"order" dynamodbav:"order"`
}
