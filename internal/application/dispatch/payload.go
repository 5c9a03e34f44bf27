package dispatch

import (
	"fmt"
	"strconv"

	"github.com/libraria-api/internal/domain"
)

// Payload is a typed notification payload for one notification kind. Wire
// returns the string-keyed data map sent to the gateway; building it from
// typed fields (with numeric coercion and empty-value omission done here)
// keeps non-string values out of the wire contract by construction.
type Payload interface {
	Title() string
	Body() string
	Wire() map[string]string
}

// BookPayload announces a newly published book.
type BookPayload struct {
	BookID     string
	BookTitle  string
	Author     string
	Category   string
	CoverImage string
}

func (p BookPayload) Title() string { return "📚 Libër i ri!" }

func (p BookPayload) Body() string { return fmt.Sprintf("%s nga %s", p.BookTitle, p.Author) }

func (p BookPayload) Wire() map[string]string {
	return wireData(map[string]string{
		"type":        string(domain.NotificationNewBook),
		"book_id":     p.BookID,
		"title":       p.BookTitle,
		"author":      p.Author,
		"category":    p.Category,
		"cover_image": p.CoverImage,
	})
}

// QuizPayload announces a newly published quiz. QuestionCount is computed at
// dispatch time, never cached on the quiz.
type QuizPayload struct {
	QuizID        string
	QuizTitle     string
	BookID        string
	BookTitle     string
	Category      string
	CoverImage    string
	QuestionCount int
}

func (p QuizPayload) Title() string { return "🎯 Kuiz i ri!" }

func (p QuizPayload) Body() string {
	return fmt.Sprintf("%s - %d pyetje për '%s'", p.QuizTitle, p.QuestionCount, p.BookTitle)
}

func (p QuizPayload) Wire() map[string]string {
	return wireData(map[string]string{
		"type":           string(domain.NotificationNewQuiz),
		"quiz_id":        p.QuizID,
		"book_id":        p.BookID,
		"quiz_title":     p.QuizTitle,
		"book_title":     p.BookTitle,
		"question_count": strconv.Itoa(p.QuestionCount),
		"category":       p.Category,
		"cover_image":    p.CoverImage,
	})
}

// CustomPayload carries an administrator-composed notification. Data values
// arrive as decoded JSON and are coerced to strings; nil entries are dropped.
type CustomPayload struct {
	NotificationTitle string
	NotificationBody  string
	Data              map[string]interface{}
}

func (p CustomPayload) Title() string { return p.NotificationTitle }

func (p CustomPayload) Body() string { return p.NotificationBody }

func (p CustomPayload) Wire() map[string]string {
	out := make(map[string]string, len(p.Data))
	for k, v := range p.Data {
		if v == nil {
			continue
		}
		out[k] = coerceString(v)
	}
	return out
}

// wireData drops empty-valued keys: an optional field that was never set
// must be absent from the wire map, not present as "".
func wireData(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func coerceString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64: // the only numeric type encoding/json produces
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
