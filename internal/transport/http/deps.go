package http

import (
	"github.com/libraria-api/internal/infrastructure/dynamo"
	"github.com/libraria-api/internal/infrastructure/push"
	s3infra "github.com/libraria-api/internal/infrastructure/s3"
	"go.uber.org/zap"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	BookRepo         *dynamo.BookRepo
	QuizRepo         *dynamo.QuizRepo
	QuestionRepo     *dynamo.QuestionRepo
	NotificationRepo *dynamo.NotificationRepo
	CoverStore       *s3infra.Store
	Sender           push.Sender
	Logger           *zap.Logger
}
