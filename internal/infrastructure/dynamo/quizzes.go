package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/libraria-api/internal/domain"
)

// QuizRepo provides typed DynamoDB operations for the quizzes table.
type QuizRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewQuizRepo(client *dynamodb.Client, tableName string) *QuizRepo {
	return &QuizRepo{client: client, tableName: tableName}
}

func (r *QuizRepo) Put(ctx context.Context, q *domain.Quiz) error {
	item, err := attributevalue.MarshalMap(q)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *QuizRepo) Get(ctx context.Context, quizID string) (*domain.Quiz, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("quiz_id", quizID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("quiz %s: %w", quizID, domain.ErrNotFound)
	}
	var q domain.Quiz
	if err := attributevalue.UnmarshalMap(out.Item, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// MarkNotified applies the post-success tracking update with an atomic
// counter increment, same as for books.
func (r *QuizRepo) MarkNotified(ctx context.Context, quizID string, at time.Time) error {
	return markNotified(ctx, r.client, r.tableName, strKey("quiz_id", quizID), at)
}

// ResetNotification clears all three tracking fields. Re-running it is a no-op.
func (r *QuizRepo) ResetNotification(ctx context.Context, quizID string) error {
	return resetNotification(ctx, r.client, r.tableName, strKey("quiz_id", quizID))
}
