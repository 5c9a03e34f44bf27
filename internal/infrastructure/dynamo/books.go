package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/libraria-api/internal/domain"
)

// BookRepo provides typed DynamoDB operations for the books table.
type BookRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewBookRepo(client *dynamodb.Client, tableName string) *BookRepo {
	return &BookRepo{client: client, tableName: tableName}
}

func (r *BookRepo) Put(ctx context.Context, b *domain.Book) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *BookRepo) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("book_id", bookID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("book %s: %w", bookID, domain.ErrNotFound)
	}
	var b domain.Book
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Update applies a partial update so concurrent writers touching other
// fields are not clobbered.
func (r *BookRepo) Update(ctx context.Context, bookID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("book_id", bookID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// MarkNotified applies the post-success tracking update in a single request:
// the counter increment uses ADD, so concurrent dispatches never lose an
// update even when each of them actually sent a push.
func (r *BookRepo) MarkNotified(ctx context.Context, bookID string, at time.Time) error {
	return markNotified(ctx, r.client, r.tableName, strKey("book_id", bookID), at)
}

// ResetNotification clears all three tracking fields. Re-running it is a no-op.
func (r *BookRepo) ResetNotification(ctx context.Context, bookID string) error {
	return resetNotification(ctx, r.client, r.tableName, strKey("book_id", bookID))
}

// markNotified and resetNotification are shared between the books and
// quizzes tables: the tracking attributes have identical names on both.
func markNotified(ctx context.Context, client *dynamodb.Client, tableName string, key map[string]types.AttributeValue, at time.Time) error {
	sentAt, err := attributevalue.Marshal(at)
	if err != nil {
		return fmt.Errorf("marshal sent_at: %w", err)
	}
	_, err = client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(tableName),
		Key:              key,
		UpdateExpression: aws.String("SET notification_sent = :sent, notification_sent_at = :at ADD notification_count :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sent": &types.AttributeValueMemberBOOL{Value: true},
			":at":   sentAt,
			":one":  &types.AttributeValueMemberN{Value: "1"},
		},
	})
	return err
}

func resetNotification(ctx context.Context, client *dynamodb.Client, tableName string, key map[string]types.AttributeValue) error {
	_, err := client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(tableName),
		Key:              key,
		UpdateExpression: aws.String("SET notification_sent = :no, notification_count = :zero REMOVE notification_sent_at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":no":   &types.AttributeValueMemberBOOL{Value: false},
			":zero": &types.AttributeValueMemberN{Value: "0"},
		},
	})
	return err
}
