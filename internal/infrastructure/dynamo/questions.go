package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/libraria-api/internal/domain"
)

// QuestionRepo provides typed DynamoDB operations for the questions table.
type QuestionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewQuestionRepo(client *dynamodb.Client, tableName string) *QuestionRepo {
	return &QuestionRepo{client: client, tableName: tableName}
}

func (r *QuestionRepo) Put(ctx context.Context, q *domain.Question) error {
	item, err := attributevalue.MarshalMap(q)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// CountByQuiz returns the number of questions for a quiz, counted server-side
// through the quiz_id GSI. Dispatch payloads always count at call time
// rather than caching the number on the quiz item.
func (r *QuestionRepo) CountByQuiz(ctx context.Context, quizID string) (int, error) {
	var total int
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String("quiz_id-index"),
			KeyConditionExpression: aws.String("quiz_id = :qid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":qid": &types.AttributeValueMemberS{Value: quizID},
			},
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, err
		}
		total += int(out.Count)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return total, nil
}

// ListByQuiz returns a quiz's questions ordered by their order attribute.
func (r *QuestionRepo) ListByQuiz(ctx context.Context, quizID string) ([]domain.Question, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("quiz_id-index"),
		KeyConditionExpression: aws.String("quiz_id = :qid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":qid": &types.AttributeValueMemberS{Value: quizID},
		},
	})
	if err != nil {
		return nil, err
	}
	var questions []domain.Question
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &questions); err != nil {
		return nil, err
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })
	return questions, nil
}
