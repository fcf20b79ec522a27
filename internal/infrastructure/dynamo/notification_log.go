package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-identity-api/internal/domain"
)

// NotificationLogRepo appends delivery-attempt audit rows.
// PK: log_id (ULID, sortable by creation time).
type NotificationLogRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationLogRepo(client *dynamodb.Client, tableName string) *NotificationLogRepo {
	return &NotificationLogRepo{client: client, tableName: tableName}
}

func (r *NotificationLogRepo) Put(ctx context.Context, n *domain.NotificationLog) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification log: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByDestination queries the destination-created_at GSI, newest first.
func (r *NotificationLogRepo) ListByDestination(ctx context.Context, destination string, limit int32) ([]domain.NotificationLog, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("destination-index"),
		KeyConditionExpression: aws.String("destination = :d"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberS{Value: destination},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var logs []domain.NotificationLog
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
