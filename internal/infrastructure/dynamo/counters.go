package dynamo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// CounterRepo hands out store-assigned sequential ids via an atomic
// UpdateItem ADD on the counters table. PK: counter_name.
type CounterRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCounterRepo(client *dynamodb.Client, tableName string) *CounterRepo {
	return &CounterRepo{client: client, tableName: tableName}
}

// Next increments and returns the named counter. The first call for a name
// returns 1; ADD creates the item when it does not exist yet.
func (r *CounterRepo) Next(ctx context.Context, name string) (int64, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("counter_name", name),
		UpdateExpression:         aws.String("ADD #v :one"),
		ExpressionAttributeNames: map[string]string{"#v": "current_value"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, err)
	}
	av, ok := out.Attributes["current_value"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("counter %s: unexpected attribute type", name)
	}
	n, err := strconv.ParseInt(av.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter %s: parse value: %w", name, err)
	}
	return n, nil
}
