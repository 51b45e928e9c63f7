package cloud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// ErrAlertNotFound is returned when acknowledging an alert ID the table does
// not hold.
var ErrAlertNotFound = errors.New("alert not found")

// Alert is a critical status finding. The table is keyed by alertId with a
// tagNo-timestamp-index GSI.
type Alert struct {
	AlertID      string `dynamodbav:"alertId" json:"alert_id"`
	TagNo        string `dynamodbav:"tagNo" json:"tag_no"`
	Timestamp    int64  `dynamodbav:"timestamp" json:"timestamp"`
	RecordKind   string `dynamodbav:"recordKind" json:"record_kind"`
	RecordID     int64  `dynamodbav:"recordId" json:"record_id"`
	Severity     string `dynamodbav:"severity" json:"severity"`
	Message      string `dynamodbav:"message" json:"message"`
	Acknowledged bool   `dynamodbav:"acknowledged" json:"acknowledged"`
}

type DynamoDBClient struct {
	svc   *dynamodb.Client
	table string
}

func NewDynamoDBClient(cfg aws.Config, table string) *DynamoDBClient {
	return &DynamoDBClient{svc: dynamodb.NewFromConfig(cfg), table: table}
}

// CreateAlert stores a with a fresh ID and the current time when unset.
func (c *DynamoDBClient) CreateAlert(ctx context.Context, a Alert) (Alert, error) {
	if a.AlertID == "" {
		a.AlertID = uuid.NewString()
	}
	if a.Timestamp == 0 {
		a.Timestamp = time.Now().Unix()
	}
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return a, fmt.Errorf("failed to marshal alert: %w", err)
	}
	_, err = c.svc.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	})
	if err != nil {
		return a, fmt.Errorf("failed to create alert: %w", err)
	}
	return a, nil
}

// AlertsForTag returns alerts for tag, newest first, across every result page.
func (c *DynamoDBClient) AlertsForTag(ctx context.Context, tag string) ([]Alert, error) {
	p := dynamodb.NewQueryPaginator(c.svc, &dynamodb.QueryInput{
		TableName:              aws.String(c.table),
		IndexName:              aws.String("tagNo-timestamp-index"),
		KeyConditionExpression: aws.String("tagNo = :tag"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tag": &types.AttributeValueMemberS{Value: tag},
		},
		ScanIndexForward: aws.Bool(false),
	})
	alerts := []Alert{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query alerts: %w", err)
		}
		var batch []Alert
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal alerts: %w", err)
		}
		alerts = append(alerts, batch...)
	}
	return alerts, nil
}

// AcknowledgeAlert marks an existing alert acknowledged. Unknown IDs yield
// ErrAlertNotFound and write nothing.
func (c *DynamoDBClient) AcknowledgeAlert(ctx context.Context, alertID string) error {
	_, err := c.svc.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(c.table),
		Key: map[string]types.AttributeValue{
			"alertId": &types.AttributeValueMemberS{Value: alertID},
		},
		ConditionExpression: aws.String("attribute_exists(alertId)"),
		UpdateExpression:    aws.String("SET acknowledged = :ack, acknowledgedAt = :time"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ack":  &types.AttributeValueMemberBOOL{Value: true},
			":time": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", time.Now().Unix())},
		},
	})
	return ackError(err, alertID)
}

func ackError(err error, alertID string) error {
	if err == nil {
		return nil
	}
	var missing *types.ConditionalCheckFailedException
	if errors.As(err, &missing) {
		return fmt.Errorf("%w: %s", ErrAlertNotFound, alertID)
	}
	return fmt.Errorf("failed to acknowledge alert: %w", err)
}
