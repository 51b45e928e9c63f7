package cloud

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// ExportRequest is the monthly export Lambda's input. Month is YYYY-MM.
type ExportRequest struct {
	Month string `json:"month"`
}

// ExportResult is what the export Lambda returns.
type ExportResult struct {
	Month string `json:"month"`
	Key   string `json:"key"`
	URL   string `json:"url"`
	Rows  int    `json:"rows"`
}

type LambdaClient struct {
	svc      *lambda.Client
	function string
}

func NewLambdaClient(cfg aws.Config, function string) *LambdaClient {
	return &LambdaClient{svc: lambda.NewFromConfig(cfg), function: function}
}

// InvokeExportAsync queues the export without waiting for it.
func (c *LambdaClient) InvokeExportAsync(ctx context.Context, month string) error {
	payload, err := json.Marshal(ExportRequest{Month: month})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	_, err = c.svc.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(c.function),
		Payload:        payload,
		InvocationType: types.InvocationTypeEvent,
	})
	if err != nil {
		return fmt.Errorf("failed to invoke Lambda: %w", err)
	}
	return nil
}

// InvokeExport runs the export and waits for its result.
func (c *LambdaClient) InvokeExport(ctx context.Context, month string) (ExportResult, error) {
	var out ExportResult
	payload, err := json.Marshal(ExportRequest{Month: month})
	if err != nil {
		return out, fmt.Errorf("failed to marshal payload: %w", err)
	}
	res, err := c.svc.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(c.function),
		Payload:        payload,
		InvocationType: types.InvocationTypeRequestResponse,
	})
	if err != nil {
		return out, fmt.Errorf("failed to invoke Lambda: %w", err)
	}
	if res.FunctionError != nil {
		return out, fmt.Errorf("lambda function error: %s", aws.ToString(res.FunctionError))
	}
	if err := json.Unmarshal(res.Payload, &out); err != nil {
		return out, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return out, nil
}
