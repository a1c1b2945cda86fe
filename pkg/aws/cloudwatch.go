package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

type cloudWatchLogsAPI interface {
	CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	PutRetentionPolicy(ctx context.Context, params *cloudwatchlogs.PutRetentionPolicyInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error)
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

const logRetentionDays = 30

// CloudWatchLogsWriter ships every Write as one log event to a stream named
// after the service and start time. It is meant to be tee'd into zap.
type CloudWatchLogsWriter struct {
	client        cloudWatchLogsAPI
	logGroupName  string
	logStreamName string

	mu            sync.Mutex
	sequenceToken *string
}

// NewCloudWatchLogsWriter creates the log group (if missing) and a fresh stream.
func NewCloudWatchLogsWriter(ctx context.Context, cfg sdkaws.Config, logGroup, serviceName string) (*CloudWatchLogsWriter, error) {
	return newCloudWatchLogsWriter(ctx, cloudwatchlogs.NewFromConfig(cfg), logGroup, serviceName)
}

func newCloudWatchLogsWriter(ctx context.Context, api cloudWatchLogsAPI, logGroup, serviceName string) (*CloudWatchLogsWriter, error) {
	if logGroup == "" {
		logGroup = "/catalog/services"
	}
	w := &CloudWatchLogsWriter{
		client:        api,
		logGroupName:  logGroup,
		logStreamName: fmt.Sprintf("%s-%d", serviceName, time.Now().Unix()),
	}
	if err := w.ensureLogGroup(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure log group: %w", err)
	}
	_, err := api.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  sdkaws.String(w.logGroupName),
		LogStreamName: sdkaws.String(w.logStreamName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create log stream: %w", err)
	}
	return w, nil
}

func (w *CloudWatchLogsWriter) ensureLogGroup(ctx context.Context) error {
	_, err := w.client.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: sdkaws.String(w.logGroupName),
	})
	var exists *types.ResourceAlreadyExistsException
	if err != nil && !errors.As(err, &exists) {
		return err
	}

	_, err = w.client.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    sdkaws.String(w.logGroupName),
		RetentionInDays: sdkaws.Int32(logRetentionDays),
	})
	if err != nil {
		return fmt.Errorf("failed to set retention policy: %w", err)
	}
	return nil
}

// Write never fails; shipping errors go to stderr so logging cannot block the service.
func (w *CloudWatchLogsWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := w.client.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  sdkaws.String(w.logGroupName),
		LogStreamName: sdkaws.String(w.logStreamName),
		SequenceToken: w.sequenceToken,
		LogEvents: []types.InputLogEvent{{
			Message:   sdkaws.String(string(p)),
			Timestamp: sdkaws.Int64(time.Now().UnixMilli()),
		}},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "CloudWatch write error: %v\n", err)
		return len(p), nil
	}
	w.sequenceToken = out.NextSequenceToken
	return len(p), nil
}
