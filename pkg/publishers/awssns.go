package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/smithy-go"
)

// snsClient defines the minimal subset of the SNS client used by the AWS sender.
type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// awsSNSSender implements queueSender for AWS SNS.
type awsSNSSender struct {
	topicARN string
	fifo     bool
	client   snsClient
	log      Logger
}

// loadAWSConfig uses static credentials when both keys are set and the
// default credential chain otherwise.
func loadAWSConfig(ctx context.Context, region, accessKeyID, secret string) (aws.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(region)}
	if accessKeyID != "" && secret != "" {
		creds := credentials.NewStaticCredentialsProvider(accessKeyID, secret, "")
		opts = append(opts, awscfg.WithCredentialsProvider(creds))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// newAWSSNSSender builds an SNS sender.
func newAWSSNSSender(ctx context.Context, cfg *AWSSNSPublisherConfig, log Logger) (queueSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("aws sns configuration is missing")
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.Region, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, err
	}

	return &awsSNSSender{
		topicARN: cfg.TopicARN,
		fifo:     strings.HasSuffix(cfg.TopicARN, ".fifo"),
		client:   sns.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

// Send publishes the event to the configured SNS topic.
func (s *awsSNSSender) Send(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(snsSubject(evt.Title)),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"source": {
				DataType:    aws.String("String"),
				StringValue: aws.String(evt.Source),
			},
		},
	}
	if s.fifo {
		input.MessageGroupId = aws.String(evt.Source)
		input.MessageDeduplicationId = aws.String(evt.ID)
	}

	resp, err := s.client.Publish(ctx, input)
	if err != nil {
		s.log.ErrorObj("sns publisher send failed", "publisher_sns_error", awsErrorFields(evt.URL, err))
		return fmt.Errorf("send message to sns: %w", err)
	}
	s.log.DebugObj("sns publisher delivered event", "publisher_sns_delivery", map[string]any{
		"message_id": aws.ToString(resp.MessageId),
		"url":        evt.URL,
	})
	return nil
}

// snsSubject fits a release title into the 100 character SNS subject limit.
func snsSubject(title string) string {
	const maxLen = 100
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return "press release"
	}
	if r := []rune(title); len(r) > maxLen {
		return string(r[:maxLen-3]) + "..."
	}
	return title
}

// awsErrorFields adds the service error code when err came back from AWS.
func awsErrorFields(url string, err error) map[string]any {
	fields := map[string]any{"url": url, "error": err.Error()}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		fields["aws_code"] = apiErr.ErrorCode()
		fields["aws_fault"] = apiErr.ErrorFault().String()
	}
	return fields
}
