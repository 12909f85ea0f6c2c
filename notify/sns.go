package notify

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSSender publishes messages to a topic; the mail pipeline downstream of
// the topic turns them into actual email.
type SNSSender struct {
	Client   *sns.Client
	TopicARN string
}

func NewSNSSender(ctx context.Context, region, topicARN string) (*SNSSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSSender{Client: sns.NewFromConfig(cfg), TopicARN: topicARN}, nil
}

func (s *SNSSender) Send(ctx context.Context, to, subject, body string) error {
	_, err := s.Client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.TopicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"recipient": {
				DataType:    aws.String("String"),
				StringValue: aws.String(to),
			},
		},
	})
	return err
}
