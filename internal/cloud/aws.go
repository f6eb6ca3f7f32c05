package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// AWS bundles the loaded SDK config with an optional endpoint override used
// for LocalStack.
type AWS struct {
	Config   aws.Config
	Endpoint string
}

// Load resolves credentials and region through the default chain.
func Load(ctx context.Context, region, endpoint string) (*AWS, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &AWS{Config: cfg, Endpoint: endpoint}, nil
}

func (a *AWS) S3() *s3.Client {
	return s3.NewFromConfig(a.Config, func(o *s3.Options) {
		if a.Endpoint != "" {
			o.BaseEndpoint = aws.String(a.Endpoint)
			o.UsePathStyle = true
		}
	})
}

func (a *AWS) SNS() *sns.Client {
	return sns.NewFromConfig(a.Config, func(o *sns.Options) {
		if a.Endpoint != "" {
			o.BaseEndpoint = aws.String(a.Endpoint)
		}
	})
}
