package config

import (
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/linkme-io/linkme-backend/errs"
)

// ParameterLister is the subset of the SSM client used to read parameters.
type ParameterLister interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// MergeSSM loads every parameter under prefix from AWS Parameter Store into cfg.
// Keys already present in cfg win, so a process env var always overrides SSM.
func MergeSSM(ctx context.Context, cfg map[string]string, prefix string) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return errs.NewConfigError("aws", err)
	}
	return MergeParameters(ctx, ssm.NewFromConfig(awsCfg), cfg, prefix)
}

// MergeParameters pages through prefix using client.
func MergeParameters(ctx context.Context, client ParameterLister, cfg map[string]string, prefix string) error {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	loaded := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return errs.NewConfigError("ssm "+prefix, err)
		}
		for _, p := range page.Parameters {
			name := aws.ToString(p.Name)
			key := strings.ToUpper(path.Base(name))
			if _, exists := cfg[key]; exists {
				continue
			}
			cfg[key] = aws.ToString(p.Value)
			loaded++
		}
	}

	log.Info().Str("prefix", prefix).Int("parameters", loaded).Msg("merged SSM parameters")
	return nil
}
