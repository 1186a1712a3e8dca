package config

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

func TestGetters(t *testing.T) {
	cfg := map[string]string{
		"PORT":        "9000",
		"BAD_INT":     "abc",
		"FLAG":        "true",
		"TIMEOUT":     "15",
		"ORIGINS":     "https://a.io, ,https://b.io",
		"EMPTY_VALUE": "",
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string present", GetString(cfg, "PORT", "8080"), "9000"},
		{"string missing", GetString(cfg, "NOPE", "8080"), "8080"},
		{"string empty falls back", GetString(cfg, "EMPTY_VALUE", "x"), "x"},
		{"int parsed", GetInt(cfg, "PORT", 1), 9000},
		{"int invalid", GetInt(cfg, "BAD_INT", 7), 7},
		{"bool", GetBool(cfg, "FLAG", false), true},
		{"seconds", GetSeconds(cfg, "TIMEOUT", time.Second), 15 * time.Second},
		{"seconds default", GetSeconds(cfg, "NOPE", time.Second), time.Second},
		{"nil map", GetString(nil, "PORT", "d"), "d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	origins := GetList(cfg, "ORIGINS")
	if len(origins) != 2 || origins[0] != "https://a.io" || origins[1] != "https://b.io" {
		t.Errorf("GetList = %v", origins)
	}
}

type fakeSSM struct {
	pages [][]types.Parameter
}

func (f *fakeSSM) GetParametersByPath(_ context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	idx := 0
	if in.NextToken != nil {
		idx = 1
	}
	out := &ssm.GetParametersByPathOutput{Parameters: f.pages[idx]}
	if idx+1 < len(f.pages) {
		out.NextToken = aws.String("next")
	}
	return out, nil
}

func TestMergeParameters(t *testing.T) {
	client := &fakeSSM{pages: [][]types.Parameter{
		{{Name: aws.String("/linkme/prod/jwt_secret"), Value: aws.String("from-ssm")}},
		{{Name: aws.String("/linkme/prod/S3_BUCKET"), Value: aws.String("cards")}},
	}}
	cfg := map[string]string{"JWT_SECRET": "from-env"}

	if err := MergeParameters(context.Background(), client, cfg, "/linkme/prod"); err != nil {
		t.Fatalf("MergeParameters: %v", err)
	}
	if cfg["JWT_SECRET"] != "from-env" {
		t.Errorf("env value overwritten: %q", cfg["JWT_SECRET"])
	}
	if cfg["S3_BUCKET"] != "cards" {
		t.Errorf("S3_BUCKET = %q, want cards", cfg["S3_BUCKET"])
	}
}
