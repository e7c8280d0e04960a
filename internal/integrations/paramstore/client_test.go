package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	getOut *ssm.GetParameterOutput
	getErr error
	lastIn *ssm.GetParameterInput

	pages   []*ssm.GetParametersByPathOutput
	pathErr error
	pathIns []*ssm.GetParametersByPathInput
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.lastIn = in
	return f.getOut, f.getErr
}

func (f *fakeAPI) GetParametersByPath(_ context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	cp := *in
	f.pathIns = append(f.pathIns, &cp)
	if f.pathErr != nil {
		return nil, f.pathErr
	}
	if len(f.pathIns) > len(f.pages) {
		return &ssm.GetParametersByPathOutput{}, nil
	}
	return f.pages[len(f.pathIns)-1], nil
}

func param(name, value string) types.Parameter {
	return types.Parameter{Name: aws.String(name), Value: aws.String(value)}
}

func TestGetParameter_HappyPath(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: aws.String("/trader-bot/open-ai-token"), Value: aws.String(`{"token":"sk"}`), Type: types.ParameterTypeSecureString,
	}}}
	client, err := New(api)
	require.NoError(t, err)

	v, err := client.GetParameter(context.Background(), " /trader-bot/open-ai-token ")
	require.NoError(t, err)
	require.Equal(t, `{"token":"sk"}`, v)
	require.Equal(t, "/trader-bot/open-ai-token", *api.lastIn.Name)
	require.True(t, *api.lastIn.WithDecryption)
}

func TestGetParameter_Errors(t *testing.T) {
	_, err := (&Client{}).GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "not initialized")

	client, err := New(&fakeAPI{})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "  ")
	require.ErrorContains(t, err, "required")

	client, err = New(&fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: aws.String("p")}}})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "missing value")

	client, err = New(&fakeAPI{getErr: errors.New("boom")})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "boom")
}

func TestSettings_PaginatesAndKeysByBaseName(t *testing.T) {
	api := &fakeAPI{pages: []*ssm.GetParametersByPathOutput{
		{
			Parameters: []types.Parameter{
				param("/trader-bot/directory_url", " https://directorio.example/api \n"),
				param("/trader-bot/empty", "  "),
			},
			NextToken: aws.String("next"),
		},
		{
			Parameters: []types.Parameter{
				param("/trader-bot/event_link", "https://tradermexico.mx/meetup"),
				{Name: aws.String("/trader-bot/nil")},
			},
		},
	}}
	client, err := New(api)
	require.NoError(t, err)

	got, err := client.Settings(context.Background(), "/trader-bot/")
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"directory_url": "https://directorio.example/api",
		"event_link":    "https://tradermexico.mx/meetup",
	}, got)

	require.Len(t, api.pathIns, 2)
	require.Equal(t, "/trader-bot/", *api.pathIns[0].Path)
	require.True(t, *api.pathIns[0].WithDecryption)
	require.Nil(t, api.pathIns[0].NextToken)
	require.Equal(t, "next", *api.pathIns[1].NextToken)
}

func TestSettings_PageLimit(t *testing.T) {
	pages := make([]*ssm.GetParametersByPathOutput, maxSettingsPages)
	for i := range pages {
		pages[i] = &ssm.GetParametersByPathOutput{NextToken: aws.String("more")}
	}
	client, err := New(&fakeAPI{pages: pages})
	require.NoError(t, err)

	_, err = client.Settings(context.Background(), "/trader-bot")
	require.ErrorContains(t, err, "pages")
}

func TestSettings_Errors(t *testing.T) {
	client, err := New(&fakeAPI{pathErr: errors.New("access denied")})
	require.NoError(t, err)

	_, err = client.Settings(context.Background(), "/trader-bot")
	require.ErrorContains(t, err, "access denied")

	_, err = client.Settings(context.Background(), " / ")
	require.ErrorContains(t, err, "prefix is required")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.ErrorContains(t, err, "must not be nil")
}
