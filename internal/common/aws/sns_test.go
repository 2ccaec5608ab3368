package aws

import (
	"context"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSNS struct {
	mock.Mock
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*sns.PublishOutput)
	return out, args.Error(1)
}

func TestPublishMessage(t *testing.T) {
	api := new(mockSNS)
	api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return awssdk.ToString(in.TopicArn) == "arn:aws:sns:us-east-1:123:risk" &&
			awssdk.ToString(in.Subject) == "High bankruptcy risk" &&
			awssdk.ToString(in.MessageAttributes["verdict"].StringValue) == "Bankrupt"
	})).Return(&sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil)

	client := NewSNSClientWithAPI(api)
	id, err := client.PublishMessage(context.Background(), "arn:aws:sns:us-east-1:123:risk",
		"High bankruptcy risk", `{"risk":91.5}`, map[string]string{"verdict": "Bankrupt"})

	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	api.AssertExpectations(t)
}

func TestPublishMessage_Error(t *testing.T) {
	api := new(mockSNS)
	api.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := NewSNSClientWithAPI(api).PublishMessage(context.Background(), "arn", "", "{}", nil)
	assert.EqualError(t, err, "throttled")
}
