package aws

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicMessage(t *testing.T) {
	input := TopicMessage("arn:aws:sns:ap-south-1:1:rm", "New lead", `{"id":"1"}`, map[string]string{
		"status": "offered",
	})

	assert.Equal(t, "arn:aws:sns:ap-south-1:1:rm", aws.ToString(input.TopicArn))
	assert.Equal(t, "New lead", aws.ToString(input.Subject))
	assert.Equal(t, `{"id":"1"}`, aws.ToString(input.Message))
	require.Contains(t, input.MessageAttributes, "status")
	assert.Equal(t, "offered", aws.ToString(input.MessageAttributes["status"].StringValue))
	assert.Equal(t, "String", aws.ToString(input.MessageAttributes["status"].DataType))
}

func TestTopicMessageWithoutAttributes(t *testing.T) {
	input := TopicMessage("arn", "s", "b", nil)
	assert.Nil(t, input.MessageAttributes)
}
