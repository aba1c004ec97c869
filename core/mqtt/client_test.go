package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopics(t *testing.T) {
	assert.Equal(t, "vpp/supplier/s1/request", RequestTopic("vpp", "s1"))
	assert.Equal(t, "vpp/supplier/+/request", RequestWildcard("vpp"))
	assert.Equal(t, "vpp/coordinator/c1/reply", ReplyTopic("vpp", "c1"))
}

func TestEnvelopeErr(t *testing.T) {
	assert.NoError(t, Envelope{}.Err())
	assert.ErrorIs(t, Envelope{Error: "battery offline"}.Err(), ErrRemote)
}
