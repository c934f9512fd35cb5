package infra

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingPublisher struct {
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.keys = append(p.keys, key)
	return p.err
}

func TestFanout_Publish(t *testing.T) {
	broken := errors.New("broker down")
	a := &recordingPublisher{err: broken}
	b := &recordingPublisher{}

	err := Fanout{a, nil, b}.Publish(context.Background(), "order.created", struct{}{})

	assert.ErrorIs(t, err, broken)
	assert.Equal(t, []string{"order.created"}, a.keys)
	assert.Equal(t, []string{"order.created"}, b.keys)
}
