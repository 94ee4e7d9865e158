package osp_test

import (
	"testing"
	"time"

	"ospdriver/osp"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Init_succeedsOnAck(t *testing.T) {
	assert := assert.New(t)
	transport := &recordingTransport{}
	engine := osp.New(transport, osp.Callbacks{}, nil)
	engine.CommandTimeout = time.Second

	done := make(chan error, 1)
	go func() { done <- engine.Init(true, nil, 0) }()

	assert.Eventually(func() bool { return transport.count() == 1 }, time.Second, time.Millisecond)
	engine.Dispatch([]byte{osp.MidAck})

	err := <-done
	assert.NoError(err)
}

func Test_Init_surfacesNackAsRetry(t *testing.T) {
	require := require.New(t)
	transport := &recordingTransport{}
	engine := osp.New(transport, osp.Callbacks{}, nil)
	engine.CommandTimeout = time.Second

	done := make(chan error, 1)
	go func() { done <- engine.Init(true, nil, 0) }()

	require.Eventually(func() bool { return transport.count() == 1 }, time.Second, time.Millisecond)
	engine.Dispatch([]byte{osp.MidNack, 5})

	err := <-done
	require.Error(err)
	ospErr, ok := err.(*osp.Error)
	require.True(ok)
	require.Equal(osp.KindRetry, ospErr.Kind)
}

func Test_Transfer_timesOutWithoutReply(t *testing.T) {
	require := require.New(t)
	transport := &recordingTransport{}
	engine := osp.New(transport, osp.Callbacks{}, nil)
	engine.CommandTimeout = 20 * time.Millisecond

	err := engine.Init(true, nil, 0)
	require.Error(err)
	ospErr, ok := err.(*osp.Error)
	require.True(ok)
	require.Equal(osp.KindTimeout, ospErr.Kind)
}

func Test_Transfer_rejectsSecondCommandWhileBusy(t *testing.T) {
	require := require.New(t)
	transport := &recordingTransport{}
	engine := osp.New(transport, osp.Callbacks{}, nil)
	engine.CommandTimeout = 200 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- engine.Init(true, nil, 0) }()
	require.Eventually(func() bool { return transport.count() == 1 }, time.Second, time.Millisecond)

	err := engine.Factory(false, false)
	require.Error(err)
	ospErr, ok := err.(*osp.Error)
	require.True(ok)
	require.Equal(osp.KindBusy, ospErr.Kind)

	<-done // let the first command finish (times out) before the test exits
}

func Test_WaitForReady_wakesOnOkToSend(t *testing.T) {
	require := require.New(t)
	transport := &recordingTransport{}
	engine := osp.New(transport, osp.Callbacks{}, nil)
	engine.ReadyTimeout = time.Second

	done := make(chan error, 1)
	go func() { done <- engine.WaitForReady() }()

	time.Sleep(10 * time.Millisecond)
	engine.Dispatch([]byte{osp.MidOkToSend})

	require.NoError(<-done)
}
