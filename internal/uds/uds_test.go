package uds

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (*Server, string) {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), DefaultSocketName)
	srv := NewServer(socketPath)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Stop() })
	return srv, socketPath
}

func TestRequestResponseRoundTrip(t *testing.T) {
	srv, socketPath := startServer(t)
	srv.Handle("ping", func(req *Request) *Response {
		return SuccessResponse(map[string]string{"status": "ok"})
	})

	resp, err := NewClient(socketPath).SendCommand("ping", nil)
	require.NoError(t, err)
	require.True(t, resp.Success)

	var data map[string]string
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "ok", data["status"])
}

func TestHandlerReceivesParams(t *testing.T) {
	srv, socketPath := startServer(t)
	srv.Handle("submit", func(req *Request) *Response {
		var params struct {
			Topic string `json:"topic"`
		}
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return ErrorResponse(ErrCodeValidation, err.Error())
		}
		return SuccessResponse(map[string]string{"topic": params.Topic})
	})

	resp, err := NewClient(socketPath).SendCommand("submit", map[string]string{"topic": "launch plan"})
	require.NoError(t, err)
	require.True(t, resp.Success)

	var data map[string]string
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, "launch plan", data["topic"])
}

func TestUnknownCommand(t *testing.T) {
	_, socketPath := startServer(t)

	resp, err := NewClient(socketPath).SendCommand("nope", nil)
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnknownCommand, resp.Error.Code)
}

func TestProtocolVersionMismatch(t *testing.T) {
	_, socketPath := startServer(t)

	resp, err := NewClient(socketPath).Send(&Request{ProtocolVersion: 99, Command: "ping"})
	require.NoError(t, err)
	require.False(t, resp.Success)
	assert.Equal(t, ErrCodeProtocolMismatch, resp.Error.Code)
}

func TestErrorResponsePassthrough(t *testing.T) {
	srv, socketPath := startServer(t)
	srv.Handle("status", func(req *Request) *Response {
		return ErrorResponse(ErrCodeNotFound, "unknown job")
	})

	resp, err := NewClient(socketPath).SendCommand("status", nil)
	require.NoError(t, err)
	require.False(t, resp.Success)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "unknown job", resp.Error.Message)
}

func TestConcurrentClients(t *testing.T) {
	srv, socketPath := startServer(t)
	srv.Handle("echo", func(req *Request) *Response {
		var params map[string]int
		_ = json.Unmarshal(req.Params, &params)
		return SuccessResponse(params)
	})

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := NewClient(socketPath)
			resp, err := client.SendCommand("echo", map[string]int{"n": i})
			if err != nil {
				errs[i] = err
				return
			}
			var data map[string]int
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				errs[i] = err
				return
			}
			if data["n"] != i {
				errs[i] = fmt.Errorf("got %d, want %d", data["n"], i)
			}
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "client %d", i)
	}
}

func TestClientRetriesDialUntilServerAccepts(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), DefaultSocketName)
	srv := NewServer(socketPath)
	srv.Handle("ping", func(req *Request) *Response {
		return SuccessResponse(nil)
	})
	t.Cleanup(func() { _ = srv.Stop() })

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = srv.Start()
	}()

	client := NewClient(socketPath, WithDialRetries(50), WithTimeout(5*time.Second))
	resp, err := client.SendCommand("ping", nil)
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestServerStopRemovesSocket(t *testing.T) {
	srv, socketPath := startServer(t)
	require.NoError(t, srv.Stop())

	_, err := NewClient(socketPath).SendCommand("ping", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
}

func TestPanickingHandlerDoesNotKillServer(t *testing.T) {
	srv, socketPath := startServer(t)
	srv.Handle("boom", func(req *Request) *Response {
		panic("handler bug")
	})
	srv.Handle("ping", func(req *Request) *Response {
		return SuccessResponse(nil)
	})

	// The panicking connection gets no response.
	_, err := NewClient(socketPath).SendCommand("boom", nil)
	require.Error(t, err)

	// The server keeps serving.
	resp, err := NewClient(socketPath).SendCommand("ping", nil)
	require.NoError(t, err)
	assert.True(t, resp.Success)
}
