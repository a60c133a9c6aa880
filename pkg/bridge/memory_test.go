package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHost_Invoke(t *testing.T) {
	host := NewMemoryHost()

	type helloArgs struct {
		Name string `json:"name"`
	}
	HandleFunc(host, "app_hello", func(ctx context.Context, args helloArgs) (string, error) {
		if args.Name == "" {
			return "", Reject("name is required")
		}
		return "Hello, " + args.Name + "!", nil
	})
	HandleFunc(host, "app_fail", func(ctx context.Context, args struct{}) (int, error) {
		return 0, errors.New("disk full")
	})

	assert.Equal(t, []string{"app_fail", "app_hello"}, host.Commands())

	value, err := host.Invoke(context.Background(), "app_hello", Value(`{"name":"world"}`))
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", Decode[string]("app_hello", value))

	_, err = host.Invoke(context.Background(), "app_hello", Value(`{}`))
	assert.EqualError(t, Fail("app_hello", err), "app_hello: name is required")

	_, err = host.Invoke(context.Background(), "app_fail", Value(`{}`))
	assert.EqualError(t, Fail("app_fail", err), "app_fail: disk full")

	_, err = host.Invoke(context.Background(), "missing", nil)
	assert.EqualError(t, Fail("missing", err), "missing: command missing not found")

	_, err = host.Invoke(context.Background(), "app_hello", Value(`{"name":1}`))
	var rejection *Rejection
	assert.ErrorAs(t, err, &rejection)
}

func TestMemoryHost_InvokeCancelled(t *testing.T) {
	host := NewMemoryHost()
	host.Handle("x", func(context.Context, Value) (Value, error) { return nil, nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := host.Invoke(ctx, "x", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryHost_ListenAndUnlisten(t *testing.T) {
	host := NewMemoryHost()

	var a, b int
	unlistenA, err := host.Listen(context.Background(), "tick", func(Value) { a++ })
	require.NoError(t, err)
	_, err = host.Listen(context.Background(), "tick", func(Value) { b++ })
	require.NoError(t, err)
	assert.Equal(t, 2, host.Listeners("tick"))

	host.EmitValue("tick", Value(`{"payload":null}`))
	unlistenA()
	unlistenA()
	host.EmitValue("tick", Value(`{"payload":null}`))

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 1, host.Listeners("tick"))
	assert.Error(t, host.Emit("tick", make(chan int)))
}
