package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("DayCounter.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon process to shut down.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("DayCounter.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EventList returns all tracked events.
func (c *Client) EventList() (*EventListResponse, error) {
	var resp EventListResponse
	if err := c.client.Call("DayCounter.EventList", EventListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EventAdd registers a new tracked event. Start must be RFC 3339.
func (c *Client) EventAdd(name, start string) (*EventAddResponse, error) {
	var resp EventAddResponse
	req := EventAddRequest{Name: name, Start: start}
	if err := c.client.Call("DayCounter.EventAdd", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EventRemove deletes a tracked event by name.
func (c *Client) EventRemove(name string) (*EventRemoveResponse, error) {
	var resp EventRemoveResponse
	req := EventRemoveRequest{Name: name}
	if err := c.client.Call("DayCounter.EventRemove", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EventEnable pauses or resumes milestone notifications for an event.
func (c *Client) EventEnable(name string, enabled bool) (*EventEnableResponse, error) {
	var resp EventEnableResponse
	req := EventEnableRequest{Name: name, Enabled: enabled}
	if err := c.client.Call("DayCounter.EventEnable", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("DayCounter.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History returns journal rows, optionally filtered to one event.
func (c *Client) History(eventName string, limit int) (*HistoryResponse, error) {
	var resp HistoryResponse
	req := HistoryRequest{EventName: eventName, Limit: limit}
	if err := c.client.Call("DayCounter.History", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryClear removes every journal row.
func (c *Client) HistoryClear() (*HistoryClearResponse, error) {
	var resp HistoryClearResponse
	if err := c.client.Call("DayCounter.HistoryClear", HistoryClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StateReset backs up the event file and starts empty.
func (c *Client) StateReset() (*StateResetResponse, error) {
	var resp StateResetResponse
	if err := c.client.Call("DayCounter.StateReset", StateResetRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("DayCounter.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
