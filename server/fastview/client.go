package fastview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second

	// The rate at which ele-updates are sent to the client, so as not to overburden it.
	pubResolution  = time.Millisecond * 100
	pingResolution = time.Millisecond * 200
	// The number of pings to tolerate losing before concluding the peer is gone.
	pongWait = pingResolution * 4

	readDeadline     = time.Second
	writeDeadline    = time.Second
	closeGracePeriod = time.Second
)

var upgrader = websocket.Upgrader{}

// Client publishes updates unidirectionally to a browser via websocket.
// Messages from the browser are read only to service control frames.
type Client[T any] struct {
	updates <-chan T
	ws      *websock
	rootCtx context.Context
}

// NewClient upgrades the request to a websocket and returns a publisher of @updates.
// Items in the updates chan should be idempotent, such that intervening updates can
// be discarded when they are received faster than the publication rate.
func NewClient[T any](
	updates <-chan T,
	w http.ResponseWriter,
	r *http.Request,
) (*Client[T], error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade: %w", err)
	}

	return &Client[T]{
		updates: updates,
		ws:      newWebSocket(ws),
		rootCtx: r.Context(),
	}, nil
}

// Sync publishes incoming updates until the client disconnects, the updates chan is
// closed, or an unexpected error occurs; only the latter is returned. The socket is
// closed before Sync returns.
func (cli *Client[T]) Sync() error {
	defer cli.ws.Close()

	// The pong handler runs on the reader, so it is set before reading begins.
	pongs := make(chan struct{}, 1)
	conn := cli.ws.Conn()
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(_ string) error {
		select {
		case pongs <- struct{}{}:
		default:
		}
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	group, groupCtx := errgroup.WithContext(cli.rootCtx)
	group.Go(func() error {
		return cli.readMessages(groupCtx)
	})
	group.Go(func() error {
		return cli.pingPong(groupCtx, pongs)
	})
	group.Go(func() error {
		return cli.publish(groupCtx)
	})

	if err := group.Wait(); err != nil && !isClosure(err) {
		return err
	}
	return nil
}

// ErrPongDeadlineExceeded means the peer stopped answering pings.
var ErrPongDeadlineExceeded error = errors.New("client disconnect, pong deadline exceeded")

// errPublisherDone stops the sibling routines once the updates chan closes.
var errPublisherDone = errors.New("publisher done")

// pingPong runs the client liveness check.
// NOTE: readMessages must be running for the pong handler to be called.
func (cli *Client[T]) pingPong(ctx context.Context, pongs <-chan struct{}) error {
	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := cli.ping(ctx); err != nil {
				return err
			}
		case <-pongs:
			lastPong = time.Now()
		}
	}
}

func (cli *Client[T]) ping(ctx context.Context) error {
	return cli.ws.Write(
		ctx,
		func(ws *websocket.Conn) error {
			err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			if isError(err) {
				return fmt.Errorf("ping failed: %w", err)
			}
			return err
		})
}

// readMessages drains messages from the client, which also services its pongs. Errors
// returned by websocket Read methods are permanent, hence any error tears the client down.
func (cli *Client[T]) readMessages(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		err := cli.ws.Read(
			ctx,
			func(ws *websocket.Conn) (readErr error) {
				_, _, readErr = ws.ReadMessage()
				return
			})
		if err != nil {
			return err
		}
	}
}

func (cli *Client[T]) publish(ctx context.Context) error {
	lastSync := time.Time{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case updates, ok := <-cli.updates:
			if !ok {
				return errPublisherDone
			}
			// Drop updates when receiving too quickly.
			if time.Since(lastSync) < pubResolution {
				continue
			}

			lastSync = time.Now()
			err := cli.ws.Write(
				ctx,
				func(ws *websocket.Conn) error {
					if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
						return fmt.Errorf("failed to set deadline: %w", err)
					}
					if err := ws.WriteJSON(updates); isError(err) {
						return fmt.Errorf("publish failed: %w", err)
					} else {
						return err
					}
				})
			if err != nil {
				return err
			}
		}
	}
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

func isClosure(err error) bool {
	return errors.Is(err, errPublisherDone) || websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

// ErrSockCongestion indicates there are too many waiters on the socket for a given op.
var ErrSockCongestion = errors.New("sock op failed due to congestion")

// websock serializes reads and writes to the websocket, which allows at most
// one concurrent reader and one concurrent writer.
type websock struct {
	// These are merely mutexes, but channel semantics allow timeouts.
	readSem  chan struct{}
	writeSem chan struct{}
	ws       *websocket.Conn
}

func newWebSocket(ws *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

// Conn returns the underlying websocket, only for non-concurrent setup such as adding handlers.
func (sock *websock) Conn() *websocket.Conn {
	return sock.ws
}

// Close sends a close frame and closes the websocket. This should only be called once no
// further readers or writers exist.
func (sock *websock) Close() {
	sock.writeSem <- struct{}{}
	_ = sock.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sock.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	sock.ws.Close()
}

// Read serializes read operations on the internal web socket.
func (sock *websock) Read(
	ctx context.Context,
	readFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.readSem <- struct{}{}:
		defer func() { <-sock.readSem }()
		return readFn(sock.ws)
	case <-time.After(readDeadline):
		return ErrSockCongestion
	}
}

// Write serializes write operations to the websocket.
func (sock *websock) Write(
	ctx context.Context,
	writeFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.ws)
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}
