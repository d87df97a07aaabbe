package broadcast

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
)

type fakeAddr string

func (a fakeAddr) Network() string { return "tcp" }
func (a fakeAddr) String() string { return string(a) }

// fakeConn records every Write call as one chunk
type fakeConn struct {
	sync.Mutex
	peer       string
	chunks     [][]byte
	fail       error
	closes     int32
	inFlight   int32
	overlapped int32
}

func newFakeConn(peer string) *fakeConn {
	return &fakeConn{peer: peer}
}

func (f *fakeConn) Write(p []byte) (int, error) {
	if atomic.AddInt32(&f.inFlight, 1) > 1 {
		atomic.StoreInt32(&f.overlapped, 1)
	}
	defer atomic.AddInt32(&f.inFlight, -1)
	// widen the window for overlapping writers
	time.Sleep(50 * time.Microsecond)

	f.Lock()
	defer f.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	f.chunks = append(f.chunks, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeConn) setFail(err error) {
	f.Lock()
	defer f.Unlock()
	f.fail = err
}

func (f *fakeConn) received() []string {
	f.Lock()
	defer f.Unlock()
	out := make([]string, 0, len(f.chunks))
	for _, c := range f.chunks {
		out = append(out, string(c))
	}
	return out
}

func (f *fakeConn) Read(p []byte) (int, error) { select {} }

func (f *fakeConn) Close() error {
	atomic.AddInt32(&f.closes, 1)
	return nil
}

func (f *fakeConn) LocalAddr() net.Addr { return fakeAddr("127.0.0.1:7777") }
func (f *fakeConn) RemoteAddr() net.Addr { return fakeAddr(f.peer) }
func (f *fakeConn) SetDeadline(t time.Time) error { return nil }
func (f *fakeConn) SetReadDeadline(t time.Time) error { return nil }
func (f *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

// mockConn lets a test script the transport's answers
type mockConn struct {
	mock.Mock
}

func (m *mockConn) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *mockConn) Read(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *mockConn) Close() error {
	return m.Called().Error(0)
}

func (m *mockConn) RemoteAddr() net.Addr {
	return m.Called().Get(0).(net.Addr)
}

func (m *mockConn) LocalAddr() net.Addr { return fakeAddr("127.0.0.1:7777") }
func (m *mockConn) SetDeadline(t time.Time) error { return nil }
func (m *mockConn) SetReadDeadline(t time.Time) error { return nil }
func (m *mockConn) SetWriteDeadline(t time.Time) error { return nil }
