//go:build linux
// +build linux

package watcher

import (
	"encoding/binary"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

const watchMask = unix.IN_MODIFY | unix.IN_CREATE | unix.IN_MOVED_TO |
	unix.IN_MOVED_FROM | unix.IN_CLOSE_WRITE | unix.IN_DELETE

// watchFile watches the parent directory of path, so rotations that swap the
// inode behind the name are still seen. The returned channel gets a value
// whenever the named file changes; bursts collapse into one wakeup.
func watchFile(path string) (<-chan struct{}, func(), error) {
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, err
	}
	directory, filename := filepath.Split(absolutePath)

	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, nil, errors.Wrap(err, "inotify_init1")
	}
	if _, err = unix.InotifyAddWatch(fd, directory, watchMask); err != nil {
		unix.Close(fd)
		return nil, nil, errors.Wrapf(err, "inotify_add_watch on %s", directory)
	}

	wake := make(chan struct{}, 1)
	stop := make(chan struct{})
	go notifyLoop(fd, filename, wake, stop)

	once := sync.Once{}
	return wake, func() { once.Do(func() { close(stop) }) }, nil
}

// notifyLoop uses poll(2) with a 100ms timeout to stay responsive to stop
func notifyLoop(fd int, filename string, wake chan<- struct{}, stop <-chan struct{}) {
	defer unix.Close(fd)

	buffer := make([]byte, 4096)
	for {
		select {
		case <-stop:
			return
		default:
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		count, err := unix.Poll(fds, 100)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			log.Errorf("[watcher] inotify poll failed, falling back to polling: %v", err)
			return
		}
		if count == 0 {
			continue
		}

		n, err := unix.Read(fd, buffer)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			log.Errorf("[watcher] inotify read failed, falling back to polling: %v", err)
			return
		}
		if !eventsMention(buffer[:n], filename) {
			continue
		}
		select {
		case wake <- struct{}{}:
		default:
		}
	}
}

// eventsMention scans raw inotify events, see inotify(7) for the layout:
//
//	struct inotify_event {
//	    int32_t  wd;     // offset 0
//	    uint32_t mask;   // offset 4
//	    uint32_t cookie; // offset 8
//	    uint32_t len;    // offset 12
//	    char     name[]; // offset 16, null-padded
//	};
func eventsMention(buffer []byte, filename string) bool {
	offset := 0
	for offset+unix.SizeofInotifyEvent <= len(buffer) {
		nameLength := int(binary.NativeEndian.Uint32(buffer[offset+12 : offset+16]))
		eventSize := unix.SizeofInotifyEvent + nameLength
		if offset+eventSize > len(buffer) {
			break
		}
		if nameLength > 0 && eventName(buffer[offset+unix.SizeofInotifyEvent:offset+eventSize]) == filename {
			return true
		}
		offset += eventSize
	}
	return false
}

func eventName(data []byte) string {
	for i, b := range data {
		if b == 0 {
			return string(data[:i])
		}
	}
	return string(data)
}
