//go:build !linux
// +build !linux

package watcher

import "errors"

var errNotifyUnsupported = errors.New("file notifications are only supported on linux")

func watchFile(path string) (<-chan struct{}, func(), error) {
	return nil, nil, errNotifyUnsupported
}
