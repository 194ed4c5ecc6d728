//go:build windows

package main

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
)

const instanceMutexPrefix = `Local\AsaManager-`

type instanceLock struct {
	handle windows.Handle
}

func (l *instanceLock) Release() error {
	if l == nil || l.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(l.handle)
	l.handle = 0
	if err != nil {
		return fmt.Errorf("close instance mutex handle: %w", err)
	}
	return nil
}

func acquireInstanceLock(dataDir string) (*instanceLock, bool, error) {
	name, err := windows.UTF16PtrFromString(instanceMutexName(dataDir))
	if err != nil {
		return nil, false, fmt.Errorf("encode mutex name: %w", err)
	}
	handle, err := windows.CreateMutex(nil, false, name)
	if err != nil {
		return nil, false, fmt.Errorf("create instance mutex: %w", err)
	}
	if windows.GetLastError() == windows.ERROR_ALREADY_EXISTS {
		_ = windows.CloseHandle(handle)
		return nil, true, nil
	}
	return &instanceLock{handle: handle}, false, nil
}

// Mutex names cannot contain backslashes, so the data directory is hashed.
func instanceMutexName(dataDir string) string {
	if abs, err := filepath.Abs(dataDir); err == nil {
		dataDir = abs
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(filepath.Clean(dataDir))))
	return fmt.Sprintf("%s%08x", instanceMutexPrefix, h.Sum32())
}
