package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// ErrLocked 另一个写入者持有数据集锁
var ErrLocked = errors.New("dataset is locked by another writer")

const lockRetryInterval = 50 * time.Millisecond

// fileLock 基于 O_EXCL 创建的咨询锁文件
type fileLock struct {
	path  string
	stale time.Duration
}

// acquire 获取锁；超过 stale 的遗留锁文件会被清除。
// 返回的 release 只删除仍属于本次获取的锁文件
func (l fileLock) acquire(ctx context.Context) (func(), error) {
	for {
		fh, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			token := []byte(fmt.Sprintf("%s %d %s\n", uuid.NewString(), os.Getpid(), time.Now().Format(time.RFC3339)))
			_, werr := fh.Write(token)
			if cerr := fh.Close(); werr == nil {
				werr = cerr
			}
			if werr != nil {
				_ = os.Remove(l.path)
				return nil, fmt.Errorf("failed to write lock file: %w", werr)
			}
			return func() { l.release(token) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		if l.stale > 0 {
			if info, statErr := os.Stat(l.path); statErr == nil && time.Since(info.ModTime()) > l.stale {
				_ = os.Remove(l.path)
				continue
			}
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLocked, ctx.Err())
		case <-time.After(lockRetryInterval):
		}
	}
}

// release 锁文件内容仍为 token 时才删除；已被其他写入者接管的锁保持不动
func (l fileLock) release(token []byte) {
	data, err := os.ReadFile(l.path)
	if err != nil || !bytes.Equal(data, token) {
		return
	}
	_ = os.Remove(l.path)
}
