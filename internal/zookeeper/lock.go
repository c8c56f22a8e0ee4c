// internal/zookeeper/lock.go
package zookeeper

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-zookeeper/zk"
)

const lockRoot = "/merx_locks" // 所有分布式锁的根节点

// ErrLockTimeout 表示在等待锁时 context 先到期了。
var ErrLockTimeout = errors.New("zookeeper: timed out waiting for lock")

// DistributedLock 是基于临时顺序节点的分布式锁。
// 同一把锁实例不可并发复用；每次加锁创建一个新的顺序节点。
type DistributedLock struct {
	conn     *Conn
	path     string // 锁的父路径，例如 /merx_locks/stock-audit
	lockNode string // 成功获取锁后自己创建的节点路径
}

// NewDistributedLock 创建一个以 resourceID 为粒度的分布式锁。
func NewDistributedLock(conn *Conn, resourceID string) (*DistributedLock, error) {
	lockPath := lockRoot + "/" + resourceID
	for _, p := range []string{lockRoot, lockPath} {
		if exists, _, err := conn.Exists(p); err == nil && !exists {
			if _, err := conn.Create(p, []byte{}, 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
				return nil, fmt.Errorf("failed to ensure lock node %s: %w", p, err)
			}
		}
	}
	return &DistributedLock{conn: conn, path: lockPath}, nil
}

// Lock 尝试获取锁，获取不到则阻塞等待，直到成功或 ctx 到期。
func (l *DistributedLock) Lock(ctx context.Context) error {
	// 1. 创建临时顺序节点
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte{}, zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	for {
		// 2. 列出所有竞争者并排序
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			return fmt.Errorf("failed to get children nodes: %w", err)
		}
		sort.Strings(children)

		myNodeName := strings.TrimPrefix(l.lockNode, l.path+"/")
		if myNodeName == children[0] {
			// 最小节点即持锁者
			return nil
		}

		// 3. 只监听排在自己前面的那个节点，避免惊群
		prevIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevIndex = i - 1
				break
			}
		}
		if prevIndex < 0 {
			return errors.New("zookeeper: own lock node missing from children")
		}

		_, _, eventChan, err := l.conn.ExistsW(l.path + "/" + children[prevIndex])
		if err != nil {
			if err == zk.ErrNoNode {
				continue // 前驱节点刚好释放，重新竞争
			}
			return fmt.Errorf("failed to watch previous node: %w", err)
		}

		select {
		case event := <-eventChan:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-ctx.Done():
			_ = l.Unlock()
			return ErrLockTimeout
		}
	}
}

// Unlock 释放锁。
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("zookeeper: no lock to unlock")
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}
