package guard

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"attendance_backend/logger"
)

func TestKey(t *testing.T) {
	if got := Key(7, 42); got != "attendance:7:42" {
		t.Fatalf("Key: want=%q got=%q", "attendance:7:42", got)
	}
}

func exerciseMutualExclusion(t *testing.T, g Guard, key string) {
	t.Helper()
	const n = 20
	var (
		wg      sync.WaitGroup
		inside  int32
		maxSeen int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := g.Lock(context.Background(), key)
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			cur := atomic.AddInt32(&inside, 1)
			for {
				prev := atomic.LoadInt32(&maxSeen)
				if cur <= prev || atomic.CompareAndSwapInt32(&maxSeen, prev, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("critical section overlap: max concurrent holders=%d", maxSeen)
	}
}

func TestLocalMutualExclusion(t *testing.T) {
	g := NewLocal()
	exerciseMutualExclusion(t, g, Key(1, 1))
	if g.Len() != 0 {
		t.Fatalf("Len after release: want=0 got=%d", g.Len())
	}
}

func TestLocalKeysAreIndependent(t *testing.T) {
	g := NewLocal()
	unlockA, err := g.Lock(context.Background(), Key(1, 1))
	if err != nil {
		t.Fatalf("Lock A: %v", err)
	}
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := g.Lock(ctx, Key(1, 2))
	if err != nil {
		t.Fatalf("Lock B while A held: %v", err)
	}
	unlockB()
}

func TestLocalLockHonorsContext(t *testing.T) {
	g := NewLocal()
	unlock, err := g.Lock(context.Background(), "k")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := g.Lock(ctx, "k"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Lock: want DeadlineExceeded got=%v", err)
	}

	unlock()
	unlock() // second call is a no-op
	if g.Len() != 0 {
		t.Fatalf("Len: want=0 got=%d", g.Len())
	}
}

func TestRedisGuardIntegration(t *testing.T) {
	addr := strings.TrimSpace(os.Getenv("ATTENDANCE_REDIS_ADDR"))
	if addr == "" {
		t.Skip("set ATTENDANCE_REDIS_ADDR to run redis integration tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}

	g, err := NewRedis(logger.Nop(), rdb, 5*time.Second)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	key := Key(time.Now().UnixNano(), 1)
	t.Cleanup(func() { _ = rdb.Del(context.Background(), key).Err() })
	exerciseMutualExclusion(t, g, key)
}
