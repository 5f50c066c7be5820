package ingest

import (
	"fmt"
	"os"
	"time"
)

// lockTTL is how long a lock file may go without a heartbeat before another
// process takes it over.
const lockTTL = 2 * time.Minute

// fileLock serializes runs across processes sharing a data dir. It is an
// O_EXCL file whose mtime is refreshed while held.
type fileLock struct {
	path string
	ttl  time.Duration
	stop chan struct{}
	done chan struct{}
}

func newFileLock(path string) *fileLock {
	return &fileLock{path: path, ttl: lockTTL}
}

// acquire returns false without error when a live holder exists.
func (l *fileLock) acquire() (bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, _ = fmt.Fprintf(f, `{"pid":%d,"time":%d}`+"\n", os.Getpid(), time.Now().Unix())
			_ = f.Close()
			l.stop = make(chan struct{})
			l.done = make(chan struct{})
			go l.heartbeat(l.stop, l.done)
			return true, nil
		}
		if !os.IsExist(err) {
			return false, fmt.Errorf("creating lock file: %w", err)
		}
		if l.held() {
			return false, nil
		}
		// stale: the holder died mid-run
		_ = os.Remove(l.path)
	}
	return false, nil
}

// held reports whether a live lock file exists.
func (l *fileLock) held() bool {
	fi, err := os.Stat(l.path)
	if err != nil {
		return false
	}
	return time.Since(fi.ModTime()) < l.ttl
}

func (l *fileLock) release() {
	if l.stop != nil {
		close(l.stop)
		<-l.done
		l.stop, l.done = nil, nil
	}
	_ = os.Remove(l.path)
}

func (l *fileLock) heartbeat(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(l.ttl / 4)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-t.C:
			_ = os.Chtimes(l.path, now, now)
		}
	}
}
