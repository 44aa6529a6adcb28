package logward

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const histSuffix = ".hist.log"

func currentDate() string {
	return time.Now().UTC().Format("2006-01-02")
}

// dailyFile is a mutex-guarded writer over a single current log file.
// The file is opened lazily on first write. The rotator archives it when the
// calendar date advances; Write archives early when the file grows past
// maxBytes within the same day.
type dailyFile struct {
	mu          sync.Mutex
	path        string
	maxBytes    int64
	backupCount int
	file        *os.File
	size        int64
}

func newDailyFile(path string, maxBytes int64, backupCount int) *dailyFile {
	return &dailyFile{
		path:        path,
		maxBytes:    maxBytes,
		backupCount: backupCount,
	}
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil {
		if err := d.open(); err != nil {
			return 0, err
		}
	}

	if d.maxBytes > 0 && d.size > 0 && d.size+int64(len(p)) >= d.maxBytes {
		if err := d.archive(currentDate()); err != nil {
			fmt.Fprintf(os.Stderr, "logward: overflow rotation failed for %s: %v\n", d.path, err)
		}
	}

	n, err := d.file.Write(p)
	d.size += int64(n)
	return n, err
}

func (d *dailyFile) open() error {
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log dir %s: %w", dir, err)
	}
	file, err := os.OpenFile(d.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	d.file = file
	if stat, err := file.Stat(); err == nil {
		d.size = stat.Size()
	}
	return nil
}

// rotate archives the current file under the given date and reopens a fresh
// one. Files that were never written, or are empty, are left alone.
func (d *dailyFile) rotate(date string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil || d.size == 0 {
		return nil
	}
	return d.archive(date)
}

// archive closes, renames to the dated .hist.log name and reopens.
// Caller must hold d.mu.
func (d *dailyFile) archive(date string) error {
	if err := d.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	d.file = nil
	d.size = 0

	if err := os.Rename(d.path, d.archivePath(date)); err != nil {
		// Reopen so writes keep going to the old file rather than failing.
		if openErr := d.open(); openErr != nil {
			return fmt.Errorf("failed to rename log file (%v) and couldn't reopen original (%v)", err, openErr)
		}
		return fmt.Errorf("failed to rename log file: %w", err)
	}

	d.prune()
	return d.open()
}

// archivePath returns {name}-{date}.hist.log, adding a -N suffix when the
// same date already rotated (overflow rotation within one day).
func (d *dailyFile) archivePath(date string) string {
	base := strings.TrimSuffix(d.path, ".log")
	target := fmt.Sprintf("%s-%s%s", base, date, histSuffix)
	for n := 2; ; n++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			return target
		}
		target = fmt.Sprintf("%s-%s-%d%s", base, date, n, histSuffix)
	}
}

// prune removes the oldest archives beyond backupCount.
// Caller must hold d.mu.
func (d *dailyFile) prune() {
	base := strings.TrimSuffix(d.path, ".log")
	archives, err := filepath.Glob(base + "-*" + histSuffix)
	if err != nil || len(archives) <= d.backupCount {
		return
	}

	// Dated names sort chronologically.
	sort.Strings(archives)
	for _, f := range archives[:len(archives)-d.backupCount] {
		_ = os.Remove(f)
	}
}

func (d *dailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file != nil {
		return d.file.Sync()
	}
	return nil
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	d.size = 0
	return err
}

// rotator owns the background date check. A single goroutine wakes every
// interval, compares the current UTC date to the stored one and, on change,
// rotates every registered file.
type rotator struct {
	interval time.Duration

	mu    sync.Mutex
	files []*dailyFile
	date  string

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newRotator(interval time.Duration) *rotator {
	r := &rotator{
		interval: interval,
		date:     currentDate(),
		done:     make(chan struct{}),
	}
	r.wg.Add(1)
	go r.loop()
	return r
}

func (r *rotator) loop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.checkAndRotate()
		case <-r.done:
			return
		}
	}
}

func (r *rotator) register(f *dailyFile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, f)
}

// checkAndRotate rotates all registered files if the date has advanced.
// It reports whether a rotation took place. Per-file failures are written to
// stderr and do not stop the remaining files from rotating.
func (r *rotator) checkAndRotate() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := currentDate()
	if now == r.date {
		return false
	}

	old := r.date
	for _, f := range r.files {
		if err := f.rotate(old); err != nil {
			fmt.Fprintf(os.Stderr, "logward: rotation failed for %s: %v\n", f.path, err)
		}
	}
	r.date = now
	return true
}

func (r *rotator) stop() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
}
