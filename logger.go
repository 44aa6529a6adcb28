package logward

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Log categories. Each category writes to Dir/{category}/{name}.log.
const (
	CategoryApp      = "app"
	CategoryError    = "error"
	CategoryDebug    = "debug"
	CategorySecurity = "security"
)

//nolint:gochecknoinits // field names must match the file record shape before any logger is built
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "timestamp"
	zerolog.MessageFieldName = "event"
	zerolog.LevelFieldName = "level"
	zerolog.ErrorFieldName = "error"
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
}

var (
	// mu protects state and the once-guarded initialization.
	mu    sync.Mutex
	state *loggerState
)

// loggerState is the shared machinery behind every category logger: the
// console writer, the per-file writers, the rotator and the optional rate
// limiter.
type loggerState struct {
	cfg      Config
	rot      *rotator
	console  io.Writer
	errorTee io.Writer
	files    map[string]*dailyFile
	limiter  *rate.Limiter
	used     map[string]bool
}

// levelWriter passes records whose level falls inside [min, max] to the
// wrapped writer and silently drops the rest.
type levelWriter struct {
	io.Writer
	min zerolog.Level
	max zerolog.Level
}

func (w levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < w.min || level > w.max {
		return len(p), nil
	}
	return w.Writer.Write(p)
}

// Setup initializes the logging system from the given configuration. It
// should be called once at application startup; subsequent calls are no-ops.
// Factory functions call it implicitly with environment configuration when it
// was never called explicitly.
func Setup(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()
	return setup(cfg)
}

// setup does the work of Setup. Caller must hold mu.
func setup(cfg Config) error {
	if state != nil {
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Security is created lazily on first use.
	for _, sub := range []string{CategoryError, CategoryApp, CategoryDebug} {
		if err := os.MkdirAll(filepath.Join(cfg.Dir, sub), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "logward: cannot create log directory %s: %v\n",
				filepath.Join(cfg.Dir, sub), err)
		}
	}

	if cfg.ConsoleOutput == nil {
		cfg.ConsoleOutput = os.Stdout
	}

	s := &loggerState{
		cfg:   cfg,
		rot:   newRotator(time.Duration(cfg.RotationCheckInterval) * time.Second),
		files: make(map[string]*dailyFile),
		used:  make(map[string]bool),
	}

	s.console = levelWriter{
		Writer: zerolog.ConsoleWriter{
			Out:        cfg.ConsoleOutput,
			TimeFormat: "2006-01-02 15:04:05",
			NoColor:    cfg.NoColor,
		},
		min: cfg.ConsoleZerologLevel(),
		max: zerolog.FatalLevel,
	}

	// ERROR and above from every category is teed into error/error.log.
	s.errorTee = levelWriter{
		Writer: s.file(CategoryError, CategoryError),
		min:    zerolog.ErrorLevel,
		max:    zerolog.FatalLevel,
	}

	if cfg.MaxLogRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.MaxLogRate), cfg.MaxLogRate)
	}

	state = s
	return nil
}

// file returns the writer for Dir/{category}/{name}.log, creating and
// registering it with the rotator on first use. Caller must hold mu.
func (s *loggerState) file(category, name string) *dailyFile {
	key := category + "/" + name
	if f, ok := s.files[key]; ok {
		return f
	}

	path := filepath.Join(s.cfg.Dir, category, name+".log")
	f := newDailyFile(path, s.cfg.MaxBytes, s.cfg.BackupCount)
	s.files[key] = f
	s.rot.register(f)
	return f
}

// ensure returns the initialized state, loading environment configuration on
// demand. Load failures fall back to the defaults, setup failures leave the
// raw error on stderr and retry with defaults.
func ensure() *loggerState {
	mu.Lock()
	defer mu.Unlock()

	if state == nil {
		cfg, err := LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logward: %v, falling back to defaults\n", err)
			cfg = DefaultConfig()
		}
		if err := setup(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "logward: setup failed: %v\n", err)
			_ = setup(DefaultConfig())
		}
	}
	return state
}

// Close stops the rotator and closes every log file. The next Setup or
// factory call reinitializes the system.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if state == nil {
		return nil
	}

	state.rot.stop()
	var firstErr error
	for _, f := range state.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	state = nil
	return firstErr
}

// ForceRotation runs the daily-rotation check immediately, outside the
// background schedule. It reports whether a date change was acted on.
func ForceRotation() bool {
	mu.Lock()
	s := state
	mu.Unlock()

	if s == nil {
		return false
	}
	return s.rot.checkAndRotate()
}

// UsedCategories returns the categories handed out so far, sorted.
func UsedCategories() []string {
	mu.Lock()
	defer mu.Unlock()

	if state == nil {
		return nil
	}
	categories := make([]string, 0, len(state.used))
	for c := range state.used {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// Logger is a named, category-bound logging handle. File output is JSON in
// the shape {event, timestamp, level, logger, category, ...fields}; console
// output is colorized and independently leveled.
type Logger struct {
	zl       zerolog.Logger
	name     string
	category string
	limiter  *rate.Limiter
}

// newCategoryLogger assembles the writer stack for a category and wraps it.
// Caller must hold mu.
func newCategoryLogger(s *loggerState, category, name string, sublog string) *Logger {
	fileLevel := s.cfg.FileZerologLevel()
	writers := []io.Writer{s.console}

	switch category {
	case CategoryError:
		// The error file itself only ever records ERROR and above.
		writers = append(writers, levelWriter{
			Writer: s.file(CategoryError, CategoryError),
			min:    zerolog.ErrorLevel,
			max:    zerolog.FatalLevel,
		})
	case CategoryApp:
		// app.log excludes ERROR and above; those records go to the tee.
		writers = append(writers,
			levelWriter{
				Writer: s.file(CategoryApp, CategoryApp),
				min:    fileLevel,
				max:    zerolog.WarnLevel,
			},
			s.errorTee,
		)
	case CategoryDebug:
		writers = append(writers,
			levelWriter{
				Writer: s.file(CategoryDebug, CategoryDebug),
				min:    fileLevel,
				max:    zerolog.FatalLevel,
			},
			s.errorTee,
		)
		if sublog != "" {
			writers = append(writers, levelWriter{
				Writer: s.file(CategoryDebug, sublog),
				min:    fileLevel,
				max:    zerolog.FatalLevel,
			})
		}
	case CategorySecurity:
		writers = append(writers,
			levelWriter{
				Writer: s.file(CategorySecurity, CategorySecurity),
				min:    fileLevel,
				max:    zerolog.FatalLevel,
			},
			s.errorTee,
		)
	}

	s.used[category] = true

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(minLevel(s.cfg.ConsoleZerologLevel(), fileLevel)).
		With().
		Timestamp().
		Str("logger", name).
		Str("category", category).
		Logger()

	return &Logger{
		zl:       zl,
		name:     name,
		category: category,
		limiter:  s.limiter,
	}
}

// Name returns the logger's name.
func (l *Logger) Name() string { return l.name }

// Category returns the logger's category.
func (l *Logger) Category() string { return l.category }

// Z exposes the underlying zerolog logger for callers that want the
// native event-chain API.
func (l *Logger) Z() *zerolog.Logger { return &l.zl }

// withZerolog returns a copy of l backed by the given zerolog logger.
func (l *Logger) withZerolog(zl zerolog.Logger) *Logger {
	return &Logger{
		zl:       zl,
		name:     l.name,
		category: l.category,
		limiter:  l.limiter,
	}
}

func (l *Logger) log(level zerolog.Level, msg string, fields []map[string]any) {
	if l.limiter != nil && !l.limiter.Allow() {
		return
	}

	ev := l.zl.WithLevel(level)
	for _, m := range fields {
		ev = ev.Fields(map[string]interface{}(m))
	}
	ev.Msg(msg)
}

// Debug logs a message at debug level with optional structured fields.
func (l *Logger) Debug(msg string, fields ...map[string]any) {
	l.log(zerolog.DebugLevel, msg, fields)
}

// Info logs a message at info level with optional structured fields.
func (l *Logger) Info(msg string, fields ...map[string]any) {
	l.log(zerolog.InfoLevel, msg, fields)
}

// Warn logs a message at warn level with optional structured fields.
func (l *Logger) Warn(msg string, fields ...map[string]any) {
	l.log(zerolog.WarnLevel, msg, fields)
}

// Error logs a message at error level with optional structured fields.
func (l *Logger) Error(msg string, fields ...map[string]any) {
	l.log(zerolog.ErrorLevel, msg, fields)
}

// Err logs err at error level alongside the message.
func (l *Logger) Err(err error, msg string, fields ...map[string]any) {
	if l.limiter != nil && !l.limiter.Allow() {
		return
	}

	ev := l.zl.Error().Err(err)
	for _, m := range fields {
		ev = ev.Fields(map[string]interface{}(m))
	}
	ev.Msg(msg)
}

// Fatal logs a message at fatal level and terminates the process. The rate
// limiter does not apply.
func (l *Logger) Fatal(msg string, fields ...map[string]any) {
	ev := l.zl.Fatal()
	for _, m := range fields {
		ev = ev.Fields(map[string]interface{}(m))
	}
	ev.Msg(msg)
}

// NewTestLogger creates a logger that writes JSON records to the provided
// writer, bypassing the file and console machinery. Useful for capturing
// output in tests.
//
//	var buf bytes.Buffer
//	logger := logward.NewTestLogger(&buf)
//	logger.Info("test")
func NewTestLogger(w io.Writer) *Logger {
	zl := zerolog.New(w).With().
		Timestamp().
		Str("logger", "test").
		Str("category", CategoryApp).
		Logger()
	return &Logger{zl: zl, name: "test", category: CategoryApp}
}
