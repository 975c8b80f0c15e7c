// Package daemon runs the pipeline as a long-lived process: it owns the job
// store, serves the CLI over a unix socket and hot-reloads gate enforcement
// from the config file.
package daemon

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"inkwell/internal/events"
	"inkwell/internal/jobstore"
	"inkwell/internal/lock"
	"inkwell/internal/model"
	"inkwell/internal/pipeline"
	"inkwell/internal/producer"
	"inkwell/internal/uds"
)

// Daemon is the long-running inkwell process.
type Daemon struct {
	workDir    string
	configPath string
	config     model.Config
	configMu   sync.RWMutex
	logLevel   atomic.Int32
	logger     *log.Logger
	logFile    io.Closer

	fileLock *lock.FileLock
	server   *uds.Server
	watcher  *fsnotify.Watcher

	bus   *events.Bus
	audit *events.AuditLogger
	exec  *pipeline.Executor
	store *jobstore.Store

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	shutdown sync.Once

	forceExit atomic.Bool
}

// New creates a daemon rooted at workDir. configPath is the YAML file watched
// for reload; it may not exist yet.
func New(workDir string, cfg model.Config, configPath string) (*Daemon, error) {
	logDir := cfg.Daemon.LogDir
	if logDir == "" {
		logDir = "logs"
	}
	logPath := filepath.Join(workDir, logDir, "daemon.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open daemon log: %w", err)
	}

	return newDaemon(workDir, cfg, configPath, logFile, logFile)
}

// newDaemon is the internal constructor for testing.
func newDaemon(workDir string, cfg model.Config, configPath string, w io.Writer, closer io.Closer) (*Daemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	logger := log.New(w, "", 0)
	bus := events.NewBus(256)

	registry := producer.DefaultRegistry(cfg, logger)
	exec := pipeline.NewExecutor(cfg, registry, bus, logger)
	store := jobstore.NewStore(cfg.JobStore, exec, bus, logger)

	d := &Daemon{
		workDir:    workDir,
		configPath: configPath,
		config:     cfg,
		logger:     logger,
		logFile:    closer,
		fileLock:   lock.NewFileLock(filepath.Join(workDir, "locks", "daemon.lock")),
		server:     uds.NewServer(socketPathFor(workDir, cfg)),
		bus:        bus,
		exec:       exec,
		store:      store,
		ctx:        ctx,
		cancel:     cancel,
	}
	d.logLevel.Store(int32(pipeline.ParseLogLevel(cfg.Logging.Level)))
	return d, nil
}

func socketPathFor(workDir string, cfg model.Config) string {
	name := cfg.Daemon.SocketPath
	if name == "" {
		name = uds.DefaultSocketName
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(workDir, name)
}

// SocketPath returns the path the daemon serves on.
func (d *Daemon) SocketPath() string {
	return socketPathFor(d.workDir, d.snapshotConfig())
}

func (d *Daemon) snapshotConfig() model.Config {
	d.configMu.RLock()
	defer d.configMu.RUnlock()
	return d.config
}

// Run starts the daemon and blocks until shutdown completes.
func (d *Daemon) Run() error {
	if err := d.fileLock.TryLock(); err != nil {
		return fmt.Errorf("daemon lock: %w", err)
	}
	d.log(pipeline.LogLevelInfo, "daemon starting pid=%d", os.Getpid())

	auditPath := filepath.Join(d.workDir, d.snapshotConfig().Daemon.LogDir, "audit.jsonl")
	audit, err := events.NewAuditLogger(auditPath)
	if err != nil {
		d.cleanup()
		return fmt.Errorf("open audit log: %w", err)
	}
	d.audit = audit
	d.audit.Attach(d.bus)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.cleanup()
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	d.watcher = watcher

	// Watch the config file's directory; editors replace rather than write
	// in place, so watching the file itself misses updates.
	if d.configPath != "" {
		if err := watcher.Add(filepath.Dir(d.configPath)); err != nil {
			d.cleanup()
			return fmt.Errorf("watch config dir: %w", err)
		}
	}

	d.store.Start()
	d.registerHandlers()

	if err := d.server.Start(); err != nil {
		d.cleanup()
		return fmt.Errorf("start UDS server: %w", err)
	}
	d.log(pipeline.LogLevelInfo, "UDS server listening on %s", d.SocketPath())

	d.wg.Add(1)
	go d.watchLoop()

	d.log(pipeline.LogLevelInfo, "daemon ready")
	d.waitSignals()
	return nil
}

// watchLoop reloads configuration when the config file changes.
func (d *Daemon) watchLoop() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case event, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if event.Name != d.configPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				d.log(pipeline.LogLevelDebug, "config event=%s file=%s", event.Op, event.Name)
				d.reloadConfig()
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			d.log(pipeline.LogLevelError, "fsnotify error=%v", err)
		}
	}
}

// reloadConfig re-reads the config file and applies the settings that are
// safe to change while runs are in flight: gate enforcement and log level.
func (d *Daemon) reloadConfig() {
	cfg, err := model.LoadConfig(d.configPath)
	if err != nil {
		d.log(pipeline.LogLevelError, "config reload failed error=%v", err)
		return
	}

	d.configMu.Lock()
	old := d.config
	d.config = cfg
	d.configMu.Unlock()

	d.exec.SetStrict(cfg.Pipeline.StrictGates)
	d.exec.SetLogLevel(cfg.Logging.Level)
	d.logLevel.Store(int32(pipeline.ParseLogLevel(cfg.Logging.Level)))

	if old.Pipeline.StrictGates != cfg.Pipeline.StrictGates {
		d.log(pipeline.LogLevelInfo, "config reloaded strict_gates=%v", cfg.Pipeline.StrictGates)
	} else {
		d.log(pipeline.LogLevelInfo, "config reloaded")
	}
}

// waitSignals blocks until a shutdown signal is received.
func (d *Daemon) waitSignals() {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	select {
	case <-d.ctx.Done():
		return
	case sig := <-sigCh:
		d.log(pipeline.LogLevelInfo, "received signal=%s, initiating graceful shutdown", sig)
	}

	// Second signal forces exit.
	go func() {
		<-sigCh
		d.log(pipeline.LogLevelWarn, "received second signal, forcing exit")
		d.forceExit.Store(true)
		os.Exit(1)
	}()

	d.Shutdown()
}

// Shutdown performs graceful shutdown. Idempotent.
func (d *Daemon) Shutdown() {
	d.shutdown.Do(func() {
		d.log(pipeline.LogLevelInfo, "shutdown started")

		d.cancel()
		if d.watcher != nil {
			_ = d.watcher.Close()
		}
		if d.server != nil {
			_ = d.server.Stop()
		}

		timeout := d.snapshotConfig().Daemon.ShutdownTimeoutSec
		if timeout <= 0 {
			timeout = 10
		}

		done := make(chan struct{})
		go func() {
			d.store.Close()
			d.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			d.log(pipeline.LogLevelInfo, "all goroutines drained")
		case <-time.After(time.Duration(timeout) * time.Second):
			d.log(pipeline.LogLevelWarn, "shutdown timeout after %ds, some runs may be incomplete", timeout)
		}

		d.cleanup()
		d.log(pipeline.LogLevelInfo, "daemon stopped")
	})
}

func (d *Daemon) cleanup() {
	if d.audit != nil {
		_ = d.audit.Close()
	}
	d.bus.Close()
	_ = d.fileLock.Unlock()
	if d.logFile != nil {
		_ = d.logFile.Close()
	}
}

func (d *Daemon) log(level pipeline.LogLevel, format string, args ...any) {
	if int32(level) < d.logLevel.Load() {
		return
	}
	levelStr := "INFO"
	switch level {
	case pipeline.LogLevelDebug:
		levelStr = "DEBUG"
	case pipeline.LogLevelWarn:
		levelStr = "WARN"
	case pipeline.LogLevelError:
		levelStr = "ERROR"
	}
	msg := fmt.Sprintf(format, args...)
	d.logger.Printf("%s %s daemon: %s", time.Now().Format(time.RFC3339), levelStr, msg)
}
