package firmware

import (
	"strings"
	"sync"
	"time"
)

// Component names as used in image file names.
const (
	ComponentMainboard    = "Mainboard"
	ComponentHMISoftware  = "HMI_software"
	ComponentHMIResources = "HMI_resources"
	ComponentIAM          = "IAM-V2"
)

// Progress timing of the real unit's update screen.
const (
	DefaultStepInterval = 500 * time.Millisecond
	DefaultSettleDelay  = time.Second
	progressStep        = 10
)

// Logger defines the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// DefaultInstalled returns the factory firmware versions.
func DefaultInstalled() map[string]Version {
	return map[string]Version{
		ComponentMainboard:    MustParseVersion("1.2.3"),
		ComponentHMISoftware:  MustParseVersion("2.1.0"),
		ComponentHMIResources: MustParseVersion("1.0.5"),
		ComponentIAM:          MustParseVersion("3.2.1"),
	}
}

// Status is the update progress reported to clients.
type Status struct {
	Updating   bool
	Percentage int
}

// Config holds Manager construction options. Zero values select defaults.
type Config struct {
	Installed    map[string]Version
	StepInterval time.Duration
	SettleDelay  time.Duration
	Logger       Logger
}

// Manager tracks uploaded images and runs the update progress counter.
//
// Thread Safety: all methods are safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	installed map[string]Version
	files     []string
	updating  bool
	progress  int

	step   time.Duration
	settle time.Duration
	logger Logger

	// Shutdown coordination (stopOnce prevents double-close panics)
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewManager creates a firmware manager.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		installed: cfg.Installed,
		step:      cfg.StepInterval,
		settle:    cfg.SettleDelay,
		logger:    cfg.Logger,
		done:      make(chan struct{}),
	}
	if m.installed == nil {
		m.installed = DefaultInstalled()
	}
	if m.step <= 0 {
		m.step = DefaultStepInterval
	}
	if m.settle <= 0 {
		m.settle = DefaultSettleDelay
	}
	if m.logger == nil {
		m.logger = noopLogger{}
	}
	return m
}

// Upload records an uploaded image name and returns the upload list.
// Uploading the same name twice keeps a single entry.
func (m *Manager) Upload(name string) ([]string, error) {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "/\\") {
		return nil, ErrInvalidFileName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, f := range m.files {
		if f == name {
			return m.filesLocked(), nil
		}
	}
	m.files = append(m.files, name)
	m.logger.Info("firmware image uploaded", "file", name)
	return m.filesLocked(), nil
}

// Files returns uploaded image names in upload order.
func (m *Manager) Files() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filesLocked()
}

func (m *Manager) filesLocked() []string {
	out := make([]string, len(m.files))
	copy(out, m.files)
	return out
}

// Installed returns the installed version of component.
func (m *Manager) Installed(component string) (Version, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.installed[component]
	return v, ok
}

// UpdateAvailable returns the first uploaded image, in upload order, whose
// version is newer than the installed version of its component.
// Images with unrecognised names or unknown components are ignored.
func (m *Manager) UpdateAvailable() (Image, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.newerImageLocked()
}

func (m *Manager) newerImageLocked() (Image, bool) {
	for _, name := range m.files {
		img, err := ParseImageName(name)
		if err != nil {
			continue
		}
		installed, ok := m.installed[img.Type]
		if ok && img.Version.Compare(installed) > 0 {
			return img, true
		}
	}
	return Image{}, false
}

// StartUpdate begins the progress counter if no update is running.
//
// Progress rises by 10 every step interval until it reaches 100. After the
// settle delay the update ends and every uploaded image newer than its
// installed component becomes the installed version.
//
// Returns:
//   - bool: True if a new update was started
func (m *Manager) StartUpdate() bool {
	m.mu.Lock()
	if m.updating {
		m.mu.Unlock()
		return false
	}
	select {
	case <-m.done:
		m.mu.Unlock()
		return false
	default:
	}
	m.updating = true
	m.progress = 0
	m.wg.Add(1)
	m.mu.Unlock()

	m.logger.Info("firmware update started")
	go m.run()
	return true
}

// Status returns the current update status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{Updating: m.updating, Percentage: m.progress}
}

// Stop aborts a running update and waits for it to end. Later StartUpdate
// calls do nothing. Safe to call multiple times.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
	})
}

func (m *Manager) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.step)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			m.abort()
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		m.progress += progressStep
		progress := m.progress
		m.mu.Unlock()
		m.logger.Debug("firmware update progress", "percentage", progress)

		if progress >= 100 {
			break
		}
	}

	select {
	case <-m.done:
		m.abort()
		return
	case <-time.After(m.settle):
	}

	m.mu.Lock()
	installed := m.installLocked()
	m.updating = false
	m.mu.Unlock()

	m.logger.Info("firmware update finished", "installed", installed)
}

// installLocked promotes newer uploaded images to installed versions.
func (m *Manager) installLocked() []string {
	var names []string
	for {
		img, ok := m.newerImageLocked()
		if !ok {
			return names
		}
		m.installed[img.Type] = img.Version
		names = append(names, img.Name)
	}
}

func (m *Manager) abort() {
	m.mu.Lock()
	m.updating = false
	m.mu.Unlock()
	m.logger.Warn("firmware update aborted")
}
