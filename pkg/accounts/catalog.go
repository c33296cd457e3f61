package accounts

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// ErrAccountNotFound is returned when an account ID is not in the catalog.
type ErrAccountNotFound struct {
	AccountID string
}

// Error implements the error interface.
func (e *ErrAccountNotFound) Error() string {
	return fmt.Sprintf("account %q not found in catalog", e.AccountID)
}

// catalogFile is the YAML shape of the account catalog exported by the
// account-management system.
type catalogFile struct {
	Accounts []catalogEntry `yaml:"accounts"`
}

// catalogEntry is one account row. Ceiling overrides are optional; zero
// means "use the tier default".
type catalogEntry struct {
	ID               string `yaml:"id"`
	Tier             string `yaml:"tier"`
	MonthlyCeiling   int64  `yaml:"monthly_ceiling,omitempty"`
	PerMinuteCeiling int64  `yaml:"per_minute_ceiling,omitempty"`
}

// Catalog is a read-only view of provisioned accounts, loaded from a YAML
// snapshot file. The file is written by the external account-management
// collaborator; the gateway watches it and hot-reloads on change, so a
// tier change takes effect on the next request.
type Catalog struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	accounts map[string]*Account

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewCatalog loads the catalog from path.
func NewCatalog(path string, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Catalog{
		path:   path,
		logger: logger.With("component", "accounts"),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	if err := c.reload(); err != nil {
		return nil, err
	}

	return c, nil
}

// Lookup returns the account for an ID, or ErrAccountNotFound.
// The returned value is never mutated after load; callers may hold it for
// the duration of a request.
func (c *Catalog) Lookup(id string) (*Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	account, ok := c.accounts[id]
	if !ok {
		return nil, &ErrAccountNotFound{AccountID: id}
	}
	return account, nil
}

// Len returns the number of loaded accounts.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.accounts)
}

// reload parses the catalog file and swaps the account map.
// A parse failure keeps the previous map.
func (c *Catalog) reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to read account catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse account catalog: %w", err)
	}

	accounts := make(map[string]*Account, len(file.Accounts))
	for _, entry := range file.Accounts {
		if entry.ID == "" {
			return fmt.Errorf("account catalog entry missing id")
		}

		tier, err := ParseTier(entry.Tier)
		if err != nil {
			return fmt.Errorf("account %q: %w", entry.ID, err)
		}

		account := NewAccount(entry.ID, tier)
		if entry.MonthlyCeiling > 0 {
			account.MonthlyCeiling = entry.MonthlyCeiling
		}
		if entry.PerMinuteCeiling > 0 {
			account.PerMinuteCeiling = entry.PerMinuteCeiling
		}
		accounts[entry.ID] = account
	}

	c.mu.Lock()
	c.accounts = accounts
	c.mu.Unlock()

	c.logger.Info("account catalog loaded",
		"path", c.path,
		"accounts", len(accounts),
	)

	return nil
}

// Watch starts watching the catalog file and hot-reloads on change.
// Reloads are debounced to ride out editors that write in multiple events.
func (c *Catalog) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(c.path); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch account catalog: %w", err)
	}
	c.watcher = watcher

	go func() {
		defer close(c.doneCh)

		var debounce *time.Timer
		for {
			select {
			case <-c.stopCh:
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Chmod == fsnotify.Chmod {
					continue
				}

				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(100*time.Millisecond, func() {
					if err := c.reload(); err != nil {
						c.logger.Error("account catalog reload failed", "error", err)
					}
				})

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Error("account catalog watcher error", "error", err)
			}
		}
	}()

	c.logger.Info("account catalog watcher started", "path", c.path)
	return nil
}

// Close stops the watcher, if running.
func (c *Catalog) Close() error {
	if c.watcher == nil {
		return nil
	}
	close(c.stopCh)
	err := c.watcher.Close()
	<-c.doneCh
	return err
}
