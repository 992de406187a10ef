package vault

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// KeySource supplies the passphrase the vault derives its encryption key
// from. The same device must always produce the same passphrase; different
// devices must produce different ones.
type KeySource interface {
	Passphrase() (string, error)
}

// StaticKeySource is a fixed passphrase, for headless and test
// environments where no platform device identity is wanted.
type StaticKeySource string

// Passphrase implements KeySource.
func (s StaticKeySource) Passphrase() (string, error) {
	return string(s), nil
}

// DeviceKeySource derives a stable per-device passphrase from the platform
// machine id. When no machine id is readable it falls back to the host
// name, and as a last resort to a random UUID persisted under the state
// directory so the passphrase stays stable across runs.
type DeviceKeySource struct {
	stateDir string

	once       sync.Once
	passphrase string
	err        error
}

// NewDeviceKeySource creates a device key source persisting its fallback
// identity under stateDir.
func NewDeviceKeySource(stateDir string) *DeviceKeySource {
	return &DeviceKeySource{stateDir: stateDir}
}

// Passphrase implements KeySource. The derivation runs once and is cached.
func (d *DeviceKeySource) Passphrase() (string, error) {
	d.once.Do(func() {
		id, err := d.deviceID()
		if err != nil {
			d.err = err
			return
		}
		sum := sha256.Sum256([]byte("gourmet-cache|" + id))
		d.passphrase = hex.EncodeToString(sum[:])
	})
	return d.passphrase, d.err
}

func (d *DeviceKeySource) deviceID() (string, error) {
	for _, path := range []string{"/etc/machine-id", "/var/lib/dbus/machine-id"} {
		if raw, err := os.ReadFile(path); err == nil {
			if id := strings.TrimSpace(string(raw)); id != "" {
				return id, nil
			}
		}
	}

	if host, err := os.Hostname(); err == nil && host != "" && host != "localhost" {
		return host, nil
	}

	return d.persistedID()
}

// persistedID reads or creates the fallback device id file.
func (d *DeviceKeySource) persistedID() (string, error) {
	path := filepath.Join(d.stateDir, "device-id")
	if raw, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id, nil
		}
	}

	id := uuid.NewString()
	if err := os.MkdirAll(d.stateDir, 0o700); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}
