package file

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyStorageDriver       = "storage.driver"
	KeyStorageDir          = "storage.dir"
	KeyStorageDSN          = "storage.dsn"
	KeySubstrateDriver     = "substrate.driver"
	KeySubstrateConcurrent = "substrate.concurrency"
	KeyRedisAddr           = "redis.addr"
	KeyAsynqQueue          = "asynq.queue"
	KeyLockTimeout         = "executor.lock_timeout"
	KeyExecTimeout         = "executor.exec_timeout"
	KeyPollInterval        = "waiter.poll_interval"
	KeyRefreshInterval     = "tui.refresh_interval"
)

// EnvPrefix prefixes environment overrides: storage.driver is
// overridden by TASKDASH_STORAGE_DRIVER.
const EnvPrefix = "TASKDASH_"

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// without overriding variables already set. A missing file is not an error.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("loading %s: %w", name, err)
		}
	}
	return nil
}

// settingsReader resolves a key from the environment, then the store.
type settingsReader struct {
	store  driven.ConfigStore
	lookup func(string) (string, bool)
	errs   []string
}

func (r *settingsReader) value(key string) (any, bool) {
	if v, ok := r.lookup(EnvName(key)); ok && v != "" {
		return v, true
	}
	if r.store == nil {
		return nil, false
	}
	return r.store.Get(key)
}

func (r *settingsReader) str(key string, dst *string) {
	v, ok := r.value(key)
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		r.errs = append(r.errs, fmt.Sprintf("%s: want string, got %T", key, v))
		return
	}
	*dst = s
}

func (r *settingsReader) integer(key string, dst *int) {
	v, ok := r.value(key)
	if !ok {
		return
	}
	switch n := v.(type) {
	case int64:
		*dst = int(n)
	case int:
		*dst = n
	case float64:
		*dst = int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			r.errs = append(r.errs, fmt.Sprintf("%s: %v", key, err))
			return
		}
		*dst = i
	default:
		r.errs = append(r.errs, fmt.Sprintf("%s: want integer, got %T", key, v))
	}
}

// duration accepts Go duration strings ("500ms") or whole seconds.
func (r *settingsReader) duration(key string, dst *time.Duration) {
	v, ok := r.value(key)
	if !ok {
		return
	}
	switch d := v.(type) {
	case int64:
		*dst = time.Duration(d) * time.Second
	case int:
		*dst = time.Duration(d) * time.Second
	case float64:
		*dst = time.Duration(d * float64(time.Second))
	case string:
		parsed, err := parseDuration(d)
		if err != nil {
			r.errs = append(r.errs, fmt.Sprintf("%s: %v", key, err))
			return
		}
		*dst = parsed
	default:
		r.errs = append(r.errs, fmt.Sprintf("%s: want duration, got %T", key, v))
	}
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}

// LoadSettings builds settings from defaults, then the config store, then
// TASKDASH_* environment variables. store may be nil.
func LoadSettings(store driven.ConfigStore) (domain.Settings, error) {
	return loadSettings(store, os.LookupEnv)
}

func loadSettings(store driven.ConfigStore, lookup func(string) (string, bool)) (domain.Settings, error) {
	settings := domain.DefaultSettings()
	r := &settingsReader{store: store, lookup: lookup}

	var storageDriver, substrateDriver string
	r.str(KeyStorageDriver, &storageDriver)
	r.str(KeyStorageDir, &settings.StorageDir)
	r.str(KeyStorageDSN, &settings.StorageDSN)
	r.str(KeySubstrateDriver, &substrateDriver)
	r.integer(KeySubstrateConcurrent, &settings.Concurrency)
	r.str(KeyRedisAddr, &settings.RedisAddr)
	r.str(KeyAsynqQueue, &settings.Queue)
	r.duration(KeyLockTimeout, &settings.LockTimeout)
	r.duration(KeyExecTimeout, &settings.ExecTimeout)
	r.duration(KeyPollInterval, &settings.PollInterval)
	r.duration(KeyRefreshInterval, &settings.RefreshInterval)

	if storageDriver != "" {
		settings.StorageDriver = domain.StorageDriver(strings.ToLower(storageDriver))
	}
	if substrateDriver != "" {
		settings.SubstrateDriver = domain.SubstrateDriver(strings.ToLower(substrateDriver))
	}

	if len(r.errs) > 0 {
		return settings, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(r.errs, "; "))
	}
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}
