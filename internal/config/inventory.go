package config

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// InventoryPolicy controls derived stock buckets and bulk-import limits.
// Thresholds are read on every request, so a config reload takes effect
// without a restart.
type InventoryPolicy struct {
	// LowStockThreshold is the inclusive upper bound of the low_stock bucket.
	// Stock above it counts as in_stock, stock of zero as out_of_stock.
	LowStockThreshold int `mapstructure:"lowStockThreshold"`
	// RecentActivityDays is the lookback window for the summary's
	// recent-activity count.
	RecentActivityDays int `mapstructure:"recentActivityDays"`
	// ImportMaxRows caps the number of data rows accepted per CSV import.
	ImportMaxRows int `mapstructure:"importMaxRows"`
}

func DefaultInventoryPolicy() InventoryPolicy {
	return InventoryPolicy{
		LowStockThreshold:  10,
		RecentActivityDays: 30,
		ImportMaxRows:      5000,
	}
}

// InventoryPolicyHolder holds the current policy behind an atomic value so
// hot reloads never race readers.
type InventoryPolicyHolder struct {
	current atomic.Value // holds InventoryPolicy
}

func NewInventoryPolicyHolder() (*InventoryPolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("inventory")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/stockyard/config") // Volume-mounted config
	v.AddConfigPath("/etc/stockyard")            // System config
	v.AddConfigPath(".")                         // Current directory (dev mode)

	v.SetEnvPrefix("STOCKYARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultInventoryPolicy()
		v.SetDefault("inventory.lowStockThreshold", defaults.LowStockThreshold)
		v.SetDefault("inventory.recentActivityDays", defaults.RecentActivityDays)
		v.SetDefault("inventory.importMaxRows", defaults.ImportMaxRows)
	}

	holder := &InventoryPolicyHolder{}
	if err := holder.reload(v); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if err := holder.reload(v); err != nil {
			log.Printf("inventory config reload failed: %v", err)
		}
	})
	v.WatchConfig()

	return holder, nil
}

// StaticInventoryPolicyHolder pins a policy without file watching. Used by
// tests and tooling that need deterministic thresholds.
func StaticInventoryPolicyHolder(policy InventoryPolicy) *InventoryPolicyHolder {
	holder := &InventoryPolicyHolder{}
	holder.current.Store(normalizeInventoryPolicy(policy))
	return holder
}

func (h *InventoryPolicyHolder) reload(v *viper.Viper) error {
	var policy InventoryPolicy
	if err := v.UnmarshalKey("inventory", &policy); err != nil {
		return err
	}
	h.current.Store(normalizeInventoryPolicy(policy))
	return nil
}

// Current returns the active policy.
func (h *InventoryPolicyHolder) Current() InventoryPolicy {
	if h == nil {
		return DefaultInventoryPolicy()
	}
	if policy, ok := h.current.Load().(InventoryPolicy); ok {
		return policy
	}
	return DefaultInventoryPolicy()
}

func normalizeInventoryPolicy(policy InventoryPolicy) InventoryPolicy {
	defaults := DefaultInventoryPolicy()
	if policy.LowStockThreshold <= 0 {
		policy.LowStockThreshold = defaults.LowStockThreshold
	}
	if policy.RecentActivityDays <= 0 {
		policy.RecentActivityDays = defaults.RecentActivityDays
	}
	if policy.ImportMaxRows <= 0 {
		policy.ImportMaxRows = defaults.ImportMaxRows
	}
	return policy
}
