// Package config loads inkwell's settings.
//
// Settings come from three layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment (INKWELL_*) │  ← Highest priority
//	├─────────────────────────────┤
//	│  2. Config files            │  ← TOML or YAML, in the order given
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Files and environment are read into maps by the loader sub-package,
// merged, and decoded onto the defaults. Keys match field names without
// regard to case, so INKWELL_STORE_CACHE_TTL sets store.cacheTTL.
//
// # Basic Usage
//
//	cfg := config.New(config.WithFiles("inkwell.toml"))
//	if err := cfg.Load(); err != nil {
//	    log.Fatal(err)
//	}
//	placeholder := cfg.Editor().Placeholder
//
// # Live Reload
//
// Watch reloads the files when they change and notifies OnChange
// observers. A reload that fails to parse or validate keeps the previous
// settings.
//
//	cfg.OnChange(func(s config.Settings) { ... })
//	if err := cfg.Watch(); err != nil { ... }
//	defer cfg.Close()
package config
