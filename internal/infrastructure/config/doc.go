// Package config handles loading and validating PIN pad configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with PINPAD_* environment variables
//   - Validation of every section, reporting all problems at once
//
// Security Considerations:
//   - The default PIN and broker credentials should be set via environment
//     variables or a .env file, never committed in config.yaml
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Device.ID)
package config
