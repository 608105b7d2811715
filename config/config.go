// Package config implements the recognised configuration surface for one
// upper-PHY instance: the resource-grid and port counts, the numerologies
// carried, per-executor concurrency, and Rx buffer sizing. Loaded from
// YAML via gopkg.in/yaml.v3 and validated with an aggregated error.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExecutorConfig sizes one named executor's worker pool and queue.
type ExecutorConfig struct {
	Name           string `yaml:"name"`
	MaxConcurrency int    `yaml:"max_concurrency"`
	QueueLength    int    `yaml:"queue_length"`
}

// RxBufferConfig sizes the soft-buffer pool PUSCH decoding draws from.
type RxBufferConfig struct {
	NofBuffers   int `yaml:"nof_buffers"`
	MaxCodeblocks int `yaml:"max_codeblocks"`
}

// Config is the full set of recognised configuration keys for one
// upper-PHY instance.
type Config struct {
	// UlBandwidthRB is the uplink carrier bandwidth, in resource blocks.
	UlBandwidthRB int `yaml:"ul_bandwidth_rb"`
	// NofRxPorts is the number of receive antenna ports.
	NofRxPorts int `yaml:"nof_rx_ports"`
	// PuschMaxNofLayers bounds the TPMI selector's search and the
	// channel-state manager's max rank.
	PuschMaxNofLayers int `yaml:"pusch_max_nof_layers"`
	// ActiveSCS is a bitmask over numerologies 0..4 (bit mu = SCS 15<<mu kHz active).
	ActiveSCS uint8 `yaml:"active_scs"`
	// NofULResourceGrids sizes the resource-grid pool shared across slots.
	NofULResourceGrids int `yaml:"nof_ul_resource_grids"`
	// Executors lists the named executors this instance provisions
	// (typically pucch, pusch, srs, prach, pusch_channel_estimator, pusch_decoder).
	Executors []ExecutorConfig `yaml:"executors"`
	// RxBuffer sizes the PUSCH soft-buffer pool.
	RxBuffer RxBufferConfig `yaml:"rx_buffer"`
}

// Load reads and parses a YAML configuration file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, nil
}

// maxNumerology is the highest supported numerology index (SCS = 15*2^4 = 240kHz).
const maxNumerology = 4

// Validate checks every recognised field against its structural
// invariant, aggregating every violation with errors.Join rather than
// failing fast on the first one, matching caddy's provisioning-error
// accumulation style.
func (c Config) Validate() error {
	var errs []error

	if c.UlBandwidthRB <= 0 || c.UlBandwidthRB > 273 {
		errs = append(errs, fmt.Errorf("config: ul_bandwidth_rb %d out of range (0,273]", c.UlBandwidthRB))
	}
	if c.NofRxPorts <= 0 || c.NofRxPorts > 4 {
		errs = append(errs, fmt.Errorf("config: nof_rx_ports %d out of range (0,4]", c.NofRxPorts))
	}
	if c.PuschMaxNofLayers <= 0 || c.PuschMaxNofLayers > 4 {
		errs = append(errs, fmt.Errorf("config: pusch_max_nof_layers %d out of range (0,4]", c.PuschMaxNofLayers))
	}
	if c.ActiveSCS == 0 || c.ActiveSCS >= (1<<(maxNumerology+1)) {
		errs = append(errs, fmt.Errorf("config: active_scs bitmask %#x has no valid numerology bits", c.ActiveSCS))
	}
	if c.NofULResourceGrids <= 0 {
		errs = append(errs, fmt.Errorf("config: nof_ul_resource_grids must be positive, got %d", c.NofULResourceGrids))
	}
	if len(c.Executors) == 0 {
		errs = append(errs, errors.New("config: at least one executor must be configured"))
	}
	seen := make(map[string]bool, len(c.Executors))
	for _, e := range c.Executors {
		if e.Name == "" {
			errs = append(errs, errors.New("config: executor entry missing name"))
			continue
		}
		if seen[e.Name] {
			errs = append(errs, fmt.Errorf("config: duplicate executor name %q", e.Name))
		}
		seen[e.Name] = true
		if e.MaxConcurrency <= 0 {
			errs = append(errs, fmt.Errorf("config: executor %q max_concurrency must be positive, got %d", e.Name, e.MaxConcurrency))
		}
		if e.QueueLength <= 0 {
			errs = append(errs, fmt.Errorf("config: executor %q queue_length must be positive, got %d", e.Name, e.QueueLength))
		}
	}
	if c.RxBuffer.NofBuffers <= 0 {
		errs = append(errs, fmt.Errorf("config: rx_buffer.nof_buffers must be positive, got %d", c.RxBuffer.NofBuffers))
	}
	if c.RxBuffer.MaxCodeblocks <= 0 {
		errs = append(errs, fmt.Errorf("config: rx_buffer.max_codeblocks must be positive, got %d", c.RxBuffer.MaxCodeblocks))
	}

	return errors.Join(errs...)
}

// NumerologyActive reports whether bit mu is set in the ActiveSCS bitmask.
func (c Config) NumerologyActive(mu uint8) bool {
	if mu > maxNumerology {
		return false
	}
	return c.ActiveSCS&(1<<mu) != 0
}
