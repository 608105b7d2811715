package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srsran/srsRAN-Project-sub026/config"
)

func validConfig() config.Config {
	return config.Config{
		UlBandwidthRB:      106,
		NofRxPorts:         4,
		PuschMaxNofLayers:  4,
		ActiveSCS:          1 << 1,
		NofULResourceGrids: 2,
		Executors: []config.ExecutorConfig{
			{Name: "pusch", MaxConcurrency: 4, QueueLength: 32},
		},
		RxBuffer: config.RxBufferConfig{NofBuffers: 8, MaxCodeblocks: 64},
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateAggregatesMultipleErrors(t *testing.T) {
	c := config.Config{}
	err := c.Validate()
	require.Error(t, err)
	require.Greater(t, len(err.Error()), 0)
	require.ErrorContains(t, err, "ul_bandwidth_rb")
	require.ErrorContains(t, err, "nof_rx_ports")
}

func TestValidateRejectsDuplicateExecutorNames(t *testing.T) {
	c := validConfig()
	c.Executors = append(c.Executors, config.ExecutorConfig{Name: "pusch", MaxConcurrency: 1, QueueLength: 1})
	require.ErrorContains(t, c.Validate(), "duplicate executor")
}

func TestNumerologyActive(t *testing.T) {
	c := validConfig()
	require.True(t, c.NumerologyActive(1))
	require.False(t, c.NumerologyActive(0))
	require.False(t, c.NumerologyActive(9))
}
