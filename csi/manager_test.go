package csi_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srsran/srsRAN-Project-sub026/csi"
	"github.com/srsran/srsRAN-Project-sub026/ran/pusch"
	"github.com/srsran/srsRAN-Project-sub026/ran/srs"
)

func TestHandleCSIReportRejectsRIExceedingDLPorts(t *testing.T) {
	m := csi.NewManager(4, pusch.FullyAndPartialAndNonCoherent)
	m.ConfigureUE(1, 2)

	m.HandleCSIReport(1, csi.Report{RI: 2, PMI: 3})
	snap, ok := m.Snapshot(1)
	require.True(t, ok)
	require.Equal(t, 2, snap.RecommendedDLLayers)

	m.HandleCSIReport(1, csi.Report{RI: 4, PMI: 1})
	snap, ok = m.Snapshot(1)
	require.True(t, ok)
	require.Equal(t, 2, snap.RecommendedDLLayers, "RI exceeding configured DL ports must be rejected")
}

func TestUpdateSRSChannelMatrixFeedsTPMISelector(t *testing.T) {
	m := csi.NewManager(2, pusch.FullyAndPartialAndNonCoherent)
	channel := srs.NewChannelMatrix(2, 2)
	channel.Set(0, 0, 1)
	channel.Set(1, 1, 1)

	m.UpdateSRSChannelMatrix(5, channel)

	info, ok := m.RecommendedTPMI(5, 1)
	require.True(t, ok)
	require.Equal(t, 1, info.NofLayers)
}

func TestRecommendedTPMIRejectsLayersAboveMaxRank(t *testing.T) {
	m := csi.NewManager(1, pusch.FullyAndPartialAndNonCoherent)
	_, ok := m.RecommendedTPMI(1, 2)
	require.False(t, ok)
}

func TestUpdatePUSCHSNRFastStartsThenAverages(t *testing.T) {
	m := csi.NewManager(4, pusch.FullyAndPartialAndNonCoherent)
	m.UpdatePUSCHSNR(9, 10)
	snap, _ := m.Snapshot(9)
	require.InDelta(t, 10, snap.PUSCHSNRdB, 1e-9)

	m.UpdatePUSCHSNR(9, 20)
	snap, _ = m.Snapshot(9)
	require.InDelta(t, 15, snap.PUSCHSNRdB, 1e-9)
}
