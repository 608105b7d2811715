package gnbupcmd

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/srsran/srsRAN-Project-sub026/csi"
	"github.com/srsran/srsRAN-Project-sub026/internal/demokernels"
	"github.com/srsran/srsRAN-Project-sub026/internal/metrics"
	"github.com/srsran/srsRAN-Project-sub026/internal/upperphylog"
	"github.com/srsran/srsRAN-Project-sub026/phy/executor"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/notifier"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/procpool"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/slotproc"
	"github.com/srsran/srsRAN-Project-sub026/ran/pucch"
	"github.com/srsran/srsRAN-Project-sub026/ran/pusch"
	"github.com/srsran/srsRAN-Project-sub026/ran/srs"
	"github.com/srsran/srsRAN-Project-sub026/slot"
)

// demoNumerology is the only numerology the run command provisions
// processors for; a real instance would size this from config.Config's
// ActiveSCS bitmask, but one numerology is enough to exercise the full
// admission/dispatch/notify pipeline.
const demoNumerology = 1

// loggingNotifier adapts every completed reception result onto the
// structured logger, standing in for the FAPI-facing consumer this core
// does not implement, and feeds SRS and PUSCH results into the
// channel-state manager exactly as a real scheduler integration would.
type loggingNotifier struct {
	log        *zap.Logger
	csi        *csi.Manager
	collectors *metrics.Collectors
}

func (n *loggingNotifier) OnNewPRACHResults(r notifier.PRACHResult) {
	n.log.Info("prach result", zap.Int("system_slot", r.SlotSystemSlot), zap.Bool("detected", r.Detected), zap.Int("nof_preambles", len(r.Preambles)))
}

func (n *loggingNotifier) OnNewPUSCHResultsControl(r notifier.PUSCHControlResult) {
	n.log.Info("pusch control result", zap.Uint16("rnti", r.RNTI), zap.Uint8("harq_id", r.HARQID), zap.Int("status", int(r.Status)))
}

func (n *loggingNotifier) OnNewPUSCHResultsData(r notifier.PUSCHDataResult) {
	n.log.Info("pusch data result", zap.Uint16("rnti", r.RNTI), zap.Uint8("harq_id", r.HARQID), zap.Bool("crc_passed", r.CRCPassed), zap.Float64("sinr_db", r.SINRdB))
	n.csi.UpdatePUSCHSNR(r.RNTI, r.SINRdB)
}

func (n *loggingNotifier) OnNewPUCCHResults(r notifier.PUCCHResult) {
	n.log.Info("pucch result", zap.Uint16("rnti", r.RNTI), zap.Int("status", int(r.Status)))
}

func (n *loggingNotifier) OnNewSRSResults(r notifier.SRSResult) {
	n.log.Info("srs result", zap.Uint16("rnti", r.RNTI), zap.Float64("rsrp_db", r.Result.RSRPdB), zap.Float64("noise_variance", r.Result.NoiseVariance))
	start := time.Now()
	n.csi.UpdateSRSChannelMatrix(r.RNTI, r.Result.ChannelMatrix)
	n.collectors.TPMISelectLatency.Observe(time.Since(start).Seconds())
	if tpmi, ok := n.csi.RecommendedTPMI(r.RNTI, 1); ok {
		n.log.Debug("recommended tpmi", zap.Uint16("rnti", r.RNTI), zap.Int("tpmi", tpmi.TPMI))
	}
}

func newRunCommand() *cobra.Command {
	var nofSlots int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive synthetic uplink traffic through a demo processor pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, nofSlots)
		},
	}

	cmd.Flags().IntVar(&nofSlots, "slots", 4, "number of demo slots to drive")
	return cmd
}

func runDemo(cmd *cobra.Command, nofSlots int) error {
	log := upperphylog.Log()
	defer log.Sync() //nolint:errcheck

	reg := prometheus.NewRegistry()
	collectors := metrics.NewCollectors(reg)

	const (
		nofRxPorts     = 2
		nofGrids       = 4
		nofSubcarriers = 273 * 12
		nofSymbols     = 14
		maxSupportedPRB = 106
	)

	gridPool := demokernels.NewGridPool(nofGrids, nofRxPorts, nofSymbols, nofSubcarriers)
	rateBuffers := demokernels.NewRateMatchBufferPool(32)
	payloads := demokernels.NewPayloadPool(1 << 20)

	execs := slotproc.Executors{
		PUSCH: executor.NewWorkerPool(2, 16),
		PUCCH: executor.NewWorkerPool(2, 16),
		SRS:   executor.NewWorkerPool(1, 16),
		PRACH: executor.NewWorkerPool(1, 16),
	}

	kernels := slotproc.Kernels{
		PUSCH:              demokernels.PUSCHProcessor{},
		PUCCH:              demokernels.PUCCHProcessor{},
		PRACH:              demokernels.PRACHDetector{},
		SRSSequences:       demokernels.SequenceGenerator{},
		SRSTimeAlign:       demokernels.TimeAlignmentEstimator{},
		SRSMaxSupportedPRB: maxSupportedPRB,
	}

	channelState := csi.NewManager(4, pusch.FullyAndPartialAndNonCoherent)
	notif := &loggingNotifier{log: log, csi: channelState, collectors: collectors}

	proc := slotproc.New(demoNumerology, kernels, execs, slotproc.Resources{
		RateBuffers: rateBuffers,
		Payloads:    payloads,
	}, nofRxPorts, notif)
	proc.Metrics = collectors

	var processors [5][]*slotproc.Processor
	processors[demoNumerology] = []*slotproc.Processor{proc}
	pool := procpool.New(processors)

	const rnti = uint16(0x4601)
	channelState.ConfigureUE(rnti, 2)

	for i := 0; i < nofSlots; i++ {
		sp := slot.New(demoNumerology, 0, uint16(i%int(slot.NofSlotsPerFrame(demoNumerology))))

		gridID, g, ok := gridPool.Acquire()
		if !ok {
			log.Warn("grid pool exhausted, skipping slot", zap.Stringer("slot", sp))
			continue
		}

		handle, err := pool.GetPDURepository(sp, g, gridPool, gridID)
		if err != nil {
			log.Warn("repository admission failed", zap.Stringer("slot", sp), zap.Error(err))
			gridPool.Release(gridID)
			continue
		}

		if err := handle.AddPUSCH(demoPUSCH(rnti)); err != nil {
			log.Warn("pusch admission rejected", zap.Error(err))
		}
		for _, pdu := range demoPUCCHFormat1Batch(rnti + 1) {
			if err := handle.AddPUCCH(pdu); err != nil {
				log.Warn("pucch admission rejected", zap.Error(err))
			}
		}
		if err := handle.AddSRS(rnti, demoSRSConfig()); err != nil {
			log.Warn("srs admission rejected", zap.Error(err))
		}

		if !handle.Release() {
			log.Warn("repository release failed", zap.Stringer("slot", sp))
		}

		view := pool.GetSlotProcessor(sp)
		for sym := 0; sym < nofSymbols; sym++ {
			view.HandleRxSymbol(sym, true)
		}

		log.Info("demo slot complete", zap.Stringer("slot", sp))
		payloads.Reset()
	}

	proc.Stop()
	for _, e := range []*executor.WorkerPool{
		execs.PUSCH.(*executor.WorkerPool),
		execs.PUCCH.(*executor.WorkerPool),
		execs.SRS.(*executor.WorkerPool),
		execs.PRACH.(*executor.WorkerPool),
	} {
		if err := e.Stop(); err != nil {
			log.Warn("executor stop returned an error", zap.Error(err))
		}
	}

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ran %d demo slots, collected %d metric families\n", nofSlots, len(families))
	return nil
}

func demoPUSCH(rnti uint16) pusch.PDU {
	return pusch.PDU{
		RNTI:        rnti,
		HARQID:      0,
		TBSizeBytes: 256,
		Carrier: pusch.CarrierConfiguration{
			Numerology:           demoNumerology,
			NofPRB:               106,
			SubcarrierSpacingKHz: 30,
		},
		DMRS: pusch.DMRSConfiguration{
			SequenceID:    0,
			NSCID:         0,
			NofCDMGroups:  2,
			AdditionalPos: 0,
		},
		Allocation: pusch.Allocation{
			StartSymbol: 0,
			NofSymbols:  14,
			StartRB:     0,
			NofRB:       25,
		},
		UCI: &pusch.UCIConfiguration{
			NofHARQAckBits: 1,
			AlphaScaling:   1.0,
		},
		Codeword:    pusch.Codeword{RV: pusch.RV0, NewData: true, MCS: 10},
		NofTxLayers: 1,
		NofRxPorts:  2,
	}
}

// demoPUCCHFormat1Batch returns two Format-1 PDUs sharing one time-
// frequency resource on different cyclic shifts, so the repository merges
// them into a single dispatched multi-UE batch.
func demoPUCCHFormat1Batch(firstRNTI uint16) []pucch.PDU {
	common := pucch.Common{
		StartSymbol: 0,
		NofSymbols:  14,
		StartRB:     0,
		NofRB:       1,
		HoppingRB:   -1,
	}
	mk := func(rnti uint16, cs int) pucch.PDU {
		c := common
		c.RNTI = rnti
		return pucch.PDU{
			Format: pucch.Format1,
			Format1: pucch.Format1Config{
				Common:             c,
				InitialCyclicShift: cs,
				TimeDomainOCC:      0,
				NofHARQAckBits:     1,
			},
		}
	}
	return []pucch.PDU{mk(firstRNTI, 0), mk(firstRNTI+1, 3)}
}

func demoSRSConfig() srs.ResourceConfiguration {
	return srs.ResourceConfiguration{
		NofAntennaPorts:    2,
		NofSymbols:         4,
		StartSymbol:        10,
		ConfigurationIndex: 0,
		SequenceID:         0,
		BandwidthIndex:     0,
		Comb:               srs.CombSizeTwo,
		CombOffset:         0,
		CyclicShift:        0,
		FreqPosition:       0,
		FreqShift:          0,
		FreqHopping:        0,
		Hopping:            srs.HoppingNeither,
	}
}
