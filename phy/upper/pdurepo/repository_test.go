package pdurepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srsran/srsRAN-Project-sub026/phy/upper/pdurepo"
	"github.com/srsran/srsRAN-Project-sub026/phy/upper/ulfsm"
	"github.com/srsran/srsRAN-Project-sub026/ran/pucch"
	"github.com/srsran/srsRAN-Project-sub026/ran/pusch"
)

type fakeReader struct{}

func (fakeReader) Get(dst []complex64, port, symbol, k0, stride int) {}

type fakePool struct{ released []int }

func (p *fakePool) Release(id int) { p.released = append(p.released, id) }

func testPUSCH(endSymbol int) pusch.PDU {
	return pusch.PDU{Allocation: pusch.Allocation{StartSymbol: endSymbol, NofSymbols: 1}}
}

func format1PDU(rnti uint16, startRB int) pucch.PDU {
	return pucch.PDU{
		Format: pucch.Format1,
		Format1: pucch.Format1Config{
			Common: pucch.Common{RNTI: rnti, StartSymbol: 0, NofSymbols: 14, StartRB: startRB, NofRB: 1, HoppingRB: -1},
		},
	}
}

func TestAddPUSCHBucketsByEndSymbolAndIncrementsFSM(t *testing.T) {
	fsm := ulfsm.New()
	repo, ok := pdurepo.NewRepository(fsm, 1, fakeReader{}, &fakePool{}, 0)
	require.True(t, ok)

	require.NoError(t, repo.AddPUSCH(testPUSCH(5)))
	require.Len(t, repo.PUSCHAt(5), 1)
	require.Equal(t, uint32(1), fsm.State()&0xFFF)
}

func TestAddPUCCHFormat1MergesSharedResource(t *testing.T) {
	fsm := ulfsm.New()
	repo, ok := pdurepo.NewRepository(fsm, 1, fakeReader{}, &fakePool{}, 0)
	require.True(t, ok)

	require.NoError(t, repo.AddPUCCH(format1PDU(1, 2)))
	require.NoError(t, repo.AddPUCCH(format1PDU(2, 2)))
	require.NoError(t, repo.AddPUCCH(format1PDU(3, 9)))

	batches := repo.Format1BatchesAt(13)
	require.Len(t, batches, 2, "one batch for the shared resource, one for the distinct resource")

	// Two independent batches => two pending tasks, not three.
	require.Equal(t, uint32(2), fsm.State()&0xFFF)
}

func TestFinishAddingPDUsBindsGridAndClosesAdmission(t *testing.T) {
	fsm := ulfsm.New()
	pool := &fakePool{}
	repo, ok := pdurepo.NewRepository(fsm, 1, fakeReader{}, pool, 3)
	require.True(t, ok)
	require.NoError(t, repo.AddPUSCH(testPUSCH(0)))

	handle, ok := repo.FinishAddingPDUs()
	require.True(t, ok)
	require.True(t, handle.Valid())
	require.EqualValues(t, 1, handle.RefCount())

	require.Error(t, repo.AddPUSCH(testPUSCH(1)), "admission must be closed after release")

	_, ok = repo.FinishAddingPDUs()
	require.False(t, ok, "release is not idempotent")
}

func TestBucketCountIsFourteen(t *testing.T) {
	require.Equal(t, 14, pdurepo.Buckets())
}
