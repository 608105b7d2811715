package pucch

// Format1ResourceKey identifies the shared time-frequency resource that a
// Format-1 batch is built around: every UE entry in a batch occupies the
// same symbols and RBs, differing only in cyclic shift and OCC index.
// Mirrors the key uplink_pdu_slot_repository_impl.h uses to look up an
// existing pucch_f1_collection before creating a new one.
type Format1ResourceKey struct {
	StartSymbol int
	NofSymbols  int
	StartRB     int
	NofRB       int
	HoppingRB   int
}

func keyOf(c Format1Config) Format1ResourceKey {
	return Format1ResourceKey{
		StartSymbol: c.StartSymbol,
		NofSymbols:  c.NofSymbols,
		StartRB:     c.StartRB,
		NofRB:       c.NofRB,
		HoppingRB:   c.HoppingRB,
	}
}

// Format1UEEntry is one UE's distinguishing parameters within a shared
// Format-1 batch, mirroring pucch_f1_collection::ue_entry.
type Format1UEEntry struct {
	RNTI               uint16
	InitialCyclicShift int
	TimeDomainOCC      int
	NofHARQAckBits     int
	SRBitPresent       bool
}

// Format1Batch aggregates every UE scheduled on the same Format-1 resource
// within a slot, so the processor can demodulate the shared resource once
// and despread each UE's bits from it, mirroring pucch_f1_collection.
type Format1Batch struct {
	Resource Format1ResourceKey
	Entries  []Format1UEEntry
}

// Format1BatchSet accumulates Format-1 PDUs into resource-keyed batches
// across one slot, mirroring the map of pucch_f1_collection instances the
// repository keeps per slot.
type Format1BatchSet struct {
	batches []*Format1Batch
	byKey   map[Format1ResourceKey]*Format1Batch
}

// NewFormat1BatchSet returns an empty batch set.
func NewFormat1BatchSet() *Format1BatchSet {
	return &Format1BatchSet{byKey: make(map[Format1ResourceKey]*Format1Batch)}
}

// Add merges a Format-1 PDU into the batch for its resource, creating a new
// batch if this is the first UE seen on that resource this slot.
func (s *Format1BatchSet) Add(c Format1Config) {
	key := keyOf(c)
	entry := Format1UEEntry{
		RNTI:               c.RNTI,
		InitialCyclicShift: c.InitialCyclicShift,
		TimeDomainOCC:      c.TimeDomainOCC,
		NofHARQAckBits:     c.NofHARQAckBits,
		SRBitPresent:       c.SRBitPresent,
	}
	if b, ok := s.byKey[key]; ok {
		b.Entries = append(b.Entries, entry)
		return
	}
	b := &Format1Batch{Resource: key, Entries: []Format1UEEntry{entry}}
	s.byKey[key] = b
	s.batches = append(s.batches, b)
}

// Batches returns every accumulated batch, in the order their resource was
// first seen.
func (s *Format1BatchSet) Batches() []*Format1Batch {
	return s.batches
}

// Len returns the number of distinct resources batched so far.
func (s *Format1BatchSet) Len() int { return len(s.batches) }
