package perfevent

// SymbolPrefix is the prefix shared by every generic event symbol.
const SymbolPrefix = "PERF_COUNT_HW_"

// Event types and cache encodings from the perf_event_open(2) ABI.
const (
	typeHardware = 0
	typeHWCache  = 3

	cacheL1D  = 0
	cacheL1I  = 1
	cacheLL   = 2
	cacheDTLB = 3
	cacheITLB = 4
	cacheBPU  = 5

	cacheOpRead     = 0
	cacheResultMiss = 1
)

// codeTypeShift places the event type above the 56-bit config field.
const codeTypeShift = 56

type eventDef struct {
	symbol string
	typ    uint32
	config uint64
	short  string
	long   string
}

func cacheConfig(cache, op, result uint64) uint64 {
	return cache | op<<8 | result<<16
}

// genericEvents is the portable event vocabulary, in enumeration order.
var genericEvents = []eventDef{
	{"PERF_COUNT_HW_CPU_CYCLES", typeHardware, 0,
		"Total cycles",
		"Total CPU cycles. Frequency scaling can affect this count."},
	{"PERF_COUNT_HW_INSTRUCTIONS", typeHardware, 1,
		"Instructions retired",
		"Retired instructions. Interrupts and other hardware events may skew the count."},
	{"PERF_COUNT_HW_CACHE_REFERENCES", typeHardware, 2,
		"Cache accesses",
		"Cache accesses, usually last level cache accesses."},
	{"PERF_COUNT_HW_CACHE_MISSES", typeHardware, 3,
		"Cache misses",
		"Cache misses, usually last level cache misses."},
	{"PERF_COUNT_HW_BRANCH_INSTRUCTIONS", typeHardware, 4,
		"Branch instructions retired",
		"Retired branch instructions."},
	{"PERF_COUNT_HW_BRANCH_MISSES", typeHardware, 5,
		"Mispredicted branches",
		"Mispredicted branch instructions."},
	{"PERF_COUNT_HW_BUS_CYCLES", typeHardware, 6,
		"Bus cycles",
		"Bus cycles, which can differ from total cycles."},
	{"PERF_COUNT_HW_STALLED_CYCLES_FRONTEND", typeHardware, 7,
		"Frontend stall cycles",
		"Stalled cycles during instruction issue."},
	{"PERF_COUNT_HW_STALLED_CYCLES_BACKEND", typeHardware, 8,
		"Backend stall cycles",
		"Stalled cycles during instruction retirement."},
	{"PERF_COUNT_HW_REF_CPU_CYCLES", typeHardware, 9,
		"Reference cycles",
		"Total cycles not affected by CPU frequency scaling."},
	{"PERF_COUNT_HW_CACHE_L1D_READ_MISS", typeHWCache, cacheConfig(cacheL1D, cacheOpRead, cacheResultMiss),
		"L1 data cache read misses",
		"Level 1 data cache read misses."},
	{"PERF_COUNT_HW_CACHE_L1I_READ_MISS", typeHWCache, cacheConfig(cacheL1I, cacheOpRead, cacheResultMiss),
		"L1 instruction cache read misses",
		"Level 1 instruction cache read misses."},
	{"PERF_COUNT_HW_CACHE_LL_READ_MISS", typeHWCache, cacheConfig(cacheLL, cacheOpRead, cacheResultMiss),
		"Last level cache read misses",
		"Last level cache read misses."},
	{"PERF_COUNT_HW_CACHE_DTLB_READ_MISS", typeHWCache, cacheConfig(cacheDTLB, cacheOpRead, cacheResultMiss),
		"Data TLB read misses",
		"Data translation lookaside buffer read misses."},
	{"PERF_COUNT_HW_CACHE_ITLB_READ_MISS", typeHWCache, cacheConfig(cacheITLB, cacheOpRead, cacheResultMiss),
		"Instruction TLB read misses",
		"Instruction translation lookaside buffer read misses."},
	{"PERF_COUNT_HW_CACHE_BPU_READ_MISS", typeHWCache, cacheConfig(cacheBPU, cacheOpRead, cacheResultMiss),
		"Branch prediction unit misses",
		"Branch prediction unit read misses."},
}

func encodeCode(typ uint32, config uint64) Code {
	return Code(uint64(typ)<<codeTypeShift | config&(1<<codeTypeShift-1))
}

func decodeCode(c Code) (typ uint32, config uint64) {
	return uint32(uint64(c) >> codeTypeShift), uint64(c) & (1<<codeTypeShift - 1)
}

func (d eventDef) info(count int) EventInfo {
	return EventInfo{
		Symbol:     d.symbol,
		Code:       encodeCode(d.typ, d.config),
		Count:      count,
		ShortDescr: d.short,
		LongDescr:  d.long,
	}
}

// GenericEvents returns the portable event vocabulary with every event
// marked available once.
func GenericEvents() []EventInfo {
	out := make([]EventInfo, len(genericEvents))
	for i, d := range genericEvents {
		out[i] = d.info(1)
	}
	return out
}
