package stats

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
)

// HeapInUse returns the bytes held by live Go heap spans.
func HeapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapInuse
}

// FreeMemory returns the memory the system can still hand out, or 0 when the
// platform does not report it.
func FreeMemory() uint64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0
	}
	return vm.Available
}
