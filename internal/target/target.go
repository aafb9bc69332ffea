// Package target describes the architecture a tensor group is lowered for.
package target

import (
	"fmt"
	"strings"
)

// Arch is a closed set of architecture variants. Code that depends on the
// variant goes through Visit so every new variant must be handled everywhere.
type Arch interface {
	Visit(v ArchVisitor)
	String() string
	arch()
}

// ArchVisitor has one method per Arch variant.
type ArchVisitor interface {
	Unknown(UnknownArch)
	X86(X86Arch)
	ARM(ARMArch)
	NVGPU(NVGPUArch)
	HygonHIP(HygonHIPArch)
	HygonSYCL(HygonSYCLArch)
}

type (
	UnknownArch   struct{}
	X86Arch       struct{}
	ARMArch       struct{}
	NVGPUArch     struct{}
	HygonHIPArch  struct{}
	HygonSYCLArch struct{}
)

func (a UnknownArch) Visit(v ArchVisitor)   { v.Unknown(a) }
func (a X86Arch) Visit(v ArchVisitor)       { v.X86(a) }
func (a ARMArch) Visit(v ArchVisitor)       { v.ARM(a) }
func (a NVGPUArch) Visit(v ArchVisitor)     { v.NVGPU(a) }
func (a HygonHIPArch) Visit(v ArchVisitor)  { v.HygonHIP(a) }
func (a HygonSYCLArch) Visit(v ArchVisitor) { v.HygonSYCL(a) }

func (UnknownArch) String() string   { return "unknown" }
func (X86Arch) String() string       { return "x86" }
func (ARMArch) String() string       { return "arm" }
func (NVGPUArch) String() string     { return "nvgpu" }
func (HygonHIPArch) String() string  { return "hygon-hip" }
func (HygonSYCLArch) String() string { return "hygon-sycl" }

func (UnknownArch) arch()   {}
func (X86Arch) arch()       {}
func (ARMArch) arch()       {}
func (NVGPUArch) arch()     {}
func (HygonHIPArch) arch()  {}
func (HygonSYCLArch) arch() {}

// ParseArch maps a name (as printed by String) to an Arch.
func ParseArch(s string) (Arch, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown":
		return UnknownArch{}, nil
	case "x86", "x86_64", "amd64":
		return X86Arch{}, nil
	case "arm", "arm64", "aarch64":
		return ARMArch{}, nil
	case "nvgpu", "cuda":
		return NVGPUArch{}, nil
	case "hygon-hip", "hip":
		return HygonHIPArch{}, nil
	case "hygon-sycl", "sycl":
		return HygonSYCLArch{}, nil
	default:
		return UnknownArch{}, fmt.Errorf("unknown architecture %q (expected: unknown|x86|arm|nvgpu|hygon-hip|hygon-sycl)", s)
	}
}

// Target describes the code generation target.
type Target struct {
	Arch Arch
	Bits int
}

func Host() Target    { return Target{Arch: X86Arch{}, Bits: 64} }
func NVGPU() Target   { return Target{Arch: NVGPUArch{}, Bits: 64} }
func Default() Target { return Target{Arch: UnknownArch{}, Bits: 64} }

// Parse builds a 64-bit Target for the named architecture.
func Parse(name string) (Target, error) {
	a, err := ParseArch(name)
	if err != nil {
		return Default(), err
	}
	return Target{Arch: a, Bits: 64}, nil
}

func (t Target) String() string {
	if t.Arch == nil {
		return "unknown"
	}
	return t.Arch.String()
}

// HasLocalMemory reports whether the target exposes an addressable
// shared/local accelerator memory hierarchy.
func (t Target) HasLocalMemory() bool {
	if t.Arch == nil {
		return false
	}
	var v memoryHierarchy
	t.Arch.Visit(&v)
	return v.local
}

type memoryHierarchy struct{ local bool }

func (m *memoryHierarchy) Unknown(UnknownArch)     { m.local = false }
func (m *memoryHierarchy) X86(X86Arch)             { m.local = false }
func (m *memoryHierarchy) ARM(ARMArch)             { m.local = false }
func (m *memoryHierarchy) NVGPU(NVGPUArch)         { m.local = true }
func (m *memoryHierarchy) HygonHIP(HygonHIPArch)   { m.local = true }
func (m *memoryHierarchy) HygonSYCL(HygonSYCLArch) { m.local = true }
