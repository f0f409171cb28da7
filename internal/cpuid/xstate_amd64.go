//go:build amd64

package cpuid

// EnableSSE flips the control-register bits that allow SSE register
// state to be saved and restored: clears CR0.EM, sets CR0.MP, then
// sets CR4.OSFXSR and CR4.OSXMMEXCPT.
//
// Ring 0 only — from user mode the MOV-to-CR instructions raise #GP
// and the process dies. The probe never calls this; it exists for a
// boot stage that is ready to manage the extended register-save area.
func EnableSSE() {
	enableSSE()
}

func enableSSE()
