package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded WGSL shader sources, compiled at build time via go:embed.

//go:embed shaders/flat.wgsl
var flatShaderSource string

//go:embed shaders/marker.wgsl
var markerShaderSource string

//go:embed shaders/text.wgsl
var textShaderSource string

// createShaderModule compiles WGSL into a shader module. Backends that
// only consume SPIR-V reject the WGSL source; for those the WGSL is
// compiled to SPIR-V with naga and submitted again.
func createShaderModule(device hal.Device, label, wgsl string) (hal.ShaderModule, error) {
	if wgsl == "" {
		return nil, fmt.Errorf("%s shader source is empty", label)
	}

	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{WGSL: wgsl},
	})
	if err == nil {
		return shader, nil
	}

	spirv, cerr := compileSPIRV(wgsl)
	if cerr != nil {
		return nil, fmt.Errorf("compile %s shader: %w (wgsl rejected: %v)", label, cerr, err)
	}
	shader, serr := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if serr != nil {
		return nil, fmt.Errorf("create %s shader module: %w", label, serr)
	}
	return shader, nil
}

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, err
	}
	// SPIR-V is little-endian 32-bit words.
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
