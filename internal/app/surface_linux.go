package app

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rajveermalviya/go-webgpu/wgpu"
	"github.com/sirupsen/logrus"
)

// CreateSurface creates a WebGPU surface from a GLFW window's X11 handles.
func CreateSurface(instance *wgpu.Instance, window *glfw.Window) *wgpu.Surface {
	display := glfw.GetX11Display()
	if display == nil {
		logrus.Error("GetX11Display returned nil")
		return nil
	}

	return instance.CreateSurface(&wgpu.SurfaceDescriptor{
		Label: "primary_surface",
		XlibWindow: &wgpu.SurfaceDescriptorFromXlibWindow{
			Display: unsafe.Pointer(display),
			Window:  uint32(window.GetX11Window()),
		},
	})
}
