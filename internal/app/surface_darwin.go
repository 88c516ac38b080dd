package app

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework QuartzCore -framework Metal

#import <Cocoa/Cocoa.h>
#import <QuartzCore/CAMetalLayer.h>
#import <Metal/Metal.h>

void* setupMetalLayer(void* nsWindow) {
    if (nsWindow == NULL) {
        return NULL;
    }

    NSWindow* window = (__bridge NSWindow*)nsWindow;
    NSView* view = [window contentView];

    if (view == nil) {
        return NULL;
    }

    [view setWantsLayer:YES];

    CAMetalLayer* metalLayer = [CAMetalLayer layer];
    metalLayer.device = MTLCreateSystemDefaultDevice();
    metalLayer.pixelFormat = MTLPixelFormatBGRA8Unorm;
    metalLayer.framebufferOnly = YES;
    metalLayer.frame = view.bounds;
    metalLayer.contentsScale = [window backingScaleFactor];

    [view setLayer:metalLayer];

    return (__bridge void*)metalLayer;
}
*/
import "C"

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rajveermalviya/go-webgpu/wgpu"
	"github.com/sirupsen/logrus"
)

// CreateSurface creates a WebGPU surface from a GLFW window by attaching a
// CAMetalLayer to the window's content view.
func CreateSurface(instance *wgpu.Instance, window *glfw.Window) *wgpu.Surface {
	nsWindow := window.GetCocoaWindow()
	if nsWindow == nil {
		logrus.Error("GetCocoaWindow returned nil")
		return nil
	}

	metalLayer := C.setupMetalLayer(nsWindow)
	if metalLayer == nil {
		logrus.Error("Metal layer setup failed")
		return nil
	}

	return instance.CreateSurface(&wgpu.SurfaceDescriptor{
		Label: "primary_surface",
		MetalLayer: &wgpu.SurfaceDescriptorFromMetalLayer{
			Layer: unsafe.Pointer(metalLayer),
		},
	})
}
