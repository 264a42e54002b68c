package gpu

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gekko3d/pointcloud"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/google/uuid"
)

var formatNames = map[string]wgpu.TextureFormat{
	"bgra8unorm":      wgpu.TextureFormatBGRA8Unorm,
	"bgra8unorm-srgb": wgpu.TextureFormatBGRA8UnormSrgb,
	"rgba8unorm":      wgpu.TextureFormatRGBA8Unorm,
	"rgba8unorm-srgb": wgpu.TextureFormatRGBA8UnormSrgb,
}

// ParseFormat maps a config format name onto a texture format.
func ParseFormat(name string) (wgpu.TextureFormat, error) {
	f, ok := formatNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown surface format %q", pointcloud.ErrInvalidConfig, name)
	}
	return f, nil
}

// SelectFormat picks preferred if the surface supports it, otherwise the surface's first
// format. fallback reports whether preferred was unavailable.
func SelectFormat(supported []wgpu.TextureFormat, preferred wgpu.TextureFormat) (format wgpu.TextureFormat, fallback bool, err error) {
	if len(supported) == 0 {
		return 0, false, fmt.Errorf("%w: surface reports no formats", pointcloud.ErrDeviceUnavailable)
	}
	for _, f := range supported {
		if f == preferred {
			return f, false, nil
		}
	}
	return supported[0], true, nil
}

type ContextOptions struct {
	Format wgpu.TextureFormat
	Logger pointcloud.Logger
}

// Context owns the device and the configured surface. Holding one means the device is ready.
type Context struct {
	ID       uuid.UUID
	Instance *wgpu.Instance
	Surface  *wgpu.Surface
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Config   *wgpu.SurfaceConfiguration

	log       pointcloud.Logger
	lost      atomic.Bool
	releasing atomic.Bool
}

// NewContext acquires an adapter and device for window and configures its surface. Every
// failure wraps pointcloud.ErrDeviceUnavailable.
func NewContext(window *glfw.Window, opts ContextOptions) (*Context, error) {
	c := &Context{
		ID:  uuid.New(),
		log: pointcloud.OrNop(opts.Logger),
	}
	if opts.Format == 0 {
		opts.Format = wgpu.TextureFormatBGRA8Unorm
	}

	c.Instance = wgpu.CreateInstance(nil)
	if c.Instance == nil {
		return nil, fmt.Errorf("%w: failed to create WebGPU instance", pointcloud.ErrDeviceUnavailable)
	}
	c.Surface = c.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	var err error
	c.Adapter, err = c.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: c.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("%w: request adapter: %v", pointcloud.ErrDeviceUnavailable, err)
	}

	c.Device, err = c.Adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:              c.label("Device"),
		DeviceLostCallback: c.onDeviceLost,
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("%w: request device: %v", pointcloud.ErrDeviceUnavailable, err)
	}
	c.Queue = c.Device.GetQueue()

	caps := c.Surface.GetCapabilities(c.Adapter)
	format, fallback, err := SelectFormat(caps.Formats, opts.Format)
	if err != nil {
		c.Release()
		return nil, err
	}
	if fallback {
		c.log.Warnf("surface does not support %v, using %v", opts.Format, format)
	}

	width, height := window.GetFramebufferSize()
	c.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(max(width, 1)),
		Height:      uint32(max(height, 1)),
		PresentMode: wgpu.PresentModeFifo, // vsync
	}
	if len(caps.AlphaModes) > 0 {
		c.Config.AlphaMode = caps.AlphaModes[0]
	}
	c.Surface.Configure(c.Adapter, c.Device, c.Config)

	c.log.Infof("device ready (context %s, format %v, %dx%d)", c.ID, format, c.Config.Width, c.Config.Height)
	return c, nil
}

func (c *Context) label(name string) string {
	return fmt.Sprintf("%s %s", name, c.ID.String()[:8])
}

func (c *Context) onDeviceLost(reason wgpu.DeviceLostReason, message string) {
	if c.releasing.Load() {
		return
	}
	c.lost.Store(true)
	c.log.Errorf("device lost (context %s, reason %v): %s", c.ID, reason, message)
}

// Lost reports whether the device became unusable.
func (c *Context) Lost() bool {
	return c.lost.Load()
}

func (c *Context) Format() wgpu.TextureFormat {
	return c.Config.Format
}

func (c *Context) Size() (width, height int) {
	return int(c.Config.Width), int(c.Config.Height)
}

// Resize reconfigures the surface. Zero sizes (minimized windows) are ignored.
func (c *Context) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Config.Width = uint32(width)
	c.Config.Height = uint32(height)
	c.Surface.Configure(c.Adapter, c.Device, c.Config)
}

func (c *Context) reconfigure() {
	c.Surface.Configure(c.Adapter, c.Device, c.Config)
}

func (c *Context) Release() {
	c.releasing.Store(true)
	if c.Device != nil {
		c.Queue = nil
		c.Device.Release()
		c.Device = nil
	}
	if c.Adapter != nil {
		c.Adapter.Release()
		c.Adapter = nil
	}
	if c.Surface != nil {
		c.Surface.Release()
		c.Surface = nil
	}
	if c.Instance != nil {
		c.Instance.Release()
		c.Instance = nil
	}
}
