package renderer

import (
	"fmt"

	"github.com/devblok/korugl/device"
	"github.com/devblok/korugl/store"
)

// BakeRenderTarget creates an offscreen target with a color texture read
// through sampler and, when depth is set, a depth texture.
func (r *Renderer) BakeRenderTarget(width, height int32, sampler Sampler, depth bool) (store.Handle, error) {
	fb, err := r.dev.CreateFramebuffer()
	if err != nil {
		return store.Handle{}, fmt.Errorf("create framebuffer: %w", err)
	}
	color, err := r.dev.CreateTexture()
	if err != nil {
		return store.Handle{}, fmt.Errorf("create color attachment: %w", err)
	}

	r.dev.BindFramebuffer(fb)
	defer r.dev.BindFramebuffer(0)

	r.dev.BindTexture(device.Texture2D, color)
	r.dev.TexImage2D(device.Texture2D, 0, device.RGBA, width, height, device.UnsignedByte, nil)
	r.dev.FramebufferTexture2D(device.ColorAttachment0, device.Texture2D, color)

	var depthTex device.Texture
	if depth {
		if depthTex, err = r.dev.CreateTexture(); err != nil {
			return store.Handle{}, fmt.Errorf("create depth attachment: %w", err)
		}
		r.dev.BindTexture(device.Texture2D, depthTex)
		r.dev.TexImage2D(device.Texture2D, 0, device.DepthComponent, width, height, device.UnsignedInt, nil)
		r.dev.FramebufferTexture2D(device.DepthAttachment, device.Texture2D, depthTex)
	}
	r.dev.BindTexture(device.Texture2D, 0)

	if err := r.dev.CheckFramebufferComplete(); err != nil {
		return store.Handle{}, fmt.Errorf("render target %dx%d: %w", width, height, err)
	}

	target := RenderTarget{
		Framebuffer: r.framebuffers.Insert(fb),
		ColorTexture: r.storeTexture(Image{
			Texture: color,
			Target:  device.Texture2D,
			Format:  device.RGBA,
			Width:   width,
			Height:  height,
		}, sampler),
		Width:  width,
		Height: height,
	}
	if depth {
		target.DepthTexture = r.storeTexture(Image{
			Texture: depthTex,
			Target:  device.Texture2D,
			Format:  device.DepthComponent,
			Width:   width,
			Height:  height,
		}, Sampler{
			WrapS:     device.ClampToEdge,
			WrapT:     device.ClampToEdge,
			MinFilter: device.Nearest,
			MagFilter: device.Nearest,
		})
	}
	return r.targets.Insert(target), nil
}
