package renderer

import (
	"fmt"
	"image"

	"github.com/devblok/korugl/core"
	"github.com/devblok/korugl/device"
	"github.com/devblok/korugl/store"
)

// Sampler describes how a texture is filtered and wrapped. It is a plain
// value, the device state it stands for is applied on every bind.
type Sampler struct {
	WrapS     device.TexParam
	WrapT     device.TexParam
	MinFilter device.TexParam
	MagFilter device.TexParam
}

// DefaultSampler repeats and filters trilinearly
func DefaultSampler() Sampler {
	return Sampler{
		WrapS:     device.Repeat,
		WrapT:     device.Repeat,
		MinFilter: device.LinearMipmapLinear,
		MagFilter: device.Linear,
	}
}

// ClampSampler clamps to the edge without mipmaps, for render targets and
// cube maps.
func ClampSampler() Sampler {
	return Sampler{
		WrapS:     device.ClampToEdge,
		WrapT:     device.ClampToEdge,
		MinFilter: device.Linear,
		MagFilter: device.Linear,
	}
}

func (s Sampler) apply(dev device.Device, target device.TextureTarget) {
	dev.TexParameter(target, device.TextureWrapS, s.WrapS)
	dev.TexParameter(target, device.TextureWrapT, s.WrapT)
	if target == device.TextureCubeMap {
		dev.TexParameter(target, device.TextureWrapR, s.WrapT)
	}
	dev.TexParameter(target, device.TextureMinFilter, s.MinFilter)
	dev.TexParameter(target, device.TextureMagFilter, s.MagFilter)
}

// pixels converts img into tightly packed rows of the given format
func pixels(format device.TextureFormat, img image.Image) ([]byte, error) {
	rgba := core.RGBAPixels(img)
	switch format {
	case device.RGBA:
		return rgba, nil
	case device.RGB:
		rgb := make([]byte, 0, len(rgba)/4*3)
		for idx := 0; idx < len(rgba); idx += 4 {
			rgb = append(rgb, rgba[idx], rgba[idx+1], rgba[idx+2])
		}
		return rgb, nil
	}
	return nil, fmt.Errorf("texture format 0x%x cannot hold image data", uint32(format))
}

func (r *Renderer) storeTexture(img Image, sampler Sampler) store.Handle {
	return r.textures.Insert(Texture{
		Source:  r.images.Insert(img),
		Sampler: r.samplers.Insert(sampler),
	})
}

// Bake2DTexture uploads img as a 2D texture in the given format and
// stores it with its sampler. Mipmaps are generated when the sampler's
// minification filter reads them.
func (r *Renderer) Bake2DTexture(format device.TextureFormat, sampler Sampler, img image.Image) (store.Handle, error) {
	data, err := pixels(format, img)
	if err != nil {
		return store.Handle{}, err
	}
	tex, err := r.dev.CreateTexture()
	if err != nil {
		return store.Handle{}, fmt.Errorf("create texture: %w", err)
	}

	width, height := int32(img.Bounds().Dx()), int32(img.Bounds().Dy())
	r.dev.BindTexture(device.Texture2D, tex)
	r.dev.TexImage2D(device.Texture2D, 0, format, width, height, device.UnsignedByte, data)
	if sampler.MinFilter.UsesMipmaps() {
		r.dev.GenerateMipmap(device.Texture2D)
	}
	r.dev.BindTexture(device.Texture2D, 0)

	return r.storeTexture(Image{
		Texture: tex,
		Target:  device.Texture2D,
		Format:  format,
		Width:   width,
		Height:  height,
	}, sampler), nil
}

// Bake2DRGBTexture is Bake2DTexture for opaque images
func (r *Renderer) Bake2DRGBTexture(sampler Sampler, img image.Image) (store.Handle, error) {
	return r.Bake2DTexture(device.RGB, sampler, img)
}

// BakeCubemap uploads six faces, ordered +X -X +Y -Y +Z -Z, as a cube map.
// Faces are resampled to the size of the first one when they differ.
func (r *Renderer) BakeCubemap(sampler Sampler, faces [6]image.Image) (store.Handle, error) {
	size := faces[0].Bounds().Size()
	tex, err := r.dev.CreateTexture()
	if err != nil {
		return store.Handle{}, fmt.Errorf("create cube map: %w", err)
	}

	r.dev.BindTexture(device.TextureCubeMap, tex)
	for idx, face := range faces {
		if face.Bounds().Size() != size {
			face = core.ScaleImage(face, size.X, size.Y)
		}
		data, err := pixels(device.RGBA, face)
		if err != nil {
			return store.Handle{}, err
		}
		r.dev.TexImage2D(device.CubeMapFaces[idx], 0, device.RGBA, int32(size.X), int32(size.Y), device.UnsignedByte, data)
	}
	if sampler.MinFilter.UsesMipmaps() {
		r.dev.GenerateMipmap(device.TextureCubeMap)
	}
	r.dev.BindTexture(device.TextureCubeMap, 0)

	return r.storeTexture(Image{
		Texture: tex,
		Target:  device.TextureCubeMap,
		Format:  device.RGBA,
		Width:   int32(size.X),
		Height:  int32(size.Y),
	}, sampler), nil
}
