package imagesearch

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
)

const sampleImageSize = 128

// sampleImage is the fixed picture searched for when checking a configuration.
var sampleImage = sync.OnceValue(func() []byte {
	img := image.NewRGBA(image.Rect(0, 0, sampleImageSize, sampleImageSize))
	for y := 0; y < sampleImageSize; y++ {
		for x := 0; x < sampleImageSize; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 2), G: uint8(y * 2), B: uint8((x + y) % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		panic(err)
	}
	return buf.Bytes()
})
