package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGBToHSV(t *testing.T) {
	assertT := assert.New(t)

	assertT.Equal(HSV{}, RGB{}.HSV())
	assertT.Equal(HSV{H: 0, S: 255, V: 255}, RGB{R: 255}.HSV())
	assertT.Equal(HSV{H: 85, S: 255, V: 255}, RGB{G: 255}.HSV())
	assertT.Equal(HSV{H: 171, S: 255, V: 255}, RGB{B: 255}.HSV())
	assertT.Equal(HSV{V: 10}, RGB{R: 10, G: 10, B: 10}.HSV())
}

func TestHSVToRGB(t *testing.T) {
	assertT := assert.New(t)

	assertT.Equal(RGB{R: 77, G: 77, B: 77}, HSV{H: 120, V: 77}.RGB())
	assertT.Equal(RGB{R: 255}, HSV{S: 255, V: 255}.RGB())
	assertT.Equal(RGB{}, HSV{H: 200, S: 255}.RGB())
}
