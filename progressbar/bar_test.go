package progressbar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvance(t *testing.T) {
	bar := New(4)
	out, err := bar.Advance(1)
	assert.NoError(t, err)
	assert.Contains(t, out, "1 / 4")
}

func TestAdvanceRejectsNegative(t *testing.T) {
	bar := New(4)
	_, err := bar.Advance(-1)
	assert.Error(t, err)
}

func TestDoneFillsBar(t *testing.T) {
	bar := New(3)
	out := bar.Done()
	assert.Contains(t, out, "3 / 3")
}
