package average

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		r, err := New(size, 1.0)
		assert.ErrorIs(t, err, ErrInvalidSize)
		assert.Nil(t, r)
	}
}

func TestNew_Seeded(t *testing.T) {
	r, err := New(5, 3.5)
	require.NoError(t, err)

	assert.Equal(t, 5, r.Len())
	assert.Equal(t, 3.5, r.Average())
	assert.Equal(t, 17.5, r.Sum())
	assert.Equal(t, []float64{3.5, 3.5, 3.5, 3.5, 3.5}, r.Values())
}

func TestUpdate_Sequence(t *testing.T) {
	r, err := New(4, 10.0)
	require.NoError(t, err)

	tests := []struct {
		in   float64
		want float64
	}{
		{12, 10.5},
		{8, 9.5},
		{10, 9.5},
		{14, 11.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Update(tt.in))
	}
	assert.Equal(t, []float64{12, 8, 10, 14}, r.Values())
}

func TestUpdate_Converges(t *testing.T) {
	const size = 7
	r, err := New(size, 100.0)
	require.NoError(t, err)

	var avg float64
	for i := 0; i < size; i++ {
		assert.NotEqual(t, 2.0, r.Average())
		avg = r.Update(2)
	}
	assert.Equal(t, 2.0, avg)
}

func TestUpdate_Integer(t *testing.T) {
	r, err := New(3, 100)
	require.NoError(t, err)

	assert.Equal(t, 100, r.Update(101)) // 301/3
	assert.Equal(t, 101, r.Update(102)) // 303/3
	assert.Equal(t, 102, r.Update(103)) // 306/3
}

func TestUpdate_Unsigned(t *testing.T) {
	r, err := New[uint16](2, 10)
	require.NoError(t, err)

	assert.Equal(t, uint16(7), r.Update(4)) // 14/2
	assert.Equal(t, uint16(4), r.Update(4))
	assert.Equal(t, uint16(12), r.Update(20))
}

func TestUpdate_SumInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, size := range []int{1, 2, 4, 10, 120} {
		r, err := New(size, rng.Float64()*3000)
		require.NoError(t, err)

		for i := 0; i < 5*size+3; i++ {
			r.Update(rng.Float64() * 3000)

			var sum float64
			for _, v := range r.Values() {
				sum += v
			}
			assert.InDelta(t, sum, r.Sum(), 1e-6, "size=%d step=%d", size, i)
			assert.InDelta(t, sum/float64(size), r.Average(), 1e-9)
		}
	}
}

func TestValues_OldestFirst(t *testing.T) {
	r, err := New(3, 0)
	require.NoError(t, err)

	r.Update(1)
	assert.Equal(t, []int{0, 0, 1}, r.Values())
	r.Update(2)
	r.Update(3)
	r.Update(4)
	assert.Equal(t, []int{2, 3, 4}, r.Values())
}

func TestResync(t *testing.T) {
	r, err := New(3, 1.0)
	require.NoError(t, err)

	r.sum = 1000
	r.Resync()
	assert.Equal(t, 3.0, r.Sum())
}
