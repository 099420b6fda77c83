package chapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTime_Accepts(t *testing.T) {
	for _, in := range []string{"00:00", "59:59", "00:00:00", "01:02:03", "123:59:59", " 05:30 "} {
		assert.NoError(t, ValidateTime(in), in)
	}
}

func TestValidateTime_TooManyFields(t *testing.T) {
	for _, in := range []string{"00:00:00:00", "1:2:3:4:5"} {
		err := ValidateTime(in)
		require.Error(t, err, in)
		assert.Contains(t, err.Error(), "too many fields")
		assert.True(t, IsKind(err, KindInvalidTime))
	}
}

func TestValidateTime_FieldBounds(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"00:60", "seconds"},
		{"01:02:99", "seconds"},
		{"60:00", "add an hours field"},
		{"01:60:00", "minutes must be less than 60"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := ValidateTime(tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateTime_RejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "42", "aa:bb", "01::02", "-1:00", "+5:00", "05:+9", "1e1:00", "0x1:00"} {
		err := ValidateTime(in)
		require.Error(t, err, in)
		assert.Equal(t, KindInvalidTime, KindOf(err), in)
	}
}

func TestTimeToSeconds(t *testing.T) {
	assert.Equal(t, 3723, TimeToSeconds("01:02:03"))
	assert.Equal(t, 123, TimeToSeconds("02:03"))
	assert.Equal(t, 330, TimeToSeconds("00:05:30"))
	assert.Equal(t, 0, TimeToSeconds(""))
	assert.Equal(t, 0, TimeToSeconds("17"))
	assert.Equal(t, 0, TimeToSeconds("1:2:3:4"))
	assert.Equal(t, 0, TimeToSeconds("x:10"))
	assert.Equal(t, 0, TimeToSeconds("+5:00"))
	assert.Equal(t, 0, TimeToSeconds("05:+9"))
}
