package convert_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-jalali/internal/convert"
)

func TestSolarToGregorian(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "Date only", in: "1394/05/01", want: "2015/07/23"},
		{name: "Date and time", in: "1394/05/01 15:14", want: "2015/07/23 15:14"},
		{name: "Seconds dropped from output", in: "1394/05/01 15:14:59", want: "2015/07/23 15:14"},
		{name: "Nowruz", in: "1376/01/01", want: "1997/03/21"},
		{name: "Leap Esfand 30", in: "1375/12/30", want: "1997/03/20"},
		{name: "Persian digits", in: "۱۳۹۴/۰۵/۰۱", want: "2015/07/23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convert.SolarToGregorian(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSolarToGregorianErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"1394-05-01",
		"1394/05",
		"1394/13/01",
		"1394/12/30", // common-year Esfand has 29 days
		"1394/05/01 25:00",
		"1394/05/01 12:60",
	} {
		_, err := convert.SolarToGregorian(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestGregorianToSolar(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "Date only", in: "2015/07/23", want: "1394/05/01"},
		{name: "Date and time", in: "2015/07/23 14:13", want: "1394/05/01 14:13"},
		{name: "Seconds tolerated", in: "2013/01/02 00:00:00", want: "1391/10/13 00:00"},
		{name: "Trailing fraction tolerated", in: "2013/01/02 00:00:00.0", want: "1391/10/13 00:00"},
		{name: "Epoch day", in: "1970/01/01", want: "1348/10/11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convert.GregorianToSolar(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := convert.GregorianToSolar("2015-07-23")
	assert.Error(t, err)
}

func TestRoundTripStrings(t *testing.T) {
	for _, in := range []string{"1394/05/01", "1375/12/30", "1348/10/11", "1394/05/01 15:14"} {
		g, err := convert.SolarToGregorian(in)
		require.NoError(t, err)
		back, err := convert.GregorianToSolar(g)
		require.NoError(t, err)
		assert.Equal(t, in, back)
	}
}

func TestSolarToGregorianTime(t *testing.T) {
	got, err := convert.SolarToGregorianTime("1394/05/01 15:14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2015, time.July, 23, 15, 14, 0, 0, time.UTC), got)
}

func TestGregorianTimeToSolar(t *testing.T) {
	in := time.Date(1997, time.March, 21, 8, 30, 0, 0, time.UTC)
	assert.Equal(t, "1376/01/01", convert.GregorianTimeToSolar(in, false))
	assert.Equal(t, "1376/01/01 08:30", convert.GregorianTimeToSolar(in, true))

	// A non-UTC time is read at its UTC instant.
	tehran := time.FixedZone("IRST", (3*60+30)*60)
	local := time.Date(1997, time.March, 21, 2, 0, 0, 0, tehran) // 1997-03-20 22:30 UTC
	assert.Equal(t, "1375/12/30", convert.GregorianTimeToSolar(local, false))
}
