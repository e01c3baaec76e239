package ics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prop(name, value string, params ...Param) Property {
	return Property{Name: name, Params: params, Value: value}
}

func tzid(values ...string) Param {
	return Param{Name: "TZID", Values: values}
}

func TestParseDateTimeNaive(t *testing.T) {
	dt, err := parseDateTime("DTSTART", prop("DTSTART", "20020110T123045"), time.LoadLocation)
	require.NoError(t, err)

	assert.Equal(t, Naive, dt.Kind)
	assert.Empty(t, dt.TZID)
	assert.True(t, dt.Time.Equal(time.Date(2002, time.January, 10, 12, 30, 45, 0, time.UTC)))
}

func TestParseDateTimeUTC(t *testing.T) {
	dt, err := parseDateTime("DTSTART", prop("DTSTART", "20020110T123045Z"), time.LoadLocation)
	require.NoError(t, err)

	assert.Equal(t, UTC, dt.Kind)
	assert.Empty(t, dt.TZID)
	assert.True(t, dt.Time.Equal(time.Date(2002, time.January, 10, 12, 30, 45, 0, time.UTC)))
}

func TestParseDateTimeZoned(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	dt, err := parseDateTime("DTSTART", prop("DTSTART", "20020110T123045", tzid("Europe/Paris")), time.LoadLocation)
	require.NoError(t, err)

	assert.Equal(t, Zoned, dt.Kind)
	assert.Equal(t, "Europe/Paris", dt.TZID)
	assert.True(t, dt.Time.Equal(time.Date(2002, time.January, 10, 12, 30, 45, 0, paris)))
}

func TestParseDateTimeUTCAndZoneAreExclusive(t *testing.T) {
	_, err := parseDateTime("DTSTART", prop("DTSTART", "20020110T123045Z", tzid("Europe/Paris")), time.LoadLocation)

	var invalid *InvalidPropertyValueError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "DTSTART", invalid.Property)
	assert.Equal(t, "20020110T123045Z", invalid.Found)
	assert.Equal(t, "DATE-TIME", invalid.Expected)
}

func TestParseDateTimeUnknownZone(t *testing.T) {
	_, err := parseDateTime("DTSTART", prop("DTSTART", "20020110T123045", tzid("Middle_Earth/Minas_Tirith")), time.LoadLocation)

	var invalid *InvalidPropertyValueError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "20020110T123045", invalid.Found)
}

func TestParseDateTimeBadLayout(t *testing.T) {
	for _, value := range []string{
		"",                   // missing value
		"20020110",           // date only
		"20020110T1230",      // missing seconds
		"20020110T123045.5",  // fractional seconds
		"2002-01-10T12:30:45",
		"not-a-date",
	} {
		_, err := parseDateTime("DTSTART", prop("DTSTART", value), time.LoadLocation)

		var invalid *InvalidPropertyValueError
		require.Truef(t, errors.As(err, &invalid), "value %q should not parse", value)
		assert.Equal(t, value, invalid.Found)
	}
}

func TestParseDateTimeRepeatedZoneParamLastWins(t *testing.T) {
	p := prop("DTSTART", "20020110T123045",
		tzid("Middle_Earth/Minas_Tirith"),
		tzid("Europe/Paris", "Europe/Bucharest"),
	)
	dt, err := parseDateTime("DTSTART", p, time.LoadLocation)
	require.NoError(t, err)

	assert.Equal(t, Zoned, dt.Kind)
	assert.Equal(t, "Europe/Bucharest", dt.TZID)
}

func TestParseDateTimeEmptyZoneParamIsNaive(t *testing.T) {
	dt, err := parseDateTime("DTSTART", prop("DTSTART", "20020110T123045", tzid()), time.LoadLocation)
	require.NoError(t, err)

	assert.Equal(t, Naive, dt.Kind)
}

func TestParseDateTimeStubResolver(t *testing.T) {
	zone := time.FixedZone("Test/Zone", 3600)
	resolve := func(id string) (*time.Location, error) {
		if id != "Test/Zone" {
			return nil, errors.New("unknown zone")
		}
		return zone, nil
	}

	dt, err := parseDateTime("DTSTART", prop("DTSTART", "20020110T123045", tzid("Test/Zone")), resolve)
	require.NoError(t, err)
	assert.Equal(t, Zoned, dt.Kind)
	assert.Equal(t, "Test/Zone", dt.TZID)

	_, err = parseDateTime("DTSTART", prop("DTSTART", "20020110T123045", tzid("Other/Zone")), resolve)
	assert.Error(t, err)
}

// A local time inside a DST gap resolves to one deterministic instant
// instead of failing. 02:30 does not exist in Europe/Paris on
// 2021-03-28; both parses must agree on whatever candidate is chosen.
func TestParseDateTimeDSTGap(t *testing.T) {
	p := prop("DTSTART", "20210328T023000", tzid("Europe/Paris"))

	first, err := parseDateTime("DTSTART", p, time.LoadLocation)
	require.NoError(t, err)
	second, err := parseDateTime("DTSTART", p, time.LoadLocation)
	require.NoError(t, err)

	assert.Equal(t, Zoned, first.Kind)
	assert.True(t, first.Equal(second))
}
