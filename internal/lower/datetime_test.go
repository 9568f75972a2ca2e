package lower

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weftlang/weft/internal/langerr"
	"github.com/weftlang/weft/internal/testconfig"
)

func TestParseDateTime(t *testing.T) {
	testconfig.AllowParallelization(t)

	t.Run("local date-time", func(t *testing.T) {
		dt, err := ParseDateTime("2017-03-17T16:04:02.123456789")
		require.Nil(t, err)

		assert.Equal(t, 2017, dt.Time.Year())
		assert.Equal(t, time.March, dt.Time.Month())
		assert.Equal(t, 17, dt.Time.Day())
		assert.Equal(t, 16, dt.Time.Hour())
		assert.Equal(t, 4, dt.Time.Minute())
		assert.Equal(t, 2, dt.Time.Second())
		assert.Equal(t, 123456789, dt.Time.Nanosecond())
		assert.Equal(t, time.UTC, dt.Time.Location())
		assert.Equal(t, "UTC", dt.Zone)
	})

	t.Run("date only", func(t *testing.T) {
		dt, err := ParseDateTime("2017-03-17T")
		require.Nil(t, err)
		assert.Equal(t, time.Date(2017, 3, 17, 0, 0, 0, 0, time.UTC), dt.Time)
	})

	t.Run("fraction of second is right-padded", func(t *testing.T) {
		dt, err := ParseDateTime("2017-03-17T16:04:02.5")
		require.Nil(t, err)
		assert.Equal(t, 500000000, dt.Time.Nanosecond())
	})

	t.Run("one-digit fields", func(t *testing.T) {
		dt, err := ParseDateTime("2017-3-7T6:4:2")
		require.Nil(t, err)
		assert.Equal(t, time.Date(2017, 3, 7, 6, 4, 2, 0, time.UTC), dt.Time)
	})

	t.Run("year digits", func(t *testing.T) {
		_, err := ParseDateTime("017-03-17T")
		if assert.NotNil(t, err) {
			assert.Equal(t, langerr.InvalidDateTime, err.Code)
			field, _ := err.Get("field")
			assert.Equal(t, "year", field)
		}

		_, err = ParseDateTime("1234567890-03-17T")
		assert.NotNil(t, err)

		dt, err := ParseDateTime("123456789-03-17T")
		if assert.Nil(t, err) {
			assert.Equal(t, 123456789, dt.Time.Year())
		}

		dt, err = ParseDateTime("-0044-03-15T")
		if assert.Nil(t, err) {
			assert.Equal(t, -44, dt.Time.Year())
		}

		dt, err = ParseDateTime("+2017-03-15T")
		if assert.Nil(t, err) {
			assert.Equal(t, 2017, dt.Time.Year())
		}
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := ParseDateTime("2017-03-17")
		if assert.NotNil(t, err) {
			assert.Equal(t, MISSING_TIME_SEPARATOR, err.Message)
			literal, _ := err.Get("literal")
			assert.Equal(t, "2017-03-17", literal)
		}
	})

	t.Run("calendar", func(t *testing.T) {
		_, err := ParseDateTime("2017-02-29T")
		if assert.NotNil(t, err) {
			assert.Equal(t, "invalid value for dayOfMonth (valid values 1 - 28): 29", err.Message)
			assert.Error(t, err.Cause)
		}

		_, err = ParseDateTime("2016-02-29T")
		assert.Nil(t, err)

		_, err = ParseDateTime("2017-13-01T")
		if assert.NotNil(t, err) {
			field, _ := err.Get("field")
			assert.Equal(t, "month", field)
		}

		_, err = ParseDateTime("2017-03-17T24:00:00")
		if assert.NotNil(t, err) {
			field, _ := err.Get("field")
			assert.Equal(t, "hour", field)
		}

		_, err = ParseDateTime("2017-03-17T23:60:00")
		assert.NotNil(t, err)

		_, err = ParseDateTime("2017-03-17T23:00:60")
		assert.NotNil(t, err)
	})

	t.Run("malformed time", func(t *testing.T) {
		for _, literal := range []string{
			"2017-03-17T16:04",
			"2017-03-17T164:04:02",
			"2017-03-17T16:04:02.",
			"2017-03-17T16:04:02.1234567890",
			"2017-03-17T16:04:02+0100",
			"2017-03-17T16:04:02+19:00",
			"2017-03-17T16:04:02+01:60",
		} {
			_, err := ParseDateTime(literal)
			if assert.NotNil(t, err, literal) {
				assert.Equal(t, langerr.InvalidDateTime, err.Code, literal)
			}
		}
	})

	t.Run("offset without zone", func(t *testing.T) {
		dt, err := ParseDateTime("2017-03-17T16:04:02+01:00")
		require.Nil(t, err)

		assert.Equal(t, "UTC+01:00", dt.Zone)
		_, offset := dt.Time.Zone()
		assert.Equal(t, 3600, offset)
		assert.Equal(t, 15, dt.Time.UTC().Hour())

		dt, err = ParseDateTime("2017-03-17T16:04:02-5:30")
		require.Nil(t, err)
		assert.Equal(t, "UTC-05:30", dt.Zone)

		dt, err = ParseDateTime("2017-03-17T16:04:02Z")
		require.Nil(t, err)
		assert.Equal(t, "UTC", dt.Zone)
		assert.Equal(t, time.UTC, dt.Time.Location())
	})

	t.Run("zone without offset", func(t *testing.T) {
		dt, err := ParseDateTime("2017-03-17T16:04:02@Europe/Berlin")
		require.Nil(t, err)

		assert.Equal(t, "Europe/Berlin", dt.Zone)
		assert.Equal(t, 16, dt.Time.Hour())
		_, offset := dt.Time.Zone()
		assert.Equal(t, 3600, offset)

		//summer time
		dt, err = ParseDateTime("2017-07-17T16:04:02@Europe/Berlin")
		require.Nil(t, err)
		_, offset = dt.Time.Zone()
		assert.Equal(t, 7200, offset)
	})

	t.Run("escaped zone", func(t *testing.T) {
		dt, err := ParseDateTime("2017-03-17T16:04:02@`America/New_York`")
		require.Nil(t, err)
		assert.Equal(t, "America/New_York", dt.Zone)
	})

	t.Run("fixed zone", func(t *testing.T) {
		dt, err := ParseDateTime("2017-03-17T16:04:02@UTC+02:00")
		require.Nil(t, err)
		_, offset := dt.Time.Zone()
		assert.Equal(t, 7200, offset)
	})

	t.Run("zone and offset", func(t *testing.T) {
		dt, err := ParseDateTime("2017-03-17T16:04:02+01:00@Europe/Berlin")
		require.Nil(t, err)
		assert.Equal(t, 16, dt.Time.Hour())
		assert.Equal(t, "Europe/Berlin", dt.Zone)

		_, err = ParseDateTime("2017-03-17T16:04:02+03:00@Europe/Berlin")
		if assert.NotNil(t, err) {
			assert.Equal(t, "offset '+03:00' is not valid for time zone 'Europe/Berlin'", err.Message)
		}
	})

	t.Run("unknown zone", func(t *testing.T) {
		_, err := ParseDateTime("2017-03-17T16:04:02@Mars/Olympus_Mons")
		if assert.NotNil(t, err) {
			assert.Equal(t, "unknown time zone 'Mars/Olympus_Mons'", err.Message)
			assert.Error(t, err.Cause)
		}

		_, err = ParseDateTime("2017-03-17T16:04:02@Local")
		assert.NotNil(t, err)

		_, err = ParseDateTime("2017-03-17T16:04:02@")
		if assert.NotNil(t, err) {
			assert.Equal(t, EMPTY_TIME_ZONE, err.Message)
		}
	})
}
