package serial_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/serial"
)

func TestYearSuffix(t *testing.T) {
	assert.Equal(t, "25", serial.YearSuffix(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "09", serial.YearSuffix(time.Date(2009, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "00", serial.YearSuffix(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestFormat_ZeroPadsToWidth(t *testing.T) {
	assert.Equal(t, "TPL2500007", serial.Format("TPL", "25", 7))
	assert.Equal(t, "TPL2599999", serial.Format("TPL", "25", 99999))
}

func TestParseSuffix(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    int
		wantErr string
	}{
		{name: "bare suffix", input: "7", want: 7},
		{name: "bare suffix padded", input: "00042", want: 42},
		{name: "bare suffix with spaces", input: "  123 ", want: 123},
		{name: "full serial", input: "TPL2500031", want: 31},
		{name: "bare suffix non numeric", input: "12a4", wantErr: domain.CodeInvalidSerialFormat},
		{name: "bare suffix leading plus", input: "+12", wantErr: domain.CodeInvalidSerialFormat},
		{name: "bare suffix leading minus", input: "-5", wantErr: domain.CodeInvalidSerialFormat},
		{name: "full serial signed tail", input: "TPL25+0031", wantErr: domain.CodeInvalidSerialFormat},
		{name: "bare suffix zero", input: "0", wantErr: domain.CodeInvalidSerialFormat},
		{name: "full serial wrong prefix", input: "XXX2500031", wantErr: domain.CodeInvalidSerialFormat},
		{name: "full serial non numeric tail", input: "TPL25000a1", wantErr: domain.CodeInvalidSerialFormat},
		{name: "empty", input: "", wantErr: domain.CodeInvalidSerialFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := serial.ParseSuffix(tc.input, "TPL", "25")
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tc.wantErr, domain.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRange(t *testing.T) {
	got, err := serial.Range("TPL", "25", 1, 3, serial.GenerateBatchCap)
	require.NoError(t, err)
	assert.Equal(t, []string{"TPL2500001", "TPL2500002", "TPL2500003"}, got)
}

func TestRange_CapExceeded(t *testing.T) {
	_, err := serial.Range("TPL", "25", 1, serial.GenerateBatchCap+1, serial.GenerateBatchCap)
	require.Error(t, err)
	assert.Equal(t, domain.CodeBatchTooLarge, domain.CodeOf(err))
}

func TestRange_InvalidBounds(t *testing.T) {
	_, err := serial.Range("TPL", "25", 5, 4, serial.GenerateBatchCap)
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidSerialFormat, domain.CodeOf(err))

	_, err = serial.Range("TPL", "25", 99999, 100000, serial.GenerateBatchCap)
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidSerialFormat, domain.CodeOf(err))
}

func TestCheckSequential(t *testing.T) {
	require.NoError(t, serial.CheckSequential(1, 0, false))
	require.NoError(t, serial.CheckSequential(11, 10, true))

	err := serial.CheckSequential(2, 0, false)
	require.Error(t, err)
	assert.Equal(t, domain.CodeNonSequentialSerial, domain.CodeOf(err))
	assert.Contains(t, err.Error(), "start at 1")

	err = serial.CheckSequential(12, 10, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start at 11")
}
