package ratecsv_test

import (
	"testing"
	"time"

	"github.com/SscSPs/fx_reference_rates/internal/utils/ratecsv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestParse_MixedInput(t *testing.T) {
	raw := "TIME_PERIOD,OBS\n2023-01-01,1.1\n2023-01-02,.\nbad,row\n2023-01-03,1,3\n"

	result := ratecsv.Parse(raw, "USD", nil)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, date("2023-01-01"), result.Rows[0].RateDate)
	assert.True(t, decimal.RequireFromString("1.1").Equal(result.Rows[0].Rate))
	// the decimal-comma row splits into three comma fields, the third is ignored
	assert.Equal(t, date("2023-01-03"), result.Rows[1].RateDate)
	assert.True(t, decimal.NewFromInt(1).Equal(result.Rows[1].Rate))
	assert.Equal(t, 1, result.Skipped)
}

func TestParse_UnbalancedQuoteOnlySkipsItsLine(t *testing.T) {
	raw := "TIME_PERIOD,OBS\r\n2023-01-01,1.1\r\n\"bad,row\r\n2023-01-02,1.2\r\n2023-01-03,1.3\r\n"

	result := ratecsv.Parse(raw, "USD", nil)

	require.Len(t, result.Rows, 3)
	assert.Equal(t, date("2023-01-01"), result.Rows[0].RateDate)
	assert.Equal(t, date("2023-01-02"), result.Rows[1].RateDate)
	assert.Equal(t, date("2023-01-03"), result.Rows[2].RateDate)
	assert.True(t, decimal.RequireFromString("1.3").Equal(result.Rows[2].Rate))
	assert.Equal(t, 1, result.Skipped)
}

func TestParse_SemicolonWithDecimalCommaAndBOM(t *testing.T) {
	raw := "\uFEFFtime_period;USD;FLAGS\n2024-03-01;1,0812;\n2024-03-04; 1\u00A0084,5 ;P\n2024-03-05;.;\n"

	result := ratecsv.Parse(raw, "USD", nil)

	require.Len(t, result.Rows, 2)
	assert.True(t, decimal.RequireFromString("1.0812").Equal(result.Rows[0].Rate))
	assert.True(t, decimal.RequireFromString("1084.5").Equal(result.Rows[1].Rate))
	assert.Equal(t, 0, result.Skipped)
}

func TestParse_ProviderMetadataLines(t *testing.T) {
	raw := `"",BBEX3.D.USD.EUR.BB.AC.000,BBEX3.D.USD.EUR.BB.AC.000_FLAGS
unit,USD,
unit multiplier,one,
last update,2024-05-02 14:16:08,
2024-05-01,.,No value available
2024-05-02,1.0701,
`
	result := ratecsv.Parse(raw, "USD", nil)

	require.Len(t, result.Rows, 1)
	assert.Equal(t, date("2024-05-02"), result.Rows[0].RateDate)
	assert.Equal(t, 3, result.Skipped)

	obs := result.Observations("USD")
	require.Len(t, obs, 1)
	assert.Equal(t, "USD", obs[0].Currency)
}

func TestParse_EmptyInputs(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":      "",
		"whitespace": "  \n\t\n",
		"bom only":   "\uFEFF",
		"header":     "TIME_PERIOD,OBS_VALUE\n",
	} {
		t.Run(name, func(t *testing.T) {
			result := ratecsv.Parse(raw, "GBP", nil)
			assert.True(t, result.Empty())
			assert.Zero(t, result.Skipped)
		})
	}
}

func TestParse_NegativeAndShortRowsAreSkipped(t *testing.T) {
	raw := "2024-01-01,-1.2\n2024-01-02\n2024-01-03,0\n"

	result := ratecsv.Parse(raw, "JPY", nil)

	require.Len(t, result.Rows, 1)
	assert.True(t, result.Rows[0].Rate.IsZero(), "zero is stored, conversion rejects it later")
	assert.Equal(t, 2, result.Skipped)
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ';', ratecsv.DetectDelimiter("a;b\nc,d"))
	assert.Equal(t, ',', ratecsv.DetectDelimiter("a,b\nc;d"))
	assert.Equal(t, ',', ratecsv.DetectDelimiter(""))
}

func TestNormalizeRate(t *testing.T) {
	assert.Equal(t, "1234.56", ratecsv.NormalizeRate("1\u00A0234,56"))
	assert.Equal(t, "0.9", ratecsv.NormalizeRate(" 0.9 "))
}
