package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env
	LoadConfig()
	require.NotNil(t, Cfg)

	def := Default()
	assert.Equal(t, def.TaxRate, Cfg.TaxRate)
	assert.Equal(t, def.SurchargeRate, Cfg.SurchargeRate)
	assert.Equal(t, def.TDSMode, Cfg.TDSMode)
	assert.Equal(t, def.ReportDecimals, Cfg.ReportDecimals)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TAX_RATE", "0.25")
	t.Setenv("TDS_MODE", "SUM")
	t.Setenv("PRICE_LOOKUP_TIMEOUT", "750ms")
	t.Setenv("PRICE_LOOKUP_CONCURRENCY", "0")
	t.Setenv("MAX_UPLOAD_SIZE_BYTES", "not-a-number")

	LoadConfig()

	assert.Equal(t, 0.25, Cfg.TaxRate)
	assert.Equal(t, TDSModeSum, Cfg.TDSMode)
	assert.Equal(t, 750*time.Millisecond, Cfg.PriceLookupTimeout)
	assert.Equal(t, 1, Cfg.PriceLookupConcurrency)
	assert.Equal(t, int64(10*1024*1024), Cfg.MaxUploadSizeBytes)
}

func TestLoadConfig_InvalidTDSModeFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TDS_MODE", "average")
	t.Setenv("SURCHARGE_RATE", "four percent")

	LoadConfig()

	assert.Equal(t, TDSModeLast, Cfg.TDSMode)
	assert.Equal(t, 0.04, Cfg.SurchargeRate)
}
