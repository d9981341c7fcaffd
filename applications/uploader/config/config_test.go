package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	got, err := Parse("config.yml")
	require.NoError(t, err)
	require.NoError(t, got.Validate())

	assert.Equal(t, "http://localhost:8002/get-upload-url", got.Issuer.URL)
	assert.Equal(t, 3*time.Second, got.Fillers.Interval)
	assert.Len(t, got.Workflows, 5)

	bonus, ok := got.Workflow("bonus-buy")
	require.True(t, ok)
	assert.Equal(t, []string{"Articles", "Articles - App"}, bonus.RequiredTabs)
	assert.Equal(t, []string{".xls", ".xlsx"}, bonus.Accept.Extensions)
	assert.Equal(t, Slot{ID: "bonus-buy", Label: "Bonus Buy File", TargetName: "bonus_buy_report.xlsx"}, bonus.Slots[0])
	assert.True(t, got.SendFileTypeFor(bonus))
	assert.Nil(t, bonus.Sync)

	rr, ok := got.Workflow("range-refresh")
	require.True(t, ok)
	assert.Len(t, rr.Slots, 3)
	assert.True(t, rr.AppendSuccess)
	assert.False(t, got.SendFileTypeFor(rr))

	stock, ok := got.Workflow("stock-invoice")
	require.True(t, ok)
	require.NotNil(t, stock.Sync)
	assert.Equal(t, "http://localhost:8002/trigger-sync", stock.Sync.URL)
	assert.Equal(t, "{name}", stock.Slots[0].TargetName)

	_, ok = got.Workflow("missing")
	assert.False(t, ok)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("SHEETDROP_ISSUER_URL", "https://issuer.example.com/get-upload-url")
	t.Setenv("SHEETDROP_ISSUER_TIMEOUT", "30s")

	got, err := Parse("config.yml")
	require.NoError(t, err)

	assert.Equal(t, "https://issuer.example.com/get-upload-url", got.Issuer.URL)
	assert.Equal(t, 30*time.Second, got.Issuer.Timeout)
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse("does-not-exist.yml")
	assert.Error(t, err)
}

func TestIssuerURLFor(t *testing.T) {
	cfg := Uploader{Issuer: Issuer{URL: "http://global"}}

	assert.Equal(t, "http://global", cfg.IssuerURLFor(Workflow{}))
	assert.Equal(t, "http://own", cfg.IssuerURLFor(Workflow{IssuerURL: "http://own"}))
}

func TestValidate(t *testing.T) {
	valid := Workflow{
		Name:   "w",
		Accept: Accept{Extensions: []string{".csv"}},
		Slots:  []Slot{{ID: "a"}},
	}

	tests := []struct {
		name    string
		cfg     Uploader
		wantErr bool
	}{
		{name: "ok", cfg: Uploader{Issuer: Issuer{URL: "http://x"}, Workflows: []Workflow{valid}}},
		{name: "no workflows", cfg: Uploader{Issuer: Issuer{URL: "http://x"}}, wantErr: true},
		{name: "no issuer", cfg: Uploader{Workflows: []Workflow{valid}}, wantErr: true},
		{name: "duplicate workflow", cfg: Uploader{Issuer: Issuer{URL: "http://x"}, Workflows: []Workflow{valid, valid}}, wantErr: true},
		{name: "no slots", cfg: Uploader{Issuer: Issuer{URL: "http://x"}, Workflows: []Workflow{{Name: "w", Accept: valid.Accept}}}, wantErr: true},
		{name: "duplicate slot", cfg: Uploader{Issuer: Issuer{URL: "http://x"}, Workflows: []Workflow{{Name: "w", Accept: valid.Accept, Slots: []Slot{{ID: "a"}, {ID: "a"}}}}}, wantErr: true},
		{name: "empty accept", cfg: Uploader{Issuer: Issuer{URL: "http://x"}, Workflows: []Workflow{{Name: "w", Slots: valid.Slots}}}, wantErr: true},
		{name: "sync without url", cfg: Uploader{Issuer: Issuer{URL: "http://x"}, Workflows: []Workflow{{Name: "w", Accept: valid.Accept, Slots: valid.Slots, Sync: &Sync{}}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
