package datafeed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fazecat/niftyscreener/Internal/types"
)

func TestParseInstruments(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		want    []types.Instrument
		wantErr bool
	}{
		{
			name: "standard columns",
			csv:  "tradingsymbol,instrument_key\nRELIANCE,NSE_EQ|INE002A01018\nTCS,NSE_EQ|INE467B01029\n",
			want: []types.Instrument{
				{Symbol: "RELIANCE", InstrumentKey: "NSE_EQ|INE002A01018"},
				{Symbol: "TCS", InstrumentKey: "NSE_EQ|INE467B01029"},
			},
		},
		{
			name: "extra and reordered columns with blanks",
			csv:  "name,instrument_key,tradingsymbol\nHDFC Bank,NSE_EQ|INE040A01034,HDFCBANK\n,,\nNo key,, NOKEY\n",
			want: []types.Instrument{{Symbol: "HDFCBANK", InstrumentKey: "NSE_EQ|INE040A01034"}},
		},
		{name: "empty file", csv: "", want: nil},
		{name: "missing column", csv: "symbol,key\nA,B\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInstruments(strings.NewReader(tt.csv))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCSVUniverse_LoadInstruments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "universe.csv")
	require.NoError(t, os.WriteFile(path, []byte("tradingsymbol,instrument_key\nSBIN,NSE_EQ|INE062A01020\n"), 0o644))

	got, err := NewCSVUniverse(path).LoadInstruments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.Instrument{{Symbol: "SBIN", InstrumentKey: "NSE_EQ|INE062A01020"}}, got)

	_, err = NewCSVUniverse(filepath.Join(t.TempDir(), "missing.csv")).LoadInstruments(context.Background())
	assert.Error(t, err)
}
