package download

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/BotView/models"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Form)
		check  func(t *testing.T, req models.DownloadRequest)
	}{
		{
			name:   "defaults drop empty pairs and use days",
			mutate: func(f *Form) {},
			check: func(t *testing.T, req models.DownloadRequest) {
				assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, req.Pairs)
				assert.Equal(t, []string{"5m", "1h"}, req.Timeframes)
				require.NotNil(t, req.Days)
				assert.Equal(t, 30, *req.Days)
				assert.Empty(t, req.Timerange)
				assert.Nil(t, req.Erase)
				assert.Nil(t, req.DownloadTrades)
				assert.Empty(t, req.Exchange)
			},
		},
		{
			name: "custom timerange",
			mutate: func(f *Form) {
				f.Time.UseCustomTimerange = true
				f.Time.Timerange = "20240101-20240201"
			},
			check: func(t *testing.T, req models.DownloadRequest) {
				assert.Equal(t, "20240101-20240201", req.Timerange)
				assert.Nil(t, req.Days)
			},
		},
		{
			name: "custom toggle without range falls back to days",
			mutate: func(f *Form) {
				f.Time.UseCustomTimerange = true
				f.Time.Days = 7
			},
			check: func(t *testing.T, req models.DownloadRequest) {
				assert.Empty(t, req.Timerange)
				require.NotNil(t, req.Days)
				assert.Equal(t, 7, *req.Days)
			},
		},
		{
			name: "collapsed advanced section is ignored",
			mutate: func(f *Form) {
				f.Advanced.Erase = true
				f.Advanced.DownloadTrades = true
				f.Advanced.CustomExchange = true
			},
			check: func(t *testing.T, req models.DownloadRequest) {
				assert.Nil(t, req.Erase)
				assert.Nil(t, req.DownloadTrades)
				assert.Empty(t, req.Exchange)
				assert.Empty(t, req.TradingMode)
			},
		},
		{
			name: "expanded advanced section adds flags",
			mutate: func(f *Form) {
				f.Advanced.Expanded = true
				f.Advanced.Erase = true
			},
			check: func(t *testing.T, req models.DownloadRequest) {
				require.NotNil(t, req.Erase)
				assert.True(t, *req.Erase)
				require.NotNil(t, req.DownloadTrades)
				assert.False(t, *req.DownloadTrades)
				assert.Empty(t, req.Exchange)
			},
		},
		{
			name: "custom exchange",
			mutate: func(f *Form) {
				f.Advanced.Expanded = true
				f.Advanced.CustomExchange = true
				f.Advanced.Exchange = ExchangeSelection{Exchange: "okx", TradingMode: TradingModeFutures, MarginMode: MarginModeIsolated}
			},
			check: func(t *testing.T, req models.DownloadRequest) {
				assert.Equal(t, "okx", req.Exchange)
				assert.Equal(t, "futures", req.TradingMode)
				assert.Equal(t, "isolated", req.MarginMode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForm()
			tt.mutate(&f)
			tt.check(t, Build(f))
		})
	}
}

func TestBuild_DoesNotModifyForm(t *testing.T) {
	f := NewForm()
	Build(f)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT", ""}, f.Pairs)
}

func TestForm_AddPairsFromTemplate(t *testing.T) {
	f := NewForm()
	f.AddPairs(PairTemplates[0].Pairs...)

	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT", ".*/USDT"}, Build(f).Pairs)
}

type fakeStarter struct {
	got  models.DownloadRequest
	resp *models.BackgroundJobResponse
	err  error
}

func (f *fakeStarter) StartDataDownload(_ context.Context, req models.DownloadRequest) (*models.BackgroundJobResponse, error) {
	f.got = req
	return f.resp, f.err
}

func TestSubmit(t *testing.T) {
	bot := &fakeStarter{resp: &models.BackgroundJobResponse{JobID: "abc"}}

	jobID, req, err := Submit(context.Background(), bot, NewForm())

	require.NoError(t, err)
	assert.Equal(t, "abc", jobID)
	assert.Equal(t, req, bot.got)
}

func TestSubmit_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	bot := &fakeStarter{err: boom}

	_, _, err := Submit(context.Background(), bot, NewForm())

	assert.ErrorIs(t, err, boom)
}
