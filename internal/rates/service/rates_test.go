package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/negobi/negobi-gateway/internal/rates/repository"
	"github.com/negobi/negobi-gateway/pkg/config"
	"github.com/negobi/negobi-gateway/pkg/erp"
	"github.com/negobi/negobi-gateway/pkg/errors"
	"github.com/negobi/negobi-gateway/pkg/logger"
)

func newRateService(t *testing.T, h http.Handler) *RateService {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := erp.NewClient(&config.UpstreamConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 5 * time.Second,
		PageSize:       50,
	}, logger.New("test", "test"))
	return NewRateService(repository.NewRateRepository(client), logger.New("test", "test"))
}

func rateFixture(id int64, rate string, daysAgo int, active bool) repository.ExchangeRate {
	return repository.ExchangeRate{
		ID:               id,
		BaseCurrencyID:   1,
		TargetCurrencyID: 2,
		Rate:             decimal.RequireFromString(rate),
		RateDate:         time.Now().AddDate(0, 0, -daysAgo),
		IsActive:         active,
	}
}

func ratesHandler(t *testing.T, rates []repository.ExchangeRate) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /exchange-rates", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("baseCurrencyId"))
		assert.Equal(t, "2", r.URL.Query().Get("targetCurrencyId"))
		json.NewEncoder(w).Encode(rates)
	})
	return mux
}

func TestLatestActiveRate_PicksMostRecentActive(t *testing.T) {
	svc := newRateService(t, ratesHandler(t, []repository.ExchangeRate{
		rateFixture(1, "36.50", 10, true),
		rateFixture(2, "37.10", 1, true),
		rateFixture(3, "38.00", 0, false), // newest but inactive
	}))

	rate, err := svc.LatestActiveRate(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rate.ID)
	assert.True(t, rate.Rate.Equal(decimal.RequireFromString("37.10")))
}

func TestLatestActiveRate_NoActiveRate(t *testing.T) {
	svc := newRateService(t, ratesHandler(t, []repository.ExchangeRate{
		rateFixture(1, "36.50", 10, false),
	}))

	_, err := svc.LatestActiveRate(context.Background(), 1, 2)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestLatestActiveRate_RequiresBothIDs(t *testing.T) {
	svc := newRateService(t, http.NewServeMux())

	_, err := svc.LatestActiveRate(context.Background(), 0, 2)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = svc.LatestActiveRate(context.Background(), 1, 0)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestConvert_UsesLatestRateAndRounds(t *testing.T) {
	svc := newRateService(t, ratesHandler(t, []repository.ExchangeRate{
		rateFixture(7, "36.333", 0, true),
	}))

	conv, err := svc.Convert(context.Background(), decimal.RequireFromString("10.10"), 1, 2)
	require.NoError(t, err)

	// 10.10 * 36.333 = 366.9633, rounded to 2 decimals.
	assert.True(t, conv.Converted.Equal(decimal.RequireFromString("366.96")), conv.Converted.String())
	assert.Equal(t, int64(7), conv.RateID)
}

func TestConvert_SameCurrencyIsIdentity(t *testing.T) {
	svc := newRateService(t, http.NewServeMux())

	amount := decimal.RequireFromString("123.45")
	conv, err := svc.Convert(context.Background(), amount, 3, 3)
	require.NoError(t, err)

	assert.True(t, conv.Converted.Equal(amount))
	assert.True(t, conv.Rate.Equal(decimal.NewFromInt(1)))
	assert.Zero(t, conv.RateID)
}

func TestCreateRate_Validation(t *testing.T) {
	svc := newRateService(t, http.NewServeMux())

	_, err := svc.Create(context.Background(), repository.ExchangeRate{
		BaseCurrencyID:   1,
		TargetCurrencyID: 2,
		Rate:             decimal.Zero,
	})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = svc.Create(context.Background(), repository.ExchangeRate{
		BaseCurrencyID:   1,
		TargetCurrencyID: 1,
		Rate:             decimal.NewFromInt(36),
	})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}
