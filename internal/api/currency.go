package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/raolivei/canopy-go/internal/currency"
	"github.com/raolivei/canopy-go/internal/errors"
)

// convertResponse reports a conversion result. Converted is false when the
// exchange rate could not be resolved and the original amount was passed
// through unchanged.
type convertResponse struct {
	OriginalAmount    float64 `json:"original_amount"`
	OriginalCurrency  string  `json:"original_currency"`
	ConvertedAmount   float64 `json:"converted_amount"`
	ConvertedCurrency string  `json:"converted_currency"`
	ExchangeRate      float64 `json:"exchange_rate"`
	Converted         bool    `json:"converted"`
}

// ratesResponse carries an exchange-rate table for a base currency.
type ratesResponse struct {
	BaseCurrency string             `json:"base_currency"`
	Rates        map[string]float64 `json:"rates"`
	Date         string             `json:"date"`
}

func (c *Controller) initCurrencyRoutes() {
	if c.currencyService == nil {
		c.logWarn("currency service not configured, skipping currency routes")
		return
	}

	group := c.Group.Group("/currency")
	group.GET("/convert", c.ConvertCurrency)
	group.GET("/rates", c.GetExchangeRates)
	group.GET("/currencies", c.GetSupportedCurrencies)
}

// ConvertCurrency converts an amount between two currencies. Conversion
// failures degrade silently: the original amount comes back with
// converted=false so the dashboard can still render a number.
func (c *Controller) ConvertCurrency(ctx echo.Context) error {
	rawAmount := ctx.QueryParam("amount")
	if rawAmount == "" {
		return c.jsonError(ctx, http.StatusBadRequest, "amount is required")
	}
	amount, err := strconv.ParseFloat(rawAmount, 64)
	if err != nil {
		return c.jsonError(ctx, http.StatusBadRequest, "amount must be a number")
	}

	from := strings.TrimSpace(ctx.QueryParam("from"))
	to := strings.TrimSpace(ctx.QueryParam("to"))
	if from == "" || to == "" {
		return c.jsonError(ctx, http.StatusBadRequest, "from and to currencies are required")
	}

	converted, rate, ok := c.currencyService.Convert(ctx.Request().Context(), amount, from, to)

	return ctx.JSON(http.StatusOK, &convertResponse{
		OriginalAmount:    amount,
		OriginalCurrency:  currency.NormalizeCode(from),
		ConvertedAmount:   converted,
		ConvertedCurrency: currency.NormalizeCode(to),
		ExchangeRate:      rate,
		Converted:         ok,
	})
}

// GetExchangeRates returns the rate table for a base currency, falling back
// to the configured base when none is given.
func (c *Controller) GetExchangeRates(ctx echo.Context) error {
	base := ctx.QueryParam("base")

	table, err := c.currencyService.GetRates(ctx.Request().Context(), base)
	if err != nil {
		if errors.IsCategory(err, errors.CategoryValidation) {
			return c.jsonError(ctx, http.StatusBadRequest, err.Error())
		}
		c.logError("failed to fetch exchange rates", "base", base, "error", err.Error())
		return c.jsonError(ctx, http.StatusInternalServerError, "failed to fetch exchange rates")
	}

	return ctx.JSON(http.StatusOK, &ratesResponse{
		BaseCurrency: table.Base,
		Rates:        table.Rates,
		Date:         table.Date,
	})
}

// GetSupportedCurrencies lists the currencies the dashboard can display.
func (c *Controller) GetSupportedCurrencies(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"currencies": currency.SupportedCurrencies(),
		"default":    c.currencyService.BaseCurrency(),
	})
}
