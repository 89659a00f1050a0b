package handler

import (
	"net/http"

	"stockhub/internal/dto"
	"stockhub/internal/service"

	"github.com/gin-gonic/gin"
)

type StocksHandler struct{ svc service.StockService }

func NewStocksHandler(svc service.StockService) *StocksHandler {
	return &StocksHandler{svc: svc}
}

func (h *StocksHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *StocksHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Adjust(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History pages through a stock's ledger, newest entry first.
func (h *StocksHandler) History(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var p dto.Pagination
	if !bindQuery(c, &p) {
		return
	}
	resp, err := h.svc.History(c.Request.Context(), id, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
