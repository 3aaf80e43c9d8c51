package api

import (
	"errors"
	"strings"

	"github.com/paybridge-next/internal/http/response"
	"github.com/paybridge-next/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderInfoList 按创建时间倒序列出订单
func (h *Handler) OrderInfoList(c *gin.Context) {
	orders, err := h.OrderService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "查询订单列表失败", err)
		return
	}
	response.Success(c, gin.H{"list": orders})
}

// OrderInfoQueryStatus 前端轮询订单支付状态。已支付返回 code 0，
// 未支付返回 code 101，轮询继续。
func (h *Handler) OrderInfoQueryStatus(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("orderNo"))
	if orderNo == "" {
		response.BadRequest(c, "订单编号不合法")
		return
	}
	paid, err := h.OrderService.QueryOrderStatus(orderNo)
	if err != nil {
		if errors.Is(err, service.ErrOrderMissing) {
			respondError(c, response.CodeNotFound, service.ErrOrderMissing.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "查询订单状态失败", err)
		return
	}
	if !paid {
		response.ErrorWithData(c, response.CodePaying, "支付中...", nil)
		return
	}
	response.SuccessWithMsg(c, "支付成功", nil)
}
