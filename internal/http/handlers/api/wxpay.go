package api

import (
	"strconv"
	"strings"

	"github.com/paybridge-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// WxPayNative 微信 Native 下单，返回二维码链接
func (h *Handler) WxPayNative(c *gin.Context) {
	if h.WxPayService == nil {
		respondError(c, response.CodeInternal, "微信支付渠道未配置", nil)
		return
	}
	productID, err := strconv.ParseUint(strings.TrimSpace(c.Param("productId")), 10, 64)
	if err != nil || productID == 0 {
		response.BadRequest(c, "商品编号不合法")
		return
	}
	codeURL, orderNo, err := h.WxPayService.NativePay(c.Request.Context(), uint(productID))
	if err != nil {
		respondWithMappedError(c, err, payCommonErrorRules, response.CodeInternal, "微信下单失败")
		return
	}
	response.SuccessWithMsg(c, "二维码生成成功", gin.H{
		"codeUrl": codeURL,
		"orderNo": orderNo,
	})
}

// WxPayCancel 取消订单
func (h *Handler) WxPayCancel(c *gin.Context) {
	if h.WxPayService == nil {
		respondError(c, response.CodeInternal, "微信支付渠道未配置", nil)
		return
	}
	orderNo := strings.TrimSpace(c.Param("orderNo"))
	if orderNo == "" {
		response.BadRequest(c, "订单编号不合法")
		return
	}
	if err := h.WxPayService.CancelOrder(c.Request.Context(), orderNo); err != nil {
		respondWithMappedError(c, err, payCommonErrorRules, response.CodeInternal, "取消订单失败")
		return
	}
	response.SuccessWithMsg(c, "订单已取消", nil)
}

// WxPayQuery 查询微信订单，返回应答原文
func (h *Handler) WxPayQuery(c *gin.Context) {
	if h.WxPayService == nil {
		respondError(c, response.CodeInternal, "微信支付渠道未配置", nil)
		return
	}
	orderNo := strings.TrimSpace(c.Param("orderNo"))
	if orderNo == "" {
		response.BadRequest(c, "订单编号不合法")
		return
	}
	body, err := h.WxPayService.QueryOrder(c.Request.Context(), orderNo)
	if err != nil {
		respondWithMappedError(c, err, payCommonErrorRules, response.CodeInternal, "查询订单失败")
		return
	}
	response.SuccessWithMsg(c, "查询成功", gin.H{"bodyAsString": body})
}

// WxPayRefund 发起退款
func (h *Handler) WxPayRefund(c *gin.Context) {
	if h.WxPayService == nil {
		respondError(c, response.CodeInternal, "微信支付渠道未配置", nil)
		return
	}
	orderNo := strings.TrimSpace(c.Param("orderNo"))
	reason := strings.TrimSpace(c.Param("reason"))
	if orderNo == "" {
		response.BadRequest(c, "订单编号不合法")
		return
	}
	refund, err := h.WxPayService.Refund(c.Request.Context(), orderNo, reason)
	if err != nil {
		respondWithMappedError(c, err, payCommonErrorRules, response.CodeInternal, "申请退款失败")
		return
	}
	response.SuccessWithMsg(c, "退款已受理", gin.H{"refundNo": refund.RefundNo})
}

// WxPayQueryRefund 查询退款，返回应答原文
func (h *Handler) WxPayQueryRefund(c *gin.Context) {
	if h.WxPayService == nil {
		respondError(c, response.CodeInternal, "微信支付渠道未配置", nil)
		return
	}
	refundNo := strings.TrimSpace(c.Param("refundNo"))
	if refundNo == "" {
		response.BadRequest(c, "退款单编号不合法")
		return
	}
	body, err := h.WxPayService.QueryRefund(c.Request.Context(), refundNo)
	if err != nil {
		respondWithMappedError(c, err, payCommonErrorRules, response.CodeInternal, "查询退款失败")
		return
	}
	response.SuccessWithMsg(c, "查询成功", gin.H{"bodyAsString": body})
}
