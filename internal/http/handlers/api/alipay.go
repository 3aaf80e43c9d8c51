package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/paybridge-next/internal/constants"
	"github.com/paybridge-next/internal/http/response"
	"github.com/paybridge-next/internal/payment/alipay"

	"github.com/gin-gonic/gin"
)

// AliPayTradePagePay 支付宝电脑网站下单，返回签名后的跳转链接
func (h *Handler) AliPayTradePagePay(c *gin.Context) {
	if h.AliPayService == nil {
		respondError(c, response.CodeInternal, "支付宝渠道未配置", nil)
		return
	}
	productID, err := strconv.ParseUint(strings.TrimSpace(c.Param("productId")), 10, 64)
	if err != nil || productID == 0 {
		response.BadRequest(c, "商品编号不合法")
		return
	}
	payURL, orderNo, err := h.AliPayService.PagePay(uint(productID))
	if err != nil {
		respondWithMappedError(c, err, payCommonErrorRules, response.CodeInternal, "支付宝下单失败")
		return
	}
	response.SuccessWithMsg(c, "下单成功", gin.H{
		"codeUrl": payURL,
		"orderNo": orderNo,
	})
}

// AliPayTradeNotify 支付宝异步通知。应答协议为纯文本：
// 受理成功返回 success，失败返回 failure，支付宝会重试。
func (h *Handler) AliPayTradeNotify(c *gin.Context) {
	log := requestLog(c)
	if h.AliPayService == nil {
		log.Warnw("alipay_notify_channel_disabled")
		c.String(http.StatusOK, constants.AlipayCallbackFail)
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		log.Warnw("alipay_notify_form_parse_failed", "error", err)
		c.String(http.StatusOK, constants.AlipayCallbackFail)
		return
	}
	if err := h.AliPayService.ProcessNotify(c.Request.PostForm); err != nil {
		log.Warnw("alipay_notify_handle_failed",
			"client_ip", c.ClientIP(),
			"signature_invalid", errors.Is(err, alipay.ErrSignatureInvalid),
			"error", err,
		)
		c.String(http.StatusOK, constants.AlipayCallbackFail)
		return
	}
	c.String(http.StatusOK, constants.AlipayCallbackSuccess)
}

// AliPayTradeClose 取消订单
func (h *Handler) AliPayTradeClose(c *gin.Context) {
	if h.AliPayService == nil {
		respondError(c, response.CodeInternal, "支付宝渠道未配置", nil)
		return
	}
	orderNo := strings.TrimSpace(c.Param("orderNo"))
	if orderNo == "" {
		response.BadRequest(c, "订单编号不合法")
		return
	}
	if err := h.AliPayService.CancelOrder(c.Request.Context(), orderNo); err != nil {
		respondWithMappedError(c, err, payCommonErrorRules, response.CodeInternal, "取消订单失败")
		return
	}
	response.SuccessWithMsg(c, "订单已取消", nil)
}

// AliPayTradeQuery 查询支付宝交易，返回应答节点原文
func (h *Handler) AliPayTradeQuery(c *gin.Context) {
	if h.AliPayService == nil {
		respondError(c, response.CodeInternal, "支付宝渠道未配置", nil)
		return
	}
	orderNo := strings.TrimSpace(c.Param("orderNo"))
	if orderNo == "" {
		response.BadRequest(c, "订单编号不合法")
		return
	}
	body, err := h.AliPayService.QueryTrade(c.Request.Context(), orderNo)
	if err != nil {
		respondWithMappedError(c, err, payCommonErrorRules, response.CodeInternal, "查询订单失败")
		return
	}
	response.SuccessWithMsg(c, "查询成功", gin.H{"bodyAsString": body})
}

// AliPayTradeRefund 发起退款
func (h *Handler) AliPayTradeRefund(c *gin.Context) {
	if h.AliPayService == nil {
		respondError(c, response.CodeInternal, "支付宝渠道未配置", nil)
		return
	}
	orderNo := strings.TrimSpace(c.Param("orderNo"))
	reason := strings.TrimSpace(c.Param("reason"))
	if orderNo == "" {
		response.BadRequest(c, "订单编号不合法")
		return
	}
	refund, err := h.AliPayService.Refund(c.Request.Context(), orderNo, reason)
	if err != nil {
		respondWithMappedError(c, err, payCommonErrorRules, response.CodeInternal, "申请退款失败")
		return
	}
	response.SuccessWithMsg(c, "退款已受理", gin.H{"refundNo": refund.RefundNo})
}
