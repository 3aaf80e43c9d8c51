package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/paybridge-next/internal/constants"
	"github.com/paybridge-next/internal/payment/wechatpay"
	"github.com/paybridge-next/internal/service"

	"github.com/gin-gonic/gin"
)

// WxPayNotify 微信支付结果通知。应答必须符合微信回调协议：
// 受理成功返回 200，验签失败或处理异常返回 500 并附失败原因，
// 微信会按退避策略重试。
func (h *Handler) WxPayNotify(c *gin.Context) {
	h.handleWechatNotify(c, func(headers map[string]string, body []byte) error {
		return h.WxPayService.ProcessNotify(c.Request.Context(), headers, body)
	})
}

// WxPayRefundNotify 微信退款结果通知
func (h *Handler) WxPayRefundNotify(c *gin.Context) {
	h.handleWechatNotify(c, func(headers map[string]string, body []byte) error {
		return h.WxPayService.ProcessRefundNotify(c.Request.Context(), headers, body)
	})
}

func (h *Handler) handleWechatNotify(c *gin.Context, process func(headers map[string]string, body []byte) error) {
	log := requestLog(c)
	if h.WxPayService == nil {
		log.Warnw("wxpay_notify_channel_disabled")
		respondWechatNotify(c, http.StatusInternalServerError, constants.WxNotifyMsgSysError)
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("wxpay_notify_body_read_failed", "error", err)
		respondWechatNotify(c, http.StatusInternalServerError, constants.WxNotifyMsgSysError)
		return
	}

	headers := make(map[string]string)
	for key, values := range c.Request.Header {
		if len(values) == 0 {
			continue
		}
		headers[key] = values[0]
	}

	if err := process(headers, body); err != nil {
		if errors.Is(err, wechatpay.ErrSignatureInvalid) {
			log.Warnw("wxpay_notify_signature_invalid", "client_ip", c.ClientIP())
			respondWechatNotify(c, http.StatusInternalServerError, constants.WxNotifyMsgBadSign)
			return
		}
		// 订单不存在等业务异常同样要求微信重试，期间人工或对账任务介入
		log.Warnw("wxpay_notify_handle_failed",
			"client_ip", c.ClientIP(),
			"order_missing", errors.Is(err, service.ErrOrderMissing),
			"error", err,
		)
		respondWechatNotify(c, http.StatusInternalServerError, constants.WxNotifyMsgSysError)
		return
	}
	respondWechatNotify(c, http.StatusOK, constants.WxNotifyMsgSuccess)
}

func respondWechatNotify(c *gin.Context, status int, message string) {
	code := constants.WxNotifyCodeSuccess
	if status != http.StatusOK {
		code = constants.WxNotifyCodeError
	}
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
	})
}
