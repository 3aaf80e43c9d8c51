package service

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/paybridge-next/internal/constants"

	"github.com/shopspring/decimal"
)

// PaymentOutcome 网关支付结果（微信/支付宝回调与主动查询统一归一化后的形态）。
type PaymentOutcome struct {
	OrderNo       string
	TransactionID string
	TradeType     string
	TradeState    string // 网关原始状态
	PayerTotal    int64  // 分
	Content       string // 明文原文（审计用）
}

// RefundOutcome 网关退款结果。
type RefundOutcome struct {
	RefundNo string
	OrderNo  string
	RefundID string
	Status   string // 归一化后的退款状态（constants.RefundStatus*）
	Content  string
}

// 归一化后的支付结论
const (
	verdictSuccess = "success"
	verdictClosed  = "closed"
	verdictPending = "pending"
	verdictUnknown = "unknown"
)

// ParseWechatPaymentOutcome 解析微信支付通知明文/查单应答。
func ParseWechatPaymentOutcome(plaintext string) (*PaymentOutcome, error) {
	raw := map[string]interface{}{}
	if err := json.Unmarshal([]byte(plaintext), &raw); err != nil {
		return nil, fmt.Errorf("%w: 微信支付结果解析失败", ErrCallbackInvalid)
	}
	outcome := &PaymentOutcome{
		OrderNo:       readOutcomeString(raw, "out_trade_no"),
		TransactionID: readOutcomeString(raw, "transaction_id"),
		TradeType:     readOutcomeString(raw, "trade_type"),
		TradeState:    readOutcomeString(raw, "trade_state"),
		Content:       plaintext,
	}
	if amount, ok := raw["amount"].(map[string]interface{}); ok {
		if payerTotal, ok := readOutcomeInt64(amount, "payer_total"); ok {
			outcome.PayerTotal = payerTotal
		} else if total, ok := readOutcomeInt64(amount, "total"); ok {
			outcome.PayerTotal = total
		}
	}
	if outcome.OrderNo == "" {
		return nil, fmt.Errorf("%w: out_trade_no 缺失", ErrCallbackInvalid)
	}
	return outcome, nil
}

// ParseAlipayPaymentOutcome 解析支付宝异步通知表单/查单应答节点。
func ParseAlipayPaymentOutcome(form url.Values) (*PaymentOutcome, error) {
	if len(form) == 0 {
		return nil, fmt.Errorf("%w: 支付宝通知为空", ErrCallbackInvalid)
	}
	flat := map[string]string{}
	for key, values := range form {
		if len(values) > 0 {
			flat[key] = values[0]
		}
	}
	content, err := json.Marshal(flat)
	if err != nil {
		return nil, fmt.Errorf("%w: 支付宝通知编码失败", ErrCallbackInvalid)
	}
	outcome := &PaymentOutcome{
		OrderNo:       strings.TrimSpace(flat["out_trade_no"]),
		TransactionID: strings.TrimSpace(flat["trade_no"]),
		TradeType:     "PAGE",
		TradeState:    strings.TrimSpace(flat["trade_status"]),
		PayerTotal:    yuanToFen(flat["total_amount"]),
		Content:       string(content),
	}
	if outcome.OrderNo == "" {
		return nil, fmt.Errorf("%w: out_trade_no 缺失", ErrCallbackInvalid)
	}
	return outcome, nil
}

// ParseAlipayQueryOutcome 解析支付宝查单应答节点原文。
func ParseAlipayQueryOutcome(body string) (*PaymentOutcome, error) {
	raw := map[string]interface{}{}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: 支付宝查单应答解析失败", ErrCallbackInvalid)
	}
	outcome := &PaymentOutcome{
		OrderNo:       readOutcomeString(raw, "out_trade_no"),
		TransactionID: readOutcomeString(raw, "trade_no"),
		TradeType:     "PAGE",
		TradeState:    readOutcomeString(raw, "trade_status"),
		PayerTotal:    yuanToFen(readOutcomeString(raw, "total_amount")),
		Content:       body,
	}
	if outcome.OrderNo == "" {
		return nil, fmt.Errorf("%w: out_trade_no 缺失", ErrCallbackInvalid)
	}
	return outcome, nil
}

// ParseWechatRefundOutcome 解析微信退款通知明文/退款查询应答。
func ParseWechatRefundOutcome(plaintext string) (*RefundOutcome, error) {
	raw := map[string]interface{}{}
	if err := json.Unmarshal([]byte(plaintext), &raw); err != nil {
		return nil, fmt.Errorf("%w: 微信退款结果解析失败", ErrCallbackInvalid)
	}
	// 通知明文使用 refund_status，查询应答使用 status
	gatewayStatus := readOutcomeString(raw, "refund_status")
	if gatewayStatus == "" {
		gatewayStatus = readOutcomeString(raw, "status")
	}
	outcome := &RefundOutcome{
		RefundNo: readOutcomeString(raw, "out_refund_no"),
		OrderNo:  readOutcomeString(raw, "out_trade_no"),
		RefundID: readOutcomeString(raw, "refund_id"),
		Status:   normalizeWechatRefundStatus(gatewayStatus),
		Content:  plaintext,
	}
	if outcome.RefundNo == "" {
		return nil, fmt.Errorf("%w: out_refund_no 缺失", ErrCallbackInvalid)
	}
	return outcome, nil
}

// ParseAlipayRefundOutcome 解析支付宝退款应答节点原文（同步退款与退款查询通用）。
func ParseAlipayRefundOutcome(refundNo string, body string) (*RefundOutcome, error) {
	raw := map[string]interface{}{}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("%w: 支付宝退款结果解析失败", ErrCallbackInvalid)
	}
	status := constants.RefundStatusProcessing
	// 同步退款应答 fund_change=Y 表示资金变动成功；退款查询应答为 refund_status=REFUND_SUCCESS
	if strings.EqualFold(readOutcomeString(raw, "fund_change"), "Y") ||
		strings.EqualFold(readOutcomeString(raw, "refund_status"), "REFUND_SUCCESS") {
		status = constants.RefundStatusSuccess
	}
	outcome := &RefundOutcome{
		RefundNo: refundNo,
		OrderNo:  readOutcomeString(raw, "out_trade_no"),
		RefundID: readOutcomeString(raw, "trade_no"),
		Status:   status,
		Content:  body,
	}
	if outcome.RefundNo == "" {
		return nil, fmt.Errorf("%w: 退款单号缺失", ErrCallbackInvalid)
	}
	return outcome, nil
}

// paymentVerdict 将网关交易状态归一化为支付结论。
func paymentVerdict(paymentType, tradeState string) string {
	state := strings.ToUpper(strings.TrimSpace(tradeState))
	switch paymentType {
	case constants.PaymentTypeWxPay:
		switch state {
		case constants.WxTradeStateSuccess, constants.WxTradeStateRefund:
			return verdictSuccess
		case constants.WxTradeStateClosed, constants.WxTradeStateRevoked, constants.WxTradeStatePayError:
			return verdictClosed
		case constants.WxTradeStateNotPay, constants.WxTradeStateUserPaying:
			return verdictPending
		}
	case constants.PaymentTypeAlipay:
		switch state {
		case constants.AlipayTradeStatusSuccess, constants.AlipayTradeStatusFinished:
			return verdictSuccess
		case constants.AlipayTradeStatusClosed:
			return verdictClosed
		case constants.AlipayTradeStatusWaitBuyerPay:
			return verdictPending
		}
	}
	return verdictUnknown
}

func normalizeWechatRefundStatus(gatewayStatus string) string {
	switch strings.ToUpper(strings.TrimSpace(gatewayStatus)) {
	case constants.WxRefundStatusSuccess:
		return constants.RefundStatusSuccess
	case constants.WxRefundStatusProcessing:
		return constants.RefundStatusProcessing
	case constants.WxRefundStatusClosed, constants.WxRefundStatusAbnormal:
		return constants.RefundStatusAbnormal
	default:
		// 网关未来新增的状态同样按异常处理，交人工介入
		return constants.RefundStatusAbnormal
	}
}

func yuanToFen(amount string) int64 {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return 0
	}
	return parsed.Shift(2).Round(0).IntPart()
}

func readOutcomeString(raw map[string]interface{}, key string) string {
	value, ok := raw[key]
	if !ok || value == nil {
		return ""
	}
	if str, ok := value.(string); ok {
		return strings.TrimSpace(str)
	}
	return strings.TrimSpace(fmt.Sprintf("%v", value))
}

func readOutcomeInt64(raw map[string]interface{}, key string) (int64, bool) {
	value, ok := raw[key]
	if !ok {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
