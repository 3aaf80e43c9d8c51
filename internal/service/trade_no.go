package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/paybridge-next/internal/constants"
)

// generateTradeNo 生成形如 <前缀><yyyyMMddHHmmssSSS><三位随机数> 的单号。
func generateTradeNo(prefix string) string {
	timestamp := strings.ReplaceAll(time.Now().Format("20060102150405.000"), ".", "")
	return prefix + timestamp + fmt.Sprintf("%03d", randomDigits(1000))
}

func generateOrderNo() string {
	return generateTradeNo(constants.OrderNoPrefix)
}

func generateRefundNo() string {
	return generateTradeNo(constants.RefundNoPrefix)
}

func randomDigits(max int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return time.Now().UnixNano() % max
	}
	return n.Int64()
}
