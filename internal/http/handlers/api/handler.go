package api

import "github.com/paybridge-next/internal/provider"

// Handler 支付网关对外接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
