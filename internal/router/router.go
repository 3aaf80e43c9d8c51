package router

import (
	"fmt"
	"strings"

	"github.com/paybridge-next/internal/cache"
	"github.com/paybridge-next/internal/config"
	"github.com/paybridge-next/internal/constants"
	apihandlers "github.com/paybridge-next/internal/http/handlers/api"
	"github.com/paybridge-next/internal/logger"
	"github.com/paybridge-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := apihandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	// 下单接口限流，回调与查询不限
	createRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:pay_create", redisPrefix),
		WindowSeconds: cfg.RateLimit.WindowSeconds,
		MaxRequests:   cfg.RateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	api := r.Group("/api")
	{
		wxPay := api.Group("/wx-pay")
		{
			wxPay.POST("/native/:productId", RateLimitMiddleware(redisClient, createRule, KeyByIP), handler.WxPayNative)
			wxPay.POST("/native/notify", handler.WxPayNotify)
			wxPay.POST("/refunds/notify", handler.WxPayRefundNotify)
			wxPay.POST("/cancel/:orderNo", handler.WxPayCancel)
			wxPay.GET("/query/:orderNo", handler.WxPayQuery)
			wxPay.POST("/refunds/:orderNo/:reason", handler.WxPayRefund)
			wxPay.GET("/query-refund/:refundNo", handler.WxPayQueryRefund)
		}

		aliPay := api.Group("/ali-pay")
		{
			aliPay.POST("/trade/page/pay/:productId", RateLimitMiddleware(redisClient, createRule, KeyByIP), handler.AliPayTradePagePay)
			aliPay.POST("/trade/notify", handler.AliPayTradeNotify)
			aliPay.POST("/trade/close/:orderNo", handler.AliPayTradeClose)
			aliPay.GET("/trade/query/:orderNo", handler.AliPayTradeQuery)
			aliPay.POST("/trade/refund/:orderNo/:reason", handler.AliPayTradeRefund)
		}

		api.GET("/product/list", handler.ProductList)
		api.GET("/order-info/list", handler.OrderInfoList)
		api.GET("/order-info/query-order-status/:orderNo", handler.OrderInfoQueryStatus)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
