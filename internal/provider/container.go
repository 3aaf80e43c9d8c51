package provider

import (
	"os"
	"strings"

	"github.com/paybridge-next/internal/cache"
	"github.com/paybridge-next/internal/config"
	"github.com/paybridge-next/internal/logger"
	"github.com/paybridge-next/internal/models"
	"github.com/paybridge-next/internal/payment/alipay"
	"github.com/paybridge-next/internal/payment/wechatpay"
	"github.com/paybridge-next/internal/queue"
	"github.com/paybridge-next/internal/repository"
	"github.com/paybridge-next/internal/service"
)

// 回调路径与路由注册保持一致
const (
	wxPayNotifyPath       = "/api/wx-pay/native/notify"
	wxPayRefundNotifyPath = "/api/wx-pay/refunds/notify"
	aliPayNotifyPath      = "/api/ali-pay/trade/notify"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	OrderInfoRepo   repository.OrderInfoRepository
	RefundInfoRepo  repository.RefundInfoRepository
	PaymentInfoRepo repository.PaymentInfoRepository
	ProductRepo     repository.ProductRepository

	// Services
	ReconcileService *service.ReconcileService
	OrderService     *service.OrderService
	RefundService    *service.RefundService
	ProductService   *service.ProductService
	// 渠道未配置时为 nil，由 handler 层兜底
	WxPayService  *service.WxPayService
	AliPayService *service.AliPayService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.OrderInfoRepo = repository.NewOrderInfoRepository(db)
	c.RefundInfoRepo = repository.NewRefundInfoRepository(db)
	c.PaymentInfoRepo = repository.NewPaymentInfoRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
}

func (c *Container) initServices() {
	c.ReconcileService = service.NewReconcileService(c.OrderInfoRepo, c.RefundInfoRepo, c.PaymentInfoRepo)
	c.OrderService = service.NewOrderService(c.OrderInfoRepo, c.ProductRepo)
	c.RefundService = service.NewRefundService(c.OrderInfoRepo, c.RefundInfoRepo, c.ReconcileService)
	c.ProductService = service.NewProductService(c.ProductRepo)

	if wxClient := c.buildWechatClient(); wxClient != nil {
		c.WxPayService = service.NewWxPayService(wxClient, c.OrderService, c.RefundService, c.ReconcileService)
	}
	if aliClient := c.buildAlipayClient(); aliClient != nil {
		c.AliPayService = service.NewAliPayService(aliClient, c.OrderService, c.RefundService, c.ReconcileService)
	}
}

func (c *Container) buildWechatClient() *wechatpay.Client {
	cfg := c.Config.WxPay
	if strings.TrimSpace(cfg.MchID) == "" {
		logger.Infow("provider_wxpay_disabled", "reason", "mch_id_empty")
		return nil
	}
	privateKey := cfg.PrivateKey
	if strings.TrimSpace(privateKey) == "" && strings.TrimSpace(cfg.PrivateKeyPath) != "" {
		raw, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			logger.Errorw("provider_wxpay_private_key_read_failed", "path", cfg.PrivateKeyPath, "error", err)
			return nil
		}
		privateKey = string(raw)
	}
	client, err := wechatpay.NewClient(&wechatpay.Config{
		AppID:              cfg.AppID,
		MerchantID:         cfg.MchID,
		MerchantSerialNo:   cfg.MchSerialNo,
		MerchantPrivateKey: privateKey,
		APIV3Key:           cfg.APIv3Key,
		NotifyURL:          joinNotifyURL(cfg.NotifyDomain, wxPayNotifyPath),
		RefundNotifyURL:    joinNotifyURL(cfg.NotifyDomain, wxPayRefundNotifyPath),
	})
	if err != nil {
		logger.Errorw("provider_init_wxpay_client_failed", "error", err)
		return nil
	}
	return client
}

func (c *Container) buildAlipayClient() *alipay.Client {
	cfg := c.Config.Alipay
	if strings.TrimSpace(cfg.AppID) == "" {
		logger.Infow("provider_alipay_disabled", "reason", "app_id_empty")
		return nil
	}
	client, err := alipay.NewClient(&alipay.Config{
		AppID:           cfg.AppID,
		PrivateKey:      cfg.PrivateKey,
		AlipayPublicKey: cfg.AlipayPublicKey,
		GatewayURL:      cfg.GatewayURL,
		NotifyURL:       joinNotifyURL(cfg.NotifyDomain, aliPayNotifyPath),
		ReturnURL:       cfg.ReturnURL,
	})
	if err != nil {
		logger.Errorw("provider_init_alipay_client_failed", "error", err)
		return nil
	}
	return client
}

func joinNotifyURL(domain string, path string) string {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	if domain == "" {
		return ""
	}
	return domain + path
}
