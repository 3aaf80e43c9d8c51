package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/paybridge-next/internal/constants"
	"github.com/paybridge-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrderInfoRepositoryTest(t *testing.T) (*GormOrderInfoRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.OrderInfo{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewOrderInfoRepository(db), db
}

func TestOrderInfoRepositoryGetNoPayByProduct(t *testing.T) {
	repo, _ := setupOrderInfoRepositoryTest(t)

	orders := []models.OrderInfo{
		{OrderNo: "ORDER_20260830100000000001", ProductID: 1, TotalFee: 199, PaymentType: constants.PaymentTypeWxPay, OrderStatus: constants.OrderStatusClosed},
		{OrderNo: "ORDER_20260830100000000002", ProductID: 1, TotalFee: 199, PaymentType: constants.PaymentTypeWxPay, OrderStatus: constants.OrderStatusNotPay},
		{OrderNo: "ORDER_20260830100000000003", ProductID: 1, TotalFee: 199, PaymentType: constants.PaymentTypeAlipay, OrderStatus: constants.OrderStatusNotPay},
	}
	for i := range orders {
		if err := repo.Create(&orders[i]); err != nil {
			t.Fatalf("create order failed: %v", err)
		}
	}

	got, err := repo.GetNoPayByProduct(1, constants.PaymentTypeWxPay)
	if err != nil {
		t.Fatalf("get nopay order failed: %v", err)
	}
	if got == nil || got.OrderNo != "ORDER_20260830100000000002" {
		t.Fatalf("expected wxpay nopay order, got %+v", got)
	}

	got, err = repo.GetNoPayByProduct(2, constants.PaymentTypeWxPay)
	if err != nil {
		t.Fatalf("get nopay order failed: %v", err)
	}
	if got != nil {
		t.Fatalf("product without orders should yield nil, got %+v", got)
	}
}

func TestOrderInfoRepositoryGetStatusByOrderNo(t *testing.T) {
	repo, _ := setupOrderInfoRepositoryTest(t)
	order := models.OrderInfo{
		OrderNo:     "ORDER_20260830100000000011",
		ProductID:   1,
		TotalFee:    199,
		PaymentType: constants.PaymentTypeWxPay,
		OrderStatus: constants.OrderStatusNotPay,
	}
	if err := repo.Create(&order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	status, err := repo.GetStatusByOrderNo(order.OrderNo)
	if err != nil {
		t.Fatalf("get status failed: %v", err)
	}
	if status != constants.OrderStatusNotPay {
		t.Fatalf("status want NOTPAY got %s", status)
	}

	status, err = repo.GetStatusByOrderNo("ORDER_20260830999999999999")
	if err != nil {
		t.Fatalf("get missing status failed: %v", err)
	}
	if status != "" {
		t.Fatalf("missing order should yield empty status, got %s", status)
	}
}

func TestOrderInfoRepositoryListNoPayOlderThan(t *testing.T) {
	repo, db := setupOrderInfoRepositoryTest(t)

	stale := models.OrderInfo{OrderNo: "ORDER_20260830100000000021", ProductID: 1, TotalFee: 199, PaymentType: constants.PaymentTypeWxPay, OrderStatus: constants.OrderStatusNotPay}
	fresh := models.OrderInfo{OrderNo: "ORDER_20260830100000000022", ProductID: 1, TotalFee: 199, PaymentType: constants.PaymentTypeWxPay, OrderStatus: constants.OrderStatusNotPay}
	paid := models.OrderInfo{OrderNo: "ORDER_20260830100000000023", ProductID: 1, TotalFee: 199, PaymentType: constants.PaymentTypeWxPay, OrderStatus: constants.OrderStatusSuccess}
	for _, order := range []*models.OrderInfo{&stale, &fresh, &paid} {
		if err := repo.Create(order); err != nil {
			t.Fatalf("create order failed: %v", err)
		}
	}
	staleAt := time.Now().Add(-10 * time.Minute)
	for _, orderNo := range []string{stale.OrderNo, paid.OrderNo} {
		if err := db.Model(&models.OrderInfo{}).
			Where("order_no = ?", orderNo).
			Update("create_time", staleAt).Error; err != nil {
			t.Fatalf("backdate order failed: %v", err)
		}
	}

	orders, err := repo.ListNoPayOlderThan(time.Now().Add(-5*time.Minute), constants.PaymentTypeWxPay)
	if err != nil {
		t.Fatalf("list nopay failed: %v", err)
	}
	if len(orders) != 1 || orders[0].OrderNo != stale.OrderNo {
		t.Fatalf("expected only the stale nopay order, got %+v", orders)
	}
}

func TestOrderInfoRepositoryUpdateStatusAndCodeURL(t *testing.T) {
	repo, _ := setupOrderInfoRepositoryTest(t)
	order := models.OrderInfo{
		OrderNo:     "ORDER_20260830100000000031",
		ProductID:   1,
		TotalFee:    199,
		PaymentType: constants.PaymentTypeWxPay,
		OrderStatus: constants.OrderStatusNotPay,
	}
	if err := repo.Create(&order); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := repo.SaveCodeURL(order.OrderNo, "weixin://wxpay/bizpayurl?pr=abc"); err != nil {
		t.Fatalf("save code url failed: %v", err)
	}
	if err := repo.UpdateStatus(order.OrderNo, constants.OrderStatusSuccess); err != nil {
		t.Fatalf("update status failed: %v", err)
	}

	saved, err := repo.GetByOrderNo(order.OrderNo)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if saved.CodeURL != "weixin://wxpay/bizpayurl?pr=abc" {
		t.Fatalf("unexpected code url: %s", saved.CodeURL)
	}
	if saved.OrderStatus != constants.OrderStatusSuccess {
		t.Fatalf("status want SUCCESS got %s", saved.OrderStatus)
	}
}
