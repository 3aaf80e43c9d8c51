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

func setupPaymentInfoRepositoryTest(t *testing.T) *GormPaymentInfoRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.PaymentInfo{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewPaymentInfoRepository(db)
}

func TestPaymentInfoRepositoryAppendAndCount(t *testing.T) {
	repo := setupPaymentInfoRepositoryTest(t)
	orderNo := "ORDER_20260830100000000001"

	count, err := repo.CountByOrderNo(orderNo)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("count want 0 got %d", count)
	}

	payments := []models.PaymentInfo{
		{OrderNo: orderNo, PaymentType: constants.PaymentTypeWxPay, TransactionID: "4200001", TradeState: "NOTPAY"},
		{OrderNo: orderNo, PaymentType: constants.PaymentTypeWxPay, TransactionID: "4200002", TradeState: "SUCCESS", PayerTotal: 199},
		{OrderNo: "ORDER_20260830100000000002", PaymentType: constants.PaymentTypeAlipay, TransactionID: "2026083001", TradeState: "TRADE_SUCCESS"},
	}
	for i := range payments {
		if err := repo.Create(&payments[i]); err != nil {
			t.Fatalf("create payment failed: %v", err)
		}
	}

	count, err = repo.CountByOrderNo(orderNo)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("count want 2 got %d", count)
	}

	rows, err := repo.ListByOrderNo(orderNo)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("list want 2 rows got %d", len(rows))
	}
	// 倒序返回，最新流水在前
	if rows[0].TransactionID != "4200002" {
		t.Fatalf("latest payment should come first, got %+v", rows[0])
	}
}
